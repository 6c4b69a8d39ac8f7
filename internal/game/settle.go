package game

import (
	"fmt"

	"github.com/jykim/chipjack/internal/ledger"
)

// RoundOutcome describes one settled round.
type RoundOutcome struct {
	Room         RoomID           `json:"room"`
	Participants []ledger.Account `json:"participants"`
	Winner       ledger.Account   `json:"winner,omitempty"`
	Loser        ledger.Account   `json:"loser,omitempty"`
	Draw         bool             `json:"draw,omitempty"`
	Record       string           `json:"record"`
	// Banned is set when the loser could no longer cover the stake and was
	// forced out; RoomClosed when that eviction destroyed the room.
	Banned     bool `json:"banned,omitempty"`
	RoomClosed bool `json:"room_closed,omitempty"`
}

// settle resolves the room's round and redistributes the escrowed pot.
//
// The room is marked inactive before anything else so that a re-entrant
// trigger sees an already-settled round and does nothing. Outcome rules,
// in priority order:
//
//  1. exactly one busted hand loses the full pot
//  2. both busted: the first-listed participant (the owner) takes the pot
//  3. higher value wins; equal values return each stake
//
// Every branch credits exactly 2x stake out of escrow.
func (e *Engine) settle(room *Room) *RoundOutcome {
	room.Active = false

	first, second := room.Participants[0], room.Participants[1]
	fh, sh := e.hands[first], e.hands[second]
	pot := room.Stake * 2
	out := &RoundOutcome{Room: room.ID, Participants: []ledger.Account{first, second}}

	switch {
	case fh.Busted() || sh.Busted():
		// Rule 2 falls out of rule 1 here: when the second hand busts the
		// first participant wins, even if both busted.
		if sh.Busted() {
			out.Winner, out.Loser = first, second
		} else {
			out.Winner, out.Loser = second, first
		}
	case fh.Value > sh.Value:
		out.Winner, out.Loser = first, second
	case fh.Value < sh.Value:
		out.Winner, out.Loser = second, first
	default:
		out.Draw = true
	}

	// Escrow holds exactly the pot, so these transfers cannot fail.
	if out.Draw {
		e.mustTransfer(first, room.Stake)
		e.mustTransfer(second, room.Stake)
		out.Record = fmt.Sprintf("Draw!! %s, %s.", first, second)
	} else {
		e.mustTransfer(out.Winner, pot)
		out.Record = fmt.Sprintf("%s wins against %s.", out.Winner, out.Loser)
	}
	e.results = append(e.results, out.Record)

	e.logger.Info().
		Str("room", string(room.ID)).
		Str("winner", string(out.Winner)).
		Str("loser", string(out.Loser)).
		Bool("draw", out.Draw).
		Int64("pot", pot).
		Msg("round settled")

	if out.Loser != "" && e.ledger.BalanceOf(out.Loser) < room.Stake {
		out.Banned = true
		out.RoomClosed = e.ban(room, out.Loser)
	}
	return out
}

// mustTransfer pays out of escrow. Settlement pays at most the escrowed
// pot, so a failure here indicates a broken conservation invariant.
func (e *Engine) mustTransfer(to ledger.Account, amount int64) {
	if err := e.ledger.Transfer(e.escrow, to, amount); err != nil {
		e.logger.Error().Err(err).Str("to", string(to)).Int64("amount", amount).Msg("escrow payout failed")
		panic(fmt.Sprintf("escrow payout of %d to %s: %v", amount, to, err))
	}
}

// ban forcibly removes a participant who can no longer cover the stake.
// Banning the owner evicts everyone and destroys the room. Returns true
// if the room was destroyed.
func (e *Engine) ban(room *Room, acct ledger.Account) bool {
	e.logger.Info().Str("room", string(room.ID)).Str("account", string(acct)).Msg("banning participant")

	if acct == room.Owner {
		for _, p := range room.Participants {
			e.reg.release(p)
			e.dealOut(p)
		}
		room.Participants = nil
		e.reg.destroy(room.ID)
		return true
	}

	room.remove(acct)
	e.reg.release(acct)
	e.dealOut(acct)
	return false
}
