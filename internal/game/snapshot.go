package game

import (
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/deck"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
)

// RoomState is the persisted form of a Room.
type RoomState struct {
	ID           RoomID           `json:"id"`
	Owner        ledger.Account   `json:"owner"`
	CreatedAt    int64            `json:"created_at"`
	Stake        int64            `json:"stake"`
	Participants []ledger.Account `json:"participants"`
	Active       bool             `json:"active"`
	StartHeight  int64            `json:"start_height"`
	Ready        map[string]bool  `json:"ready"`
}

// State is the persisted form of the engine: the room directory in
// creation order, per-account round state and the result log.
type State struct {
	Rooms   []RoomState            `json:"rooms"`
	Decks   map[string][]deck.Card `json:"decks"`
	Hands   map[string]*hand.Hand  `json:"hands"`
	Results []string               `json:"results"`
}

// Snapshot captures the engine state for persistence.
func (e *Engine) Snapshot() *State {
	rooms := e.reg.List()
	st := &State{
		Rooms:   make([]RoomState, 0, len(rooms)),
		Decks:   make(map[string][]deck.Card, len(e.decks)),
		Hands:   make(map[string]*hand.Hand, len(e.hands)),
		Results: e.Results(),
	}

	for _, r := range rooms {
		ready := make(map[string]bool, len(r.ready))
		for acct, v := range r.ready {
			ready[string(acct)] = v
		}
		st.Rooms = append(st.Rooms, RoomState{
			ID:           r.ID,
			Owner:        r.Owner,
			CreatedAt:    r.CreatedAt,
			Stake:        r.Stake,
			Participants: append([]ledger.Account(nil), r.Participants...),
			Active:       r.Active,
			StartHeight:  r.StartHeight,
			Ready:        ready,
		})
	}
	for acct, d := range e.decks {
		st.Decks[string(acct)] = d.Cards()
	}
	for acct, h := range e.hands {
		copied := *h
		copied.Cards = append([]deck.Card(nil), h.Cards...)
		st.Hands[string(acct)] = &copied
	}
	return st
}

// RestoreEngine rebuilds an engine from a persisted state.
func RestoreEngine(l *ledger.Ledger, auth ledger.Capability, escrow ledger.Account, clock Clock, logger zerolog.Logger, st *State, opts ...Option) *Engine {
	e := NewEngine(l, auth, escrow, clock, logger, opts...)
	if st == nil {
		return e
	}

	for _, rs := range st.Rooms {
		room := &Room{
			ID:           rs.ID,
			Owner:        rs.Owner,
			CreatedAt:    rs.CreatedAt,
			Stake:        rs.Stake,
			Participants: append([]ledger.Account(nil), rs.Participants...),
			Active:       rs.Active,
			StartHeight:  rs.StartHeight,
			ready:        make(map[ledger.Account]bool, len(rs.Ready)),
		}
		for acct, v := range rs.Ready {
			room.ready[ledger.Account(acct)] = v
		}
		e.reg.add(room)
		for _, p := range room.Participants {
			e.reg.occupy(p, room.ID)
		}
	}
	for acct, cards := range st.Decks {
		e.decks[ledger.Account(acct)] = deck.Restore(cards)
	}
	for acct, h := range st.Hands {
		e.hands[ledger.Account(acct)] = h
	}
	e.results = append(e.results, st.Results...)
	return e
}
