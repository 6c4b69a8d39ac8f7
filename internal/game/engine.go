// Package game implements the room lifecycle state machine and the
// settlement protocol for two-player blackjack rounds played against the
// chip ledger.
//
// Every operation executes synchronously within one logical transaction:
// it validates completely, then mutates, so a rejected operation leaves no
// partial state behind. The caller is responsible for serializing
// operations (the server funnels everything through one mutex).
package game

import (
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/deck"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
)

// defaultRoundTimeout is the number of logical ticks after which a round
// is force-settled on the next hit or fix.
const defaultRoundTimeout = 60

// Engine drives rooms through their lifecycle, using the ledger for
// balance movement and per-account decks and hands for round state.
type Engine struct {
	ledger *ledger.Ledger
	auth   ledger.Capability
	escrow ledger.Account
	clock  Clock
	reg    *Registry

	decks map[ledger.Account]*deck.Deck
	hands map[ledger.Account]*hand.Hand

	results      []string
	roundTimeout int64
	logger       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoundTimeout overrides the forced-settlement tick threshold.
func WithRoundTimeout(ticks int64) Option {
	return func(e *Engine) {
		e.roundTimeout = ticks
	}
}

// NewEngine creates an engine settling bets through the given ledger.
// Stakes are escrowed on the escrow account between game start and
// settlement.
func NewEngine(l *ledger.Ledger, auth ledger.Capability, escrow ledger.Account, clock Clock, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		ledger:       l,
		auth:         auth,
		escrow:       escrow,
		clock:        clock,
		reg:          NewRegistry(),
		decks:        make(map[ledger.Account]*deck.Deck),
		hands:        make(map[ledger.Account]*hand.Hand),
		roundTimeout: defaultRoundTimeout,
		logger:       logger.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateRoom opens a new room owned by the account, which joins it as the
// first participant with a fresh deck and hand.
func (e *Engine) CreateRoom(owner ledger.Account, stake int64) (RoomID, error) {
	if e.reg.Occupied(owner) {
		return "", ErrAlreadyInRoom
	}
	if stake <= 0 {
		return "", ErrInvalidStake
	}
	if e.ledger.BalanceOf(owner) < stake {
		return "", ErrInsufficientFunds
	}

	room := newRoom(owner, e.clock.Height(), stake)
	room.join(owner)
	e.reg.add(room)
	e.reg.occupy(owner, room.ID)
	e.dealIn(owner)

	e.logger.Info().
		Str("room", string(room.ID)).
		Str("owner", string(owner)).
		Int64("stake", stake).
		Msg("room created")
	return room.ID, nil
}

// JoinRoom adds the account to an open room and deals it in.
func (e *Engine) JoinRoom(acct ledger.Account, id RoomID) error {
	room, ok := e.reg.Get(id)
	if !ok {
		return ErrRoomNotFound
	}
	if e.reg.Occupied(acct) {
		return ErrAlreadyInRoom
	}
	if e.ledger.BalanceOf(acct) < room.Stake {
		return ErrInsufficientFunds
	}
	if room.Full() {
		return ErrRoomFull
	}

	room.join(acct)
	e.reg.occupy(acct, room.ID)
	e.dealIn(acct)

	e.logger.Info().Str("room", string(id)).Str("account", string(acct)).Msg("joined room")
	return nil
}

// Escape removes the account from its room. Forbidden during an active
// round, and forbidden for the owner while the other seat is taken: room
// ids derive from the owner, so an owner walking out of an occupied room
// would strand the guest in a room whose id the owner could reuse.
// A room whose last participant leaves is destroyed.
func (e *Engine) Escape(acct ledger.Account) error {
	room, ok := e.reg.RoomOf(acct)
	if !ok {
		return ErrNotInRoom
	}
	if room.Active {
		return ErrGameActive
	}
	if acct == room.Owner && len(room.Participants) > 1 {
		return ErrOwnerEscape
	}

	room.remove(acct)
	e.reg.release(acct)
	e.dealOut(acct)
	if len(room.Participants) == 0 {
		e.reg.destroy(room.ID)
		e.logger.Info().Str("room", string(room.ID)).Msg("room destroyed")
	}

	e.logger.Info().Str("room", string(room.ID)).Str("account", string(acct)).Msg("escaped room")
	return nil
}

// ToggleReady flips the account's ready flag and returns the new value.
func (e *Engine) ToggleReady(acct ledger.Account) (bool, error) {
	room, ok := e.reg.RoomOf(acct)
	if !ok {
		return false, ErrNotInRoom
	}
	return room.toggleReady(acct), nil
}

// GameStart begins a round: both stakes move into escrow, every
// participant gets a fresh deck and hand, and ready flags reset.
// Only the room owner may start.
func (e *Engine) GameStart(acct ledger.Account) error {
	room, ok := e.reg.RoomOf(acct)
	if !ok {
		return ErrNotInRoom
	}
	if acct != room.Owner {
		return ErrNotOwner
	}
	if room.Active {
		return ErrGameActive
	}
	if len(room.Participants) < Capacity {
		return ErrNotEnoughPlayers
	}
	if _, ready := room.allReady(); !ready {
		return ErrNotReady
	}
	for _, p := range room.Participants {
		if e.ledger.BalanceOf(p) < room.Stake {
			return ErrInsufficientFunds
		}
	}

	// Balances were checked above; with serialized execution these bets
	// cannot fail, so the two debits commit as a unit.
	for _, p := range room.Participants {
		if err := e.ledger.Bet(e.auth, p, e.escrow, room.Stake); err != nil {
			return err
		}
	}

	for _, p := range room.Participants {
		e.dealIn(p)
	}
	room.Active = true
	room.StartHeight = e.clock.Height()
	room.resetReady()

	e.logger.Info().
		Str("room", string(room.ID)).
		Int64("stake", room.Stake).
		Int64("height", room.StartHeight).
		Msg("round started")
	return nil
}

// Hit draws one card into the account's hand, returning the drawn card
// and a copy of the hand after the draw. Settlement triggers when every
// hand is fixed, the hand busts, or the round timed out.
func (e *Engine) Hit(acct ledger.Account) (deck.Card, hand.Hand, *RoundOutcome, error) {
	room, ok := e.reg.RoomOf(acct)
	if !ok {
		return deck.Card{}, hand.Hand{}, nil, ErrNotInRoom
	}
	if !room.Active {
		return deck.Card{}, hand.Hand{}, nil, ErrRoomInactive
	}

	h := e.hands[acct]
	if h.Fixed {
		return deck.Card{}, hand.Hand{}, nil, hand.ErrAlreadyFixed
	}

	card, err := e.decks[acct].Deal(deck.HashEntropy{
		Height: e.clock.Height(),
		Nano:   e.clock.Now().UnixNano(),
		Actor:  string(acct),
	})
	if err != nil {
		return deck.Card{}, hand.Hand{}, nil, err
	}
	if err := h.Add(card); err != nil {
		// Unreachable: the hand is not fixed and below the card limit.
		return deck.Card{}, hand.Hand{}, nil, err
	}

	e.logger.Debug().
		Str("room", string(room.ID)).
		Str("account", string(acct)).
		Str("card", card.String()).
		Int("value", h.Value).
		Msg("hit")

	drawn := *h
	drawn.Cards = append([]deck.Card(nil), h.Cards...)

	var outcome *RoundOutcome
	if e.allFixed(room) || h.Busted() || e.timedOut(room) {
		outcome = e.settle(room)
	}
	return card, drawn, outcome, nil
}

// Fix marks the account's hand as done drawing and settles the round if
// every hand is now fixed or the round timed out.
func (e *Engine) Fix(acct ledger.Account) (*RoundOutcome, error) {
	room, ok := e.reg.RoomOf(acct)
	if !ok {
		return nil, ErrNotInRoom
	}

	e.hands[acct].Fix()
	e.logger.Debug().Str("room", string(room.ID)).Str("account", string(acct)).Msg("hand fixed")

	if room.Active && (e.allFixed(room) || e.timedOut(room)) {
		return e.settle(room), nil
	}
	return nil, nil
}

// Calculate force-settles the room's round. Settling an inactive room is
// a no-op, which makes the settlement trigger idempotent.
func (e *Engine) Calculate(id RoomID) (*RoundOutcome, error) {
	room, ok := e.reg.Get(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !room.Active {
		return nil, nil
	}
	return e.settle(room), nil
}

// ListRooms returns one discovery line per open room, in creation order.
func (e *Engine) ListRooms() []string {
	rooms := e.reg.List()
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.Summary()
	}
	return out
}

// HandOf returns the account's current hand.
func (e *Engine) HandOf(acct ledger.Account) (*hand.Hand, error) {
	h, ok := e.hands[acct]
	if !ok {
		return nil, ErrNotInRoom
	}
	return h, nil
}

// RoomOf returns the room the account occupies.
func (e *Engine) RoomOf(acct ledger.Account) (*Room, bool) {
	return e.reg.RoomOf(acct)
}

// Results returns the append-only settlement log.
func (e *Engine) Results() []string {
	out := make([]string, len(e.results))
	copy(out, e.results)
	return out
}

// dealIn gives the account a fresh deck and empty hand.
func (e *Engine) dealIn(acct ledger.Account) {
	e.decks[acct] = deck.New()
	e.hands[acct] = hand.New()
}

// dealOut drops the account's per-round state.
func (e *Engine) dealOut(acct ledger.Account) {
	delete(e.decks, acct)
	delete(e.hands, acct)
}

func (e *Engine) allFixed(room *Room) bool {
	for _, p := range room.Participants {
		if !e.hands[p].Fixed {
			return false
		}
	}
	return true
}

func (e *Engine) timedOut(room *Room) bool {
	return e.clock.Height()-room.StartHeight > e.roundTimeout
}
