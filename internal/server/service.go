package server

import (
	"errors"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/deck"
	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
	"github.com/jykim/chipjack/internal/store"
)

// EscrowAccount holds stakes between game start and settlement. It is the
// orchestrator's own account; players cannot act as it.
const EscrowAccount ledger.Account = "chipjack:escrow"

// ErrMintLimit is returned when a mint request exceeds the configured cap.
var ErrMintLimit = errors.New("mint amount exceeds limit")

// Service applies player operations to the core under strict
// serialization: one mutex orders every mutation, and the logical clock
// ticks once per mutating call. After each committed mutation the full
// state is snapshotted.
type Service struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	auth    ledger.Capability
	engine  *game.Engine
	clock   *game.ChainClock
	store   *store.Store
	maxMint int64
	logger  zerolog.Logger
}

// NewService builds the core from a snapshot if one exists, otherwise
// fresh.
func NewService(logger zerolog.Logger, clk quartz.Clock, st *store.Store, cfg GameSettings) (*Service, error) {
	snap, err := st.Load()
	if err != nil {
		return nil, err
	}

	chain := game.NewChainClock(clk)
	var (
		l    *ledger.Ledger
		auth ledger.Capability
		eng  *game.Engine
	)
	opts := []game.Option{game.WithRoundTimeout(cfg.RoundTimeout)}
	if snap != nil {
		chain.SetHeight(snap.Height)
		l, auth = ledger.Restore(logger, snap.Balances, snap.Supply, snap.Journal)
		eng = game.RestoreEngine(l, auth, EscrowAccount, chain, logger, snap.Game, opts...)
	} else {
		l, auth = ledger.New(logger)
		eng = game.NewEngine(l, auth, EscrowAccount, chain, logger, opts...)
	}

	return &Service{
		ledger:  l,
		auth:    auth,
		engine:  eng,
		clock:   chain,
		store:   st,
		maxMint: cfg.MaxMint,
		logger:  logger.With().Str("component", "service").Logger(),
	}, nil
}

// commit snapshots the state after a successful mutation. Persistence
// failures are logged, not surfaced: the in-memory state has already
// committed.
func (s *Service) commit() {
	snap := &store.Snapshot{Height: s.clock.Height(), Game: s.engine.Snapshot()}
	snap.Balances, snap.Supply, snap.Journal = s.ledger.Snapshot()
	if err := s.store.Save(snap); err != nil {
		s.logger.Error().Err(err).Msg("snapshot save failed")
	}
}

// Mint credits chips to the account, standing in for external value
// received on the treasury surface.
func (s *Service) Mint(acct ledger.Account, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	if s.maxMint > 0 && amount > s.maxMint {
		return ErrMintLimit
	}
	if err := s.ledger.Mint(s.auth, acct, amount); err != nil {
		return err
	}
	s.commit()
	return nil
}

// Exchange burns the account's chips back into external value.
func (s *Service) Exchange(acct ledger.Account, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	if err := s.ledger.Burn(s.auth, acct, amount); err != nil {
		return err
	}
	s.commit()
	return nil
}

// Balance returns the account's chip balance.
func (s *Service) Balance(acct ledger.Account) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.BalanceOf(acct)
}

// CreateRoom opens a room owned by the account.
func (s *Service) CreateRoom(acct ledger.Account, stake int64) (game.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	id, err := s.engine.CreateRoom(acct, stake)
	if err != nil {
		return "", err
	}
	s.commit()
	return id, nil
}

// JoinRoom joins an open room.
func (s *Service) JoinRoom(acct ledger.Account, id game.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	if err := s.engine.JoinRoom(acct, id); err != nil {
		return err
	}
	s.commit()
	return nil
}

// Escape leaves the current room.
func (s *Service) Escape(acct ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	if err := s.engine.Escape(acct); err != nil {
		return err
	}
	s.commit()
	return nil
}

// ToggleReady flips the ready flag, returning the new value.
func (s *Service) ToggleReady(acct ledger.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	ready, err := s.engine.ToggleReady(acct)
	if err != nil {
		return false, err
	}
	s.commit()
	return ready, nil
}

// GameStart begins the room's round.
func (s *Service) GameStart(acct ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	if err := s.engine.GameStart(acct); err != nil {
		return err
	}
	s.commit()
	return nil
}

// Hit draws a card, possibly settling the round. The returned hand is a
// copy taken right after the draw.
func (s *Service) Hit(acct ledger.Account) (deck.Card, hand.Hand, *game.RoundOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	card, h, outcome, err := s.engine.Hit(acct)
	if err != nil {
		return deck.Card{}, hand.Hand{}, nil, err
	}
	s.commit()
	return card, h, outcome, nil
}

// Fix stops drawing, possibly settling the round.
func (s *Service) Fix(acct ledger.Account) (*game.RoundOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	outcome, err := s.engine.Fix(acct)
	if err != nil {
		return nil, err
	}
	s.commit()
	return outcome, nil
}

// Calculate force-settles a room. Settling an inactive room is a no-op.
func (s *Service) Calculate(id game.RoomID) (*game.RoundOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()

	outcome, err := s.engine.Calculate(id)
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		s.commit()
	}
	return outcome, nil
}

// ListRooms returns the room directory lines.
func (s *Service) ListRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ListRooms()
}

// Hand returns a copy of the account's current hand.
func (s *Service) Hand(acct ledger.Account) (hand.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.engine.HandOf(acct)
	if err != nil {
		return hand.Hand{}, err
	}
	copied := *h
	copied.Cards = append([]deck.Card(nil), h.Cards...)
	return copied, nil
}

// Results returns the settlement log.
func (s *Service) Results() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Results()
}

// Flush persists the current state, used at shutdown.
func (s *Service) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit()
}
