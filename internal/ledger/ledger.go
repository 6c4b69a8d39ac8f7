// Package ledger holds per-account chip balances and the privileged
// operations that move them. All mutating operations are all-or-nothing:
// validation happens before any balance changes.
package ledger

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrInsufficientBalance is returned when an amount exceeds the payer's
	// balance or is negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnauthorized is returned when a privileged operation is invoked
	// without the ledger's capability.
	ErrUnauthorized = errors.New("unauthorized ledger operation")
)

// Account is an opaque account identity.
type Account string

// Capability authorizes privileged ledger operations (mint, burn, bet).
// Only the holder returned by New can pass the authorization check; a
// zero Capability or one granted by another ledger is rejected.
type Capability struct {
	ledger *Ledger
}

// EntryKind labels a journal entry.
type EntryKind string

const (
	EntryMint     EntryKind = "mint"
	EntryBurn     EntryKind = "burn"
	EntryTransfer EntryKind = "transfer"
	EntryBet      EntryKind = "bet"
)

// Entry is an applied balance movement, appended to the journal once the
// movement has fully committed.
type Entry struct {
	Kind   EntryKind `json:"kind"`
	From   Account   `json:"from,omitempty"`
	To     Account   `json:"to,omitempty"`
	Amount int64     `json:"amount"`
}

// Ledger owns all chip balances. Nothing else mutates them.
type Ledger struct {
	mu       sync.RWMutex
	balances map[Account]int64
	supply   int64
	journal  []Entry
	logger   zerolog.Logger
}

// New creates an empty ledger and returns it with its capability.
func New(logger zerolog.Logger) (*Ledger, Capability) {
	l := &Ledger{
		balances: make(map[Account]int64),
		logger:   logger.With().Str("component", "ledger").Logger(),
	}
	return l, Capability{ledger: l}
}

// Restore rebuilds a ledger from persisted balances and journal.
func Restore(logger zerolog.Logger, balances map[Account]int64, supply int64, journal []Entry) (*Ledger, Capability) {
	l, c := New(logger)
	for acct, bal := range balances {
		l.balances[acct] = bal
	}
	l.supply = supply
	l.journal = append(l.journal, journal...)
	return l, c
}

func (l *Ledger) authorized(c Capability) bool {
	return c.ledger == l
}

// BalanceOf returns the account's balance. Unknown accounts hold zero.
func (l *Ledger) BalanceOf(a Account) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[a]
}

// TotalSupply returns the sum of all mints minus all burns.
func (l *Ledger) TotalSupply() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Mint credits amount to the account and grows the total supply.
// Privileged: callable only with the ledger's capability.
func (l *Ledger) Mint(c Capability, to Account, amount int64) error {
	if !l.authorized(c) {
		return ErrUnauthorized
	}
	if amount < 0 {
		return ErrInsufficientBalance
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	l.supply += amount
	l.journal = append(l.journal, Entry{Kind: EntryMint, To: to, Amount: amount})
	l.logger.Debug().Str("account", string(to)).Int64("amount", amount).Msg("minted chips")
	return nil
}

// Burn debits amount from the account and shrinks the total supply.
// Privileged: callable only with the ledger's capability.
func (l *Ledger) Burn(c Capability, from Account, amount int64) error {
	if !l.authorized(c) {
		return ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if amount < 0 || l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.supply -= amount
	l.journal = append(l.journal, Entry{Kind: EntryBurn, From: from, Amount: amount})
	l.logger.Debug().Str("account", string(from)).Int64("amount", amount).Msg("burned chips")
	return nil
}

// Transfer atomically debits from and credits to. The sum of balances is
// unchanged.
func (l *Ledger) Transfer(from, to Account, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(EntryTransfer, from, to, amount)
}

// Bet is a privileged transfer used by the game orchestrator to move a
// participant's stake into escrow at round start.
func (l *Ledger) Bet(c Capability, from, to Account, amount int64) error {
	if !l.authorized(c) {
		return ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(EntryBet, from, to, amount)
}

// move applies a debit/credit pair under the held lock. No balance is
// touched unless the full movement can commit.
func (l *Ledger) move(kind EntryKind, from, to Account, amount int64) error {
	if amount < 0 || l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.journal = append(l.journal, Entry{Kind: kind, From: from, To: to, Amount: amount})
	l.logger.Debug().
		Str("kind", string(kind)).
		Str("from", string(from)).
		Str("to", string(to)).
		Int64("amount", amount).
		Msg("moved chips")
	return nil
}

// Snapshot returns a copy of the ledger state for persistence.
func (l *Ledger) Snapshot() (map[Account]int64, int64, []Entry) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balances := make(map[Account]int64, len(l.balances))
	for acct, bal := range l.balances {
		balances[acct] = bal
	}
	journal := make([]Entry, len(l.journal))
	copy(journal, l.journal)
	return balances, l.supply, journal
}
