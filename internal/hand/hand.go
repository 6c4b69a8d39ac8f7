// Package hand implements blackjack hand accumulation with ace adjustment.
package hand

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jykim/chipjack/internal/deck"
)

// MaxCards is the card count at which a hand fixes automatically.
const MaxCards = 5

var (
	// ErrAlreadyFixed is returned when drawing into a fixed hand.
	ErrAlreadyFixed = errors.New("hand already fixed")
	// ErrHandLimit is returned when a hand already holds MaxCards cards.
	ErrHandLimit = errors.New("hand card limit exceeded")
)

// Hand is an ordered sequence of dealt cards with a running blackjack
// value. Aces count 11 until the total would bust, then demote to 1 one
// at a time. Fields are exported for snapshot persistence.
type Hand struct {
	Cards []deck.Card `json:"cards"`
	Value int         `json:"value"`
	Aces  int         `json:"aces"` // aces currently counted as 11
	Fixed bool        `json:"fixed"`
}

// New returns an empty hand.
func New() *Hand {
	return &Hand{}
}

// Add appends a card, updates the running value and demotes aces as
// needed. The hand fixes itself once it holds MaxCards cards.
func (h *Hand) Add(c deck.Card) error {
	if h.Fixed {
		return ErrAlreadyFixed
	}
	if len(h.Cards) >= MaxCards {
		return ErrHandLimit
	}

	h.Cards = append(h.Cards, c)
	h.Value += c.Value()
	if c.IsAce() {
		h.Aces++
	}
	h.adjustForAces()

	if len(h.Cards) == MaxCards {
		h.Fixed = true
	}
	return nil
}

// adjustForAces demotes 11-valued aces until the hand no longer busts or
// no demotable ace remains. Idempotent.
func (h *Hand) adjustForAces() {
	for h.Value > 21 && h.Aces > 0 {
		h.Value -= 10
		h.Aces--
	}
}

// Fix marks the hand as done drawing.
func (h *Hand) Fix() {
	h.Fixed = true
}

// Busted returns true if the hand value exceeds 21.
func (h *Hand) Busted() bool {
	return h.Value > 21
}

// String renders the hand as "A♠ 7♥ (18)".
func (h *Hand) String() string {
	var b strings.Builder
	for i, c := range h.Cards {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	if len(h.Cards) == 0 {
		b.WriteString("empty")
	}
	b.WriteString(" (")
	b.WriteString(strconv.Itoa(h.Value))
	b.WriteByte(')')
	return b.String()
}
