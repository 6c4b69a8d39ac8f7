package deck

import "errors"

// ErrExhausted is returned when dealing from an empty deck.
var ErrExhausted = errors.New("deck exhausted")

// Entropy picks the index of the next card to deal. Implementations derive
// the index from round-specific public values; they are deterministic, not
// unpredictable (see HashEntropy).
type Entropy interface {
	Pick(remaining int) int
}

// Deck represents an exhaustible deck of playing cards. Cards are removed
// by Deal and never return; the deck shrinks monotonically.
type Deck struct {
	cards []Card
}

// New creates a new standard 52-card deck in canonical order.
func New() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for suit := Hearts; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// Restore rebuilds a deck from a persisted card list.
func Restore(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Deal removes and returns the card at the index chosen by the entropy
// source. Dealing from an empty deck returns ErrExhausted.
func (d *Deck) Deal(e Entropy) (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrExhausted
	}

	i := e.Pick(len(d.cards))
	if i < 0 || i >= len(d.cards) {
		i = 0
	}

	card := d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards for persistence.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
