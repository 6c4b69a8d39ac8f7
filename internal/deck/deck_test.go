package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEntropy always picks the same index.
type fixedEntropy struct{ index int }

func (f fixedEntropy) Pick(remaining int) int {
	if f.index >= remaining {
		return remaining - 1
	}
	return f.index
}

func TestNewDeckHas52DistinctCards(t *testing.T) {
	t.Parallel()

	d := New()
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool)
	for _, c := range d.Cards() {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestDealRemovesCard(t *testing.T) {
	t.Parallel()

	d := New()
	first := d.Cards()[0]

	c, err := d.Deal(fixedEntropy{index: 0})
	require.NoError(t, err)
	assert.Equal(t, first, c)
	assert.Equal(t, 51, d.Remaining())

	for _, remaining := range d.Cards() {
		assert.NotEqual(t, c, remaining)
	}
}

func TestDealExhaustion(t *testing.T) {
	t.Parallel()

	d := New()
	for i := 0; i < 52; i++ {
		_, err := d.Deal(fixedEntropy{index: 0})
		require.NoError(t, err)
	}

	require.Equal(t, 0, d.Remaining())
	_, err := d.Deal(fixedEntropy{index: 0})
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	cards := []Card{
		{Suit: Hearts, Rank: Ace},
		{Suit: Spades, Rank: Ten},
	}
	d := Restore(cards)
	require.Equal(t, 2, d.Remaining())

	// Restore copies its input.
	cards[0] = Card{Suit: Clubs, Rank: Two}
	assert.Equal(t, Card{Suit: Hearts, Rank: Ace}, d.Cards()[0])
}

func TestHashEntropyDeterministic(t *testing.T) {
	t.Parallel()

	e := HashEntropy{Height: 42, Nano: 1700000000, Actor: "alice"}
	first := e.Pick(52)
	assert.Equal(t, first, e.Pick(52))
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 52)

	// Different inputs should usually select different indexes.
	other := HashEntropy{Height: 43, Nano: 1700000000, Actor: "alice"}
	assert.NotEqual(t, first, other.Pick(52))
}

func TestHashEntropyDegenerateRemaining(t *testing.T) {
	t.Parallel()

	e := HashEntropy{Height: 1, Nano: 1, Actor: "bob"}
	assert.Equal(t, 0, e.Pick(0))
	assert.Equal(t, 0, e.Pick(1))
}

func TestCardValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 11, Card{Suit: Hearts, Rank: Ace}.Value())
	assert.Equal(t, 10, Card{Suit: Clubs, Rank: King}.Value())
	assert.Equal(t, 10, Card{Suit: Clubs, Rank: Ten}.Value())
	assert.Equal(t, 2, Card{Suit: Diamonds, Rank: Two}.Value())

	assert.True(t, Card{Suit: Hearts, Rank: Ace}.IsAce())
	assert.False(t, Card{Suit: Hearts, Rank: King}.IsAce())
}

func TestCardString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A♠", Card{Suit: Spades, Rank: Ace}.String())
	assert.Equal(t, "T♥", Card{Suit: Hearts, Rank: Ten}.String())
	assert.Equal(t, "K♦", Card{Suit: Diamonds, Rank: King}.String())
}
