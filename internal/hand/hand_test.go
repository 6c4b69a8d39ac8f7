package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jykim/chipjack/internal/deck"
)

func card(s deck.Suit, r deck.Rank) deck.Card {
	return deck.Card{Suit: s, Rank: r}
}

func TestAddAccumulatesValue(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Add(card(deck.Hearts, deck.Seven)))
	require.NoError(t, h.Add(card(deck.Spades, deck.Five)))

	assert.Equal(t, 12, h.Value)
	assert.Len(t, h.Cards, 2)
	assert.False(t, h.Busted())
	assert.False(t, h.Fixed)
}

func TestAceCountsElevenThenOne(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Add(card(deck.Hearts, deck.Ace)))
	assert.Equal(t, 11, h.Value)

	require.NoError(t, h.Add(card(deck.Spades, deck.Nine)))
	assert.Equal(t, 20, h.Value)

	// Third card would bust at 11, so the ace demotes to 1.
	require.NoError(t, h.Add(card(deck.Clubs, deck.Five)))
	assert.Equal(t, 15, h.Value)
	assert.False(t, h.Busted())
}

func TestMultipleAcesDemoteOneAtATime(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Add(card(deck.Hearts, deck.Ace)))
	require.NoError(t, h.Add(card(deck.Spades, deck.Ace)))
	// 11 + 11 busts, one ace demotes: 12.
	assert.Equal(t, 12, h.Value)

	require.NoError(t, h.Add(card(deck.Clubs, deck.Ten)))
	// 22 busts, second ace demotes: 12.
	assert.Equal(t, 12, h.Value)
	assert.Equal(t, 0, h.Aces)
}

func TestBust(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Add(card(deck.Hearts, deck.King)))
	require.NoError(t, h.Add(card(deck.Spades, deck.Queen)))
	require.NoError(t, h.Add(card(deck.Clubs, deck.Five)))

	assert.Equal(t, 25, h.Value)
	assert.True(t, h.Busted())
}

func TestFixBlocksDrawing(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Add(card(deck.Hearts, deck.Ten)))
	h.Fix()

	err := h.Add(card(deck.Spades, deck.Two))
	assert.ErrorIs(t, err, ErrAlreadyFixed)
	assert.Equal(t, 10, h.Value)
}

func TestHandFixesAtCardLimit(t *testing.T) {
	t.Parallel()

	h := New()
	for _, r := range []deck.Rank{deck.Two, deck.Three, deck.Two, deck.Four, deck.Five} {
		require.NoError(t, h.Add(card(deck.Hearts, r)))
	}

	require.Len(t, h.Cards, MaxCards)
	assert.True(t, h.Fixed)
	assert.ErrorIs(t, h.Add(card(deck.Spades, deck.Two)), ErrAlreadyFixed)
}

func TestString(t *testing.T) {
	t.Parallel()

	h := New()
	assert.Equal(t, "empty (0)", h.String())

	require.NoError(t, h.Add(card(deck.Spades, deck.Ace)))
	require.NoError(t, h.Add(card(deck.Hearts, deck.Seven)))
	assert.Equal(t, "A♠ 7♥ (18)", h.String())
}
