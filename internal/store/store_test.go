package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/ledger"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "missing.json"), testLogger())
	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	in := &Snapshot{
		Height: 42,
		Balances: map[ledger.Account]int64{
			"alice": 70,
			"bob":   30,
		},
		Supply: 100,
		Journal: []ledger.Entry{
			{Kind: ledger.EntryMint, To: "alice", Amount: 100},
			{Kind: ledger.EntryTransfer, From: "alice", To: "bob", Amount: 30},
		},
		Game: &game.State{
			Results: []string{"alice wins against bob."},
		},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, Version, out.Version)
	assert.Equal(t, int64(42), out.Height)
	assert.Equal(t, in.Balances, out.Balances)
	assert.Equal(t, in.Supply, out.Supply)
	assert.Equal(t, in.Journal, out.Journal)
	require.NotNil(t, out.Game)
	assert.Equal(t, in.Game.Results, out.Game.Results)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o644))

	s := New(path, testLogger())
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrVersion)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path, testLogger())
	_, err := s.Load()
	assert.Error(t, err)
}

func TestDisabledStore(t *testing.T) {
	t.Parallel()

	s := New("", testLogger())
	assert.False(t, s.Enabled())

	require.NoError(t, s.Save(&Snapshot{Height: 1}))
	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}
