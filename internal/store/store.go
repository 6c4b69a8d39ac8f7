// Package store persists the full game state as a versioned JSON
// snapshot written atomically, so a restarted server resumes from the
// last committed state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/fileutil"
	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/ledger"
)

// Version is the snapshot encoding version.
const Version = 1

// ErrVersion is returned when a snapshot was written by an incompatible
// encoding version.
var ErrVersion = errors.New("unsupported snapshot version")

// Snapshot is the on-disk state: the ledger, the room/engine state and
// the logical height at which it was taken.
type Snapshot struct {
	Version  int                      `json:"version"`
	Height   int64                    `json:"height"`
	Balances map[ledger.Account]int64 `json:"balances"`
	Supply   int64                    `json:"supply"`
	Journal  []ledger.Entry           `json:"journal"`
	Game     *game.State              `json:"game"`
}

// Store reads and writes snapshots at a fixed path.
type Store struct {
	path   string
	logger zerolog.Logger
}

// New creates a store. An empty path disables persistence.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Enabled reports whether the store persists anything.
func (s *Store) Enabled() bool {
	return s.path != ""
}

// Load reads the snapshot. A missing file returns (nil, nil).
func (s *Store) Load() (*Snapshot, error) {
	if !s.Enabled() {
		return nil, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}

	s.logger.Info().Str("path", s.path).Int64("height", snap.Height).Msg("snapshot loaded")
	return &snap, nil
}

// Save writes the snapshot atomically.
func (s *Store) Save(snap *Snapshot) error {
	if !s.Enabled() {
		return nil
	}

	snap.Version = Version
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int64("height", snap.Height).Msg("snapshot saved")
	return nil
}
