package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int64(60), cfg.Game.RoundTimeout)
	assert.Equal(t, int64(1000), cfg.Game.MaxMint)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigParsesHCL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chipjack.hcl")
	content := `
server {
  address       = "0.0.0.0"
  port          = 9000
  log_level     = "debug"
  snapshot_path = "/var/lib/chipjack/state.json"
}

game {
  round_timeout = 30
  max_mint      = 500
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/chipjack/state.json", cfg.Server.SnapshotPath)
	assert.Equal(t, int64(30), cfg.Game.RoundTimeout)
	assert.Equal(t, int64(500), cfg.Game.MaxMint)
}

func TestLoadConfigBackfillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chipjack.hcl")
	content := `
server {
  port = 9000
}

game {}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", cfg.ListenAddress())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int64(60), cfg.Game.RoundTimeout)
}

func TestLoadConfigRejectsBadHCL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chipjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Game.RoundTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Game.MaxMint = -1
	assert.Error(t, cfg.Validate())
}
