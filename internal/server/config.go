package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	Port         int    `hcl:"port,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	SnapshotPath string `hcl:"snapshot_path,optional"`
}

// GameSettings contains game-level configuration
type GameSettings struct {
	RoundTimeout int64 `hcl:"round_timeout,optional"` // logical ticks before forced settlement
	MaxMint      int64 `hcl:"max_mint,optional"`      // largest single mint request
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:      "localhost",
			Port:         8080,
			LogLevel:     "info",
			SnapshotPath: "chipjack.snapshot.json",
		},
		Game: GameSettings{
			RoundTimeout: 60,
			MaxMint:      1000,
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.RoundTimeout == 0 {
		config.Game.RoundTimeout = defaults.Game.RoundTimeout
	}
	if config.Game.MaxMint == 0 {
		config.Game.MaxMint = defaults.Game.MaxMint
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.RoundTimeout < 1 {
		return fmt.Errorf("round_timeout must be positive, got %d", c.Game.RoundTimeout)
	}
	if c.Game.MaxMint < 0 {
		return fmt.Errorf("max_mint cannot be negative, got %d", c.Game.MaxMint)
	}
	return nil
}

// ListenAddress returns the full address the server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
