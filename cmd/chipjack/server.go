package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/jykim/chipjack/cmd/chipjack/shared"
	"github.com/jykim/chipjack/internal/server"
	"github.com/jykim/chipjack/internal/store"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config   string `kong:"short='c',default='chipjack.hcl',help='Path to HCL configuration file'"`
	Addr     string `kong:"help='Listen address (overrides config)'"`
	LogLevel string `kong:"help='Log level (overrides config)'"`
	Snapshot string `kong:"help='Snapshot file path (overrides config)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid --addr %q: %w", c.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid --addr port %q: %w", port, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Snapshot != "" {
		cfg.Server.SnapshotPath = c.Snapshot
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	st := store.New(cfg.Server.SnapshotPath, logger)
	service, err := server.NewService(logger, quartz.NewReal(), st, cfg.Game)
	if err != nil {
		return err
	}
	s := server.NewServer(service, logger)

	logger.Info().
		Str("address", cfg.ListenAddress()).
		Str("snapshot", cfg.Server.SnapshotPath).
		Int64("round_timeout", cfg.Game.RoundTimeout).
		Int64("max_mint", cfg.Game.MaxMint).
		Msg("Starting chipjack server")

	ctx := shared.SetupSignalHandler(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(cfg.ListenAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
