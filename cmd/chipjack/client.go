package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/client"
	"github.com/jykim/chipjack/internal/protocol"
	"github.com/jykim/chipjack/internal/tui"
)

type ClientCmd struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Name   string `kong:"default='',help='Display name (defaults to $USER or \"Player\")'"`
	Debug  bool   `kong:"help='Enable debug logging to chipjack-client.log'"`
}

func (c *ClientCmd) Run() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "Player"
	}

	// The terminal belongs to the TUI, so debug logs go to a file.
	logger := zerolog.Nop()
	if c.Debug {
		f, err := os.OpenFile("chipjack-client.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	cl := client.New(strings.TrimSpace(c.Server), logger)

	pushes := make(chan *protocol.Message, 16)
	cl.OnPush(func(msg *protocol.Message) {
		select {
		case pushes <- msg:
		default:
			logger.Warn().Str("type", msg.Type.String()).Msg("dropping push, channel full")
		}
	})

	if err := cl.Connect(); err != nil {
		return err
	}
	defer cl.Disconnect()

	welcome, err := cl.Hello(name)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	balance, err := cl.Balance()
	if err != nil {
		return err
	}

	model := tui.NewModel(cl, welcome.Account, balance, pushes, logger)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
