package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/client"
)

// MintCmd buys chips for an account without entering the interactive
// client, handy for seeding test play.
type MintCmd struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Name   string `kong:"default='',help='Account name (defaults to $USER or \"Player\")'"`
	Amount int64  `kong:"arg='',help='Number of chips to mint'"`
}

func (c *MintCmd) Run() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "Player"
	}

	cl := client.New(strings.TrimSpace(c.Server), zerolog.Nop())
	if err := cl.Connect(); err != nil {
		return err
	}
	defer cl.Disconnect()

	if _, err := cl.Hello(name); err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	balance, err := cl.Mint(c.Amount)
	if err != nil {
		return err
	}
	fmt.Printf("Minted %d chips for %s. Balance: %d\n", c.Amount, name, balance)
	return nil
}
