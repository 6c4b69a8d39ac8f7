package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the chipjack server"`
	Client  ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Mint    MintCmd          `cmd:"" help:"Mint chips for an account"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chipjack"),
		kong.Description("Two-player blackjack wagering over a chip ledger"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
