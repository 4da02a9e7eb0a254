package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the spades room server"`
	Bot     BotCmd           `cmd:"" help:"Connect heuristic bots to a room"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("spades"),
		kong.Description("Partnership spades server with jokers, the big deuce and renege adjudication"),
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
