package main

import (
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/spades/cmd/spades/shared"
	"github.com/lox/spades/internal/server"
)

// ServeCmd runs the websocket room server.
type ServeCmd struct {
	Addr       string `kong:"help='Listen address, overrides the config file'"`
	Config     string `kong:"default='spades.hcl',help='Path to HCL config file'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='JSON log output instead of console'"`
	BotDelayMs *int   `kong:"help='Delay before each bot move in milliseconds, overrides the config file'"`
}

func (c *ServeCmd) Run() error {
	logger := shared.Logger(c.Debug, c.Structured)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}
	botDelay := cfg.BotDelay()
	if c.BotDelayMs != nil {
		botDelay = time.Duration(*c.BotDelayMs) * time.Millisecond
	}

	rules := cfg.RuleConfig()
	idleTTL := time.Duration(cfg.Server.IdleRoomTTL) * time.Second
	store := server.NewMemoryRoomStore(rules, quartz.NewReal(), botDelay, idleTTL, logger)
	srv := server.NewServer(addr, store, logger)

	logger.Info().
		Str("address", addr).
		Str("big_joker", string(rules.BigJoker)).
		Str("big_deuce", string(rules.BigDeuce)).
		Bool("renege", rules.RenegeOn).
		Int("board", rules.Board).
		Int("min_total_bid", rules.MinimumTotalBid()).
		Int("target_score", rules.TargetScore).
		Dur("bot_delay", botDelay).
		Msg("Starting spades server")

	ctx := shared.SignalContext(logger)
	return srv.Start(ctx)
}
