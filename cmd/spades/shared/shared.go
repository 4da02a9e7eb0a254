// Package shared holds the small pieces common to every spades
// subcommand: logger construction and signal-driven shutdown.
package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Logger builds the command logger: pretty console output on stderr, or
// structured JSON when json is set.
func Logger(debug, json bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if json {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SignalContext returns a context cancelled by SIGINT or SIGTERM, logging
// which signal triggered the shutdown.
func SignalContext(logger zerolog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
	}()

	return ctx
}
