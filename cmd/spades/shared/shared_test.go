package shared

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerLevels(t *testing.T) {
	if got := Logger(false, false).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("default level = %v, want info", got)
	}
	if got := Logger(true, false).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("debug level = %v, want debug", got)
	}
	if got := Logger(true, true).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("json debug level = %v, want debug", got)
	}
}

func TestSignalContextStaysOpen(t *testing.T) {
	ctx := SignalContext(zerolog.Nop())
	select {
	case <-ctx.Done():
		t.Fatal("context cancelled without a signal")
	default:
	}
}
