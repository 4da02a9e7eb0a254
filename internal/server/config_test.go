package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spades/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spades.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)

	rules := cfg.RuleConfig()
	assert.Equal(t, game.DefaultRules(), rules)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  address     = "0.0.0.0"
  port        = 9000
  log_level   = "debug"
  bot_delay_ms = 50
}

rules {
  big_joker    = "bw"
  big_deuce    = "S2"
  renege_off   = true
  board        = 5
  target_score = 300
  bags_penalty_at = 7
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Server.BotDelayMS)

	rules := cfg.RuleConfig()
	assert.Equal(t, game.BigJokerBW, rules.BigJoker)
	assert.Equal(t, game.BigDeuceS2, rules.BigDeuce)
	assert.False(t, rules.RenegeOn)
	assert.Equal(t, 5, rules.Board)
	assert.Equal(t, 13, rules.MinimumTotalBid())
	assert.Equal(t, 300, rules.TargetScore)
	assert.Equal(t, 7, rules.BagsPenaltyAt)
	assert.True(t, rules.TenForTwoEnabled)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
rules {
  big_joker = "red"
}
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "big_joker")

	path = writeConfig(t, `
rules {
  board = 20
}
`)
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "board")
}
