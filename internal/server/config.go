package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/spades/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Rules  RulesSettings  `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	BotDelayMS  int    `hcl:"bot_delay_ms,optional"`
	IdleRoomTTL int    `hcl:"idle_room_ttl_seconds,optional"`
}

// RulesSettings is the table rule surface, mapped onto game.RuleConfig.
// The off-switches exist so a zero value means "default on".
type RulesSettings struct {
	BigJoker            string `hcl:"big_joker,optional"`
	BigDeuce            string `hcl:"big_deuce,optional"`
	RenegeOff           bool   `hcl:"renege_off,optional"`
	Board               int    `hcl:"board,optional"`
	MinTotalBid         int    `hcl:"min_total_bid,optional"`
	TargetScore         int    `hcl:"target_score,optional"`
	FirstHandBidsItself bool   `hcl:"first_hand_bids_itself,optional"`
	BagsOff             bool   `hcl:"bags_off,optional"`
	BagsPenaltyAt       int    `hcl:"bags_penalty_at,optional"`
	BagsPenaltyPoints   int    `hcl:"bags_penalty_points,optional"`
	TenForTwoOff        bool   `hcl:"ten_for_two_off,optional"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			BotDelayMS:  500,
			IdleRoomTTL: 300,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
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
	if config.Server.BotDelayMS == 0 {
		config.Server.BotDelayMS = defaults.Server.BotDelayMS
	}
	if config.Server.IdleRoomTTL == 0 {
		config.Server.IdleRoomTTL = defaults.Server.IdleRoomTTL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects rule values the engine would choke on.
func (c *Config) Validate() error {
	r := c.Rules
	if r.BigJoker != "" && r.BigJoker != string(game.BigJokerColor) && r.BigJoker != string(game.BigJokerBW) {
		return fmt.Errorf("invalid big_joker %q: must be color or bw", r.BigJoker)
	}
	if r.BigDeuce != "" && r.BigDeuce != string(game.BigDeuceD2) && r.BigDeuce != string(game.BigDeuceS2) {
		return fmt.Errorf("invalid big_deuce %q: must be D2 or S2", r.BigDeuce)
	}
	if r.Board < 0 || r.Board > 13 {
		return fmt.Errorf("invalid board %d: must be 0-13", r.Board)
	}
	if r.TargetScore < 0 {
		return fmt.Errorf("invalid target_score %d", r.TargetScore)
	}
	return nil
}

// RuleConfig converts the file settings into the engine's rule config,
// overlaying the engine defaults.
func (c *Config) RuleConfig() game.RuleConfig {
	rules := game.DefaultRules()
	r := c.Rules
	if r.BigJoker != "" {
		rules.BigJoker = game.BigJoker(r.BigJoker)
	}
	if r.BigDeuce != "" {
		rules.BigDeuce = game.BigDeuce(r.BigDeuce)
	}
	rules.RenegeOn = !r.RenegeOff
	if r.Board != 0 {
		rules.Board = r.Board
	}
	rules.MinTotalBid = r.MinTotalBid
	if r.TargetScore != 0 {
		rules.TargetScore = r.TargetScore
	}
	rules.FirstHandBidsItself = r.FirstHandBidsItself
	rules.BagsEnabled = !r.BagsOff
	if r.BagsPenaltyAt != 0 {
		rules.BagsPenaltyAt = r.BagsPenaltyAt
	}
	if r.BagsPenaltyPoints != 0 {
		rules.BagsPenaltyPoints = r.BagsPenaltyPoints
	}
	rules.TenForTwoEnabled = !r.TenForTwoOff
	return rules
}

// BotDelay returns the pause before a bot follow-up fires.
func (c *Config) BotDelay() time.Duration {
	return time.Duration(c.Server.BotDelayMS) * time.Millisecond
}
