package game

// BigJoker selects which joker is the top trump.
type BigJoker string

const (
	BigJokerColor BigJoker = "color"
	BigJokerBW    BigJoker = "bw"
)

// BigDeuce selects which deuce ranks above the other.
type BigDeuce string

const (
	BigDeuceD2 BigDeuce = "D2"
	BigDeuceS2 BigDeuce = "S2"
)

// RuleConfig is the rules surface supplied by the hosting layer. The zero
// value is not usable; start from DefaultRules.
type RuleConfig struct {
	BigJoker            BigJoker `json:"big_joker"`
	BigDeuce            BigDeuce `json:"big_deuce"`
	RenegeOn            bool     `json:"renege_on"`
	Board               int      `json:"board"`
	MinTotalBid         int      `json:"min_total_bid,omitempty"` // 0 means derive from Board
	TargetScore         int      `json:"target_score"`
	FirstHandBidsItself bool     `json:"first_hand_bids_itself"`
	BagsEnabled         bool     `json:"bags_enabled"`
	BagsPenaltyAt       int      `json:"bags_penalty_at"`
	BagsPenaltyPoints   int      `json:"bags_penalty_points"`
	TenForTwoEnabled    bool     `json:"ten_for_two_enabled"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() RuleConfig {
	return RuleConfig{
		BigJoker:          BigJokerColor,
		BigDeuce:          BigDeuceD2,
		RenegeOn:          true,
		Board:             4,
		TargetScore:       500,
		BagsEnabled:       true,
		BagsPenaltyAt:     10,
		BagsPenaltyPoints: 100,
		TenForTwoEnabled:  true,
	}
}

// MinimumTotalBid returns the combined-bid floor both teams must reach
// together: 2*board+3 unless explicitly overridden.
func (c RuleConfig) MinimumTotalBid() int {
	if c.MinTotalBid > 0 {
		return c.MinTotalBid
	}
	return 2*c.Board + 3
}
