package game

import "testing"

func TestScoreTeam(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()

	tests := []struct {
		name      string
		bid, made int
		delta     int
		bags      int
		tenForTwo bool
	}{
		{"made with surplus", 4, 6, 40, 2, false},
		{"made exactly", 5, 5, 50, 0, false},
		{"set", 6, 4, -60, 0, false},
		{"ten for two made", 10, 11, 200, 1, true},
		{"ten for two set", 10, 8, -200, 0, true},
		{"nil bid always made", 0, 3, 0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, bags, tenForTwo := ScoreTeam(tt.bid, tt.made, cfg)
			if delta != tt.delta || bags != tt.bags || tenForTwo != tt.tenForTwo {
				t.Errorf("ScoreTeam(%d, %d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.bid, tt.made, delta, bags, tenForTwo, tt.delta, tt.bags, tt.tenForTwo)
			}
		})
	}

	// Flag off: a ten bid scores on the linear schedule.
	cfg.TenForTwoEnabled = false
	delta, bags, tenForTwo := ScoreTeam(10, 11, cfg)
	if delta != 100 || bags != 1 || tenForTwo {
		t.Errorf("linear ten bid = (%d, %d, %v)", delta, bags, tenForTwo)
	}
}

func TestApplyBagsPenalty(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()

	remaining, penalty, rollovers := ApplyBagsPenalty(7, cfg)
	if remaining != 7 || penalty != 0 || rollovers != 0 {
		t.Errorf("under threshold: (%d, %d, %d)", remaining, penalty, rollovers)
	}

	remaining, penalty, rollovers = ApplyBagsPenalty(13, cfg)
	if remaining != 3 || penalty != -100 || rollovers != 1 {
		t.Errorf("single rollover: (%d, %d, %d)", remaining, penalty, rollovers)
	}

	// A large surplus can roll over more than once in one hand.
	remaining, penalty, rollovers = ApplyBagsPenalty(23, cfg)
	if remaining != 3 || penalty != -200 || rollovers != 2 {
		t.Errorf("double rollover: (%d, %d, %d)", remaining, penalty, rollovers)
	}

	cfg.BagsEnabled = false
	remaining, penalty, rollovers = ApplyBagsPenalty(13, cfg)
	if remaining != 13 || penalty != 0 || rollovers != 0 {
		t.Errorf("bags disabled: (%d, %d, %d)", remaining, penalty, rollovers)
	}
}

func TestScoreHand(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()

	// Team 0 bids 4 and takes 6; team 1 bids 7 and falls short.
	hs := ScoreHand([2]int{4, 7}, [2]int{6, 5}, [2]int{0, 0}, cfg)
	if hs.Teams[0].Delta != 40 || hs.Teams[0].BagsAfter != 2 || !hs.Teams[0].BidMade {
		t.Errorf("team 0: %+v", hs.Teams[0])
	}
	if hs.Teams[1].Delta != -70 || hs.Teams[1].BagsAfter != 0 || hs.Teams[1].BidMade {
		t.Errorf("team 1: %+v", hs.Teams[1])
	}

	// Accrued bags push past the threshold: 8 held + 3 new = 11 → one
	// rollover, 1 bag carried, delta 50 − 100.
	hs = ScoreHand([2]int{5, 6}, [2]int{8, 7}, [2]int{8, 0}, cfg)
	if hs.Teams[0].Delta != -50 || hs.Teams[0].BagsAfter != 1 || hs.Teams[0].BagPenalties != 1 {
		t.Errorf("rollover team: %+v", hs.Teams[0])
	}
	if hs.Teams[1].Delta != 60 || hs.Teams[1].BagsAfter != 1 {
		t.Errorf("clean team: %+v", hs.Teams[1])
	}
}

func TestScoreBooksMade(t *testing.T) {
	t.Parallel()
	hs := ScoreBooksMade([2]int{4, 4}, [2]int{0, 0}, DefaultRules())
	if !hs.BooksMade {
		t.Error("books made flag not set")
	}
	for team, ts := range hs.Teams {
		if ts.Delta != 40 || ts.BagsAdded != 0 || !ts.BidMade {
			t.Errorf("team %d: %+v", team, ts)
		}
	}
}

func TestScoreUncontestedHand(t *testing.T) {
	t.Parallel()
	hs := ScoreUncontestedHand([2]int{9, 4})
	if hs.Teams[0].Delta != 90 || hs.Teams[1].Delta != 40 {
		t.Errorf("deltas: %d, %d", hs.Teams[0].Delta, hs.Teams[1].Delta)
	}
	if hs.Teams[0].BagsAfter != 0 || hs.Teams[1].BagsAfter != 0 {
		t.Error("uncontested hand must not accrue bags")
	}
}
