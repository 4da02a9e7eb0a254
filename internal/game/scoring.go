package game

// TeamHandScore is one team's slice of a hand's scoring breakdown.
type TeamHandScore struct {
	Bid          int  `json:"bid"`
	Made         int  `json:"made"`
	Delta        int  `json:"delta"`
	BagsAdded    int  `json:"bags_added"`
	BagsAfter    int  `json:"bags_after"`
	BagPenalties int  `json:"bag_penalties"` // rollovers applied this hand
	BidMade      bool `json:"bid_made"`
	TenForTwo    bool `json:"ten_for_two"`
}

// HandScore is the full scoring detail for one hand, returned for the
// audit trail and the client-facing snapshot.
type HandScore struct {
	Teams     [2]TeamHandScore `json:"teams"`
	BooksMade bool             `json:"books_made,omitempty"`
}

// ScoreTeam computes a single team's score delta and bag surplus. With the
// ten-for-two bonus enabled, bids of ten or more score a flat ±200 instead
// of the ±10-per-trick schedule.
func ScoreTeam(bid, made int, cfg RuleConfig) (delta, bags int, tenForTwo bool) {
	if cfg.TenForTwoEnabled && bid >= 10 {
		if made >= bid {
			return 200, made - bid, true
		}
		return -200, 0, true
	}
	if made >= bid {
		return 10 * bid, made - bid, false
	}
	return -10 * bid, 0, false
}

// ApplyBagsPenalty rolls accumulated bags over the threshold into score
// penalties, repeating for large single-hand surpluses.
func ApplyBagsPenalty(bags int, cfg RuleConfig) (remaining, penalty, rollovers int) {
	if !cfg.BagsEnabled || cfg.BagsPenaltyAt <= 0 {
		return bags, 0, 0
	}
	for bags >= cfg.BagsPenaltyAt {
		bags -= cfg.BagsPenaltyAt
		penalty -= cfg.BagsPenaltyPoints
		rollovers++
	}
	return bags, penalty, rollovers
}

// ScoreHand computes both teams' deltas and updated bag counts from their
// {bid, made} pairs: base scoring first, then bag accrual and rollover.
func ScoreHand(bids, made [2]int, bagsBefore [2]int, cfg RuleConfig) HandScore {
	var hs HandScore
	for t := range hs.Teams {
		delta, bagsAdded, tenForTwo := ScoreTeam(bids[t], made[t], cfg)
		bags := bagsBefore[t]
		if cfg.BagsEnabled {
			bags += bagsAdded
		}
		bags, penalty, rollovers := ApplyBagsPenalty(bags, cfg)
		hs.Teams[t] = TeamHandScore{
			Bid:          bids[t],
			Made:         made[t],
			Delta:        delta + penalty,
			BagsAdded:    bagsAdded,
			BagsAfter:    bags,
			BagPenalties: rollovers,
			BidMade:      made[t] >= bids[t],
			TenForTwo:    tenForTwo,
		}
	}
	return hs
}

// ScoreBooksMade scores a negotiated truce: both teams are treated as
// having made exactly their bid, a guaranteed non-negative outcome.
func ScoreBooksMade(bids [2]int, bagsBefore [2]int, cfg RuleConfig) HandScore {
	hs := ScoreHand(bids, bids, bagsBefore, cfg)
	hs.BooksMade = true
	return hs
}

// ScoreUncontestedHand scores a hand played with no bidding round: each
// team simply banks ten points per book taken. No bags accrue.
func ScoreUncontestedHand(made [2]int) HandScore {
	var hs HandScore
	for t := range hs.Teams {
		hs.Teams[t] = TeamHandScore{
			Made:    made[t],
			Delta:   10 * made[t],
			BidMade: made[t] >= 0,
		}
	}
	return hs
}
