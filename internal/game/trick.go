package game

// EffectiveSuit returns the suit a card counts as for lead and follow
// comparisons: every trump card counts as spades, everything else as its
// literal suit.
func EffectiveSuit(c Card) Suit {
	if c.Trump {
		return Spades
	}
	return c.Suit
}

// Beats reports whether a beats b given the trick's lead (effective) suit.
// Trump beats non-trump unconditionally; trump vs trump compares trump
// rank; between non-trump cards only the lead suit can win, higher literal
// rank first.
func Beats(a, b Card, lead Suit) bool {
	switch {
	case a.Trump && b.Trump:
		return a.TrumpRank > b.TrumpRank
	case a.Trump:
		return true
	case b.Trump:
		return false
	}
	aFollows := EffectiveSuit(a) == lead
	bFollows := EffectiveSuit(b) == lead
	switch {
	case aFollows && bFollows:
		return a.Rank > b.Rank
	case aFollows:
		return true
	default:
		return false
	}
}

// HasLeadSuit reports whether the hand holds a card whose effective suit
// matches the lead. Computed on the hand as it stood before the play; the
// result is the renege ledger's evidentiary field.
func HasLeadSuit(hand []Card, lead Suit) bool {
	for _, c := range hand {
		if EffectiveSuit(c) == lead {
			return true
		}
	}
	return false
}

// allTrump reports whether every card in the hand is trump.
func allTrump(hand []Card) bool {
	for _, c := range hand {
		if !c.Trump {
			return false
		}
	}
	return true
}

// Play is one card placed into a trick, together with the adjudication
// record taken at play time.
type Play struct {
	Seat          Seat `json:"seat"`
	Card          Card `json:"card"`
	EffectiveSuit Suit `json:"effective_suit"`
	HadLeadSuit   bool `json:"had_lead_suit"`
}

// Trick is a sequence of up to four plays. LeadSuit is fixed by the first
// play and immutable for the rest of the trick.
type Trick struct {
	Leader   Seat   `json:"leader"`
	LeadSuit Suit   `json:"lead_suit"`
	Plays    []Play `json:"plays"`
	Winner   Seat   `json:"winner,omitempty"` // set once complete
}

// Complete reports whether all four seats have played.
func (t *Trick) Complete() bool {
	return len(t.Plays) == NumSeats
}

// resolve computes the winning seat: the first play starts as best and each
// later play replaces it if it beats the current best under the lead suit.
func (t *Trick) resolve() Seat {
	best := t.Plays[0]
	for _, p := range t.Plays[1:] {
		if Beats(p.Card, best.Card, t.LeadSuit) {
			best = p
		}
	}
	t.Winner = best.Seat
	return best.Seat
}

// checkLegality enforces follow-suit and the trump-lead restriction. Only
// called when renege mode is off; with renege on, any card may be played
// and violations are contested after the fact.
func checkLegality(hand []Card, c Card, trick *Trick, spadesBroken bool) error {
	if len(trick.Plays) == 0 {
		if EffectiveSuit(c) == Spades && !spadesBroken && !allTrump(hand) {
			return ErrSpadesNotBroken
		}
		return nil
	}
	if HasLeadSuit(hand, trick.LeadSuit) && EffectiveSuit(c) != trick.LeadSuit {
		return ErrMustFollowSuit
	}
	return nil
}
