// Package bot implements server-side players used for seat filling and
// disconnect replacement.
package bot

import (
	rand "math/rand/v2"
	"sort"

	"github.com/lox/spades/internal/game"
	"github.com/lox/spades/internal/randutil"
)

// Strategy decides every move a bot-held seat can be asked to make. The
// room actor calls exactly one method per turn, always after the human
// action that created the turn has committed.
type Strategy interface {
	Bid(hand []game.Card, cfg game.RuleConfig) int
	ChooseNegotiation(teamTotal, minTotal int) game.NegChoice
	RespondNegotiation(teamTotal, requiredTotal int) bool
	PlayCard(hand []game.Card, trick *game.Trick, spadesBroken bool) game.Card
}

// Heuristic is the default strategy: counts likely winners for its bid,
// follows suit honestly, and never reneges.
type Heuristic struct {
	rng *rand.Rand
}

// NewHeuristic creates a strategy with its own deterministic source.
func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: randutil.New(seed)}
}

// Bid estimates winners: high trump counts a full book, low trump half,
// and off-suit aces and kings one and half respectively.
func (h *Heuristic) Bid(hand []game.Card, cfg game.RuleConfig) int {
	score := 0.0
	for _, c := range hand {
		switch {
		case c.Trump && c.Rank >= game.Queen:
			score += 1.0
		case c.Trump:
			score += 0.5
		case c.Rank == game.Ace:
			score += 1.0
		case c.Rank == game.King:
			score += 0.5
		}
	}
	bid := int(score)
	if bid < 1 {
		bid = 1
	}
	if bid > 13 {
		bid = 13
	}
	return bid
}

// ChooseNegotiation takes the safe path: accept books made when the team
// already holds its half of the minimum, otherwise ask for another round.
func (h *Heuristic) ChooseNegotiation(teamTotal, minTotal int) game.NegChoice {
	if 2*teamTotal >= minTotal {
		return game.ChoiceBooksMade
	}
	return game.ChoiceIncrease
}

// RespondNegotiation accepts only once the raise requirement is met.
func (h *Heuristic) RespondNegotiation(teamTotal, requiredTotal int) bool {
	return teamTotal >= requiredTotal
}

// PlayCard follows suit with the cheapest winner when one exists, sheds
// the lowest card otherwise. Leads are low off-suit until spades break.
func (h *Heuristic) PlayCard(hand []game.Card, trick *game.Trick, spadesBroken bool) game.Card {
	if len(hand) == 1 {
		return hand[0]
	}

	sorted := make([]game.Card, len(hand))
	copy(sorted, hand)
	sort.Slice(sorted, func(i, j int) bool { return weaker(sorted[i], sorted[j]) })

	if trick == nil || len(trick.Plays) == 0 {
		return h.lead(sorted, spadesBroken)
	}
	return h.follow(sorted, trick)
}

func (h *Heuristic) lead(sorted []game.Card, spadesBroken bool) game.Card {
	// Once spades are live, occasionally lead strength to pull trump.
	if spadesBroken && h.rng.IntN(3) == 0 {
		return sorted[len(sorted)-1]
	}
	for _, c := range sorted {
		if !c.Trump {
			return c
		}
	}
	return sorted[len(sorted)-1]
}

func (h *Heuristic) follow(sorted []game.Card, trick *game.Trick) game.Card {
	best := trick.Plays[0].Card
	for _, p := range trick.Plays[1:] {
		if game.Beats(p.Card, best, trick.LeadSuit) {
			best = p.Card
		}
	}

	var onSuit []game.Card
	for _, c := range sorted {
		if game.EffectiveSuit(c) == trick.LeadSuit {
			onSuit = append(onSuit, c)
		}
	}
	if len(onSuit) > 0 {
		// Cheapest card that still wins, else the throwaway.
		for _, c := range onSuit {
			if game.Beats(c, best, trick.LeadSuit) {
				return c
			}
		}
		return onSuit[0]
	}

	// Void: cut with the cheapest winning trump, else shed low.
	for _, c := range sorted {
		if c.Trump && game.Beats(c, best, trick.LeadSuit) {
			return c
		}
	}
	for _, c := range sorted {
		if !c.Trump {
			return c
		}
	}
	return sorted[0]
}

// weaker orders cards by playing strength: non-trump by literal rank,
// any trump above any non-trump, trump against trump by trump rank.
func weaker(a, b game.Card) bool {
	if a.Trump != b.Trump {
		return !a.Trump
	}
	if a.Trump {
		return a.TrumpRank < b.TrumpRank
	}
	return a.Rank < b.Rank
}
