package game

import (
	rand "math/rand/v2"

	"github.com/lox/spades/internal/randutil"
)

// trumpRankBase is where the descending trump ordering starts. The absolute
// value is irrelevant; only the strict descent matters.
const trumpRankBase = 1000

// BuildDeck constructs the 52-card trump-augmented deck: a standard deck
// with the 2h and 2c removed and the two jokers added in their place, then
// a single trump metadata pass. Cards are never mutated afterwards.
func BuildDeck(cfg RuleConfig) ([]Card, error) {
	deck := make([]Card, 0, 52)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			if rank == Two && (suit == Hearts || suit == Clubs) {
				continue
			}
			deck = append(deck, newCard(rank, suit))
		}
	}
	deck = append(deck, newJoker(JokerColorful), newJoker(JokerBW))

	if len(deck) != 52 {
		return nil, ErrDeckSize
	}
	applyTrumpMeta(deck, cfg)
	if err := verifyTrumpAnchors(deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// applyTrumpMeta resets all trump flags and assigns the descending trump
// ordering. Precedence: big joker > little joker > big deuce > little
// deuce > spade A,K,Q,...,3. This ordering is the sole source of trump
// strength comparisons.
func applyTrumpMeta(deck []Card, cfg RuleConfig) {
	for i := range deck {
		deck[i].Trump = false
		deck[i].TrumpRank = 0
	}

	rank := trumpRankBase
	assign := func(match func(Card) bool) {
		for i := range deck {
			if match(deck[i]) {
				deck[i].Trump = true
				deck[i].TrumpRank = rank
				rank--
				return
			}
		}
	}

	bigJoker, littleJoker := JokerColorful, JokerBW
	if cfg.BigJoker == BigJokerBW {
		bigJoker, littleJoker = JokerBW, JokerColorful
	}
	assign(func(c Card) bool { return c.Joker == bigJoker })
	assign(func(c Card) bool { return c.Joker == littleJoker })

	isD2 := func(c Card) bool { return c.Rank == Two && c.Suit == Diamonds }
	isS2 := func(c Card) bool { return c.Rank == Two && c.Suit == Spades }
	if cfg.BigDeuce == BigDeuceS2 {
		assign(isS2)
		assign(isD2)
	} else {
		assign(isD2)
		assign(isS2)
	}

	for r := Ace; r >= Three; r-- {
		rr := r
		assign(func(c Card) bool { return c.Suit == Spades && c.Rank == rr && !c.Trump })
	}
}

// verifyTrumpAnchors fails loudly if any required trump card is absent.
func verifyTrumpAnchors(deck []Card) error {
	jokers, spades, d2 := 0, 0, 0
	for _, c := range deck {
		switch {
		case c.IsJoker():
			jokers++
		case c.Suit == Spades:
			spades++
		case c.Suit == Diamonds && c.Rank == Two:
			d2++
		}
	}
	if jokers != 2 || spades != 13 || d2 != 1 {
		return ErrMissingCard
	}
	return nil
}

// ShuffleDeck returns a fresh permutation of deck. A nil rng selects the
// crypto-backed source; pass a seeded rng only from tests.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	if rng == nil {
		rng = randutil.Secure()
	}
	out := make([]Card, len(deck))
	copy(out, deck)
	// Fisher-Yates; index 0 is the top of the deck and is dealt first.
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// DealerProbe records how the first dealer was determined, kept for the
// room's audit trail.
type DealerProbe struct {
	Dealer    Seat `json:"dealer"`
	Card      Card `json:"card"`
	DealIndex int  `json:"deal_index"`
}

// DetermineFirstDealer deals the probe deck one card at a time to seats
// 1,2,3,4,1,... and picks the first seat to receive a diamond. The 2d is
// a diamond for this purpose even though it plays as trump.
func DetermineFirstDealer(deck []Card) (DealerProbe, error) {
	for i, c := range deck {
		if c.Suit == Diamonds {
			return DealerProbe{
				Dealer:    Seat(i%NumSeats) + 1,
				Card:      c,
				DealIndex: i,
			}, nil
		}
	}
	return DealerProbe{}, ErrNoDiamond
}

// DealHands splits a shuffled 52-card deck into four 13-card hands,
// round-robin starting at seat 1.
func DealHands(deck []Card) (map[Seat][]Card, error) {
	if len(deck) != 52 {
		return nil, ErrDeckSize
	}
	hands := make(map[Seat][]Card, NumSeats)
	for i, c := range deck {
		seat := Seat(i%NumSeats) + 1
		hands[seat] = append(hands[seat], c)
	}
	for s := Seat(1); s <= NumSeats; s++ {
		if len(hands[s]) != 13 {
			return nil, ErrHandSize
		}
	}
	return hands, nil
}
