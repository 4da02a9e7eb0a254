package game

import "fmt"

// Suit identifies a card suit. Jokers carry the NoSuit sentinel; their
// effective suit is always spades because they are trump.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
	NoSuit
)

// String returns the single-letter suit code used in card ids.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// Rank values are chosen so literal comparison matches card strength
// (2 low, ace high). Jokers rank above everything but only matter via
// their trump rank.
type Rank uint8

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
	Joker Rank = 15
)

func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + r))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Joker:
		return "Joker"
	default:
		return "?"
	}
}

// JokerColor distinguishes the two jokers in the deck.
type JokerColor uint8

const (
	JokerNone JokerColor = iota
	JokerColorful
	JokerBW
)

// Card is an immutable value after deck construction. Trump metadata is
// assigned once by the trump pass at build time and never mutated again.
type Card struct {
	ID        string     `json:"id"`
	Suit      Suit       `json:"suit"`
	Rank      Rank       `json:"rank"`
	Joker     JokerColor `json:"joker,omitempty"`
	Trump     bool       `json:"trump"`
	TrumpRank int        `json:"trump_rank,omitempty"`
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c.Joker != JokerNone
}

func (c Card) String() string {
	return c.ID
}

func newCard(rank Rank, suit Suit) Card {
	return Card{
		ID:   fmt.Sprintf("%s%s", rank, suit),
		Suit: suit,
		Rank: rank,
	}
}

func newJoker(color JokerColor) Card {
	id := "JokerColor"
	if color == JokerBW {
		id = "JokerBW"
	}
	return Card{
		ID:    id,
		Suit:  NoSuit,
		Rank:  Joker,
		Joker: color,
	}
}

// Seat numbers run 1..4 clockwise. Seats 1 and 3 form one partnership,
// seats 2 and 4 the other.
type Seat int

// NumSeats is the fixed table size for the four-seat partnership format.
const NumSeats = 4

// Valid reports whether the seat is one of the four table seats.
func (s Seat) Valid() bool {
	return s >= 1 && s <= NumSeats
}

// Next returns the seat to the left (clockwise).
func (s Seat) Next() Seat {
	return s%NumSeats + 1
}

// Team identifies one of the two partnerships.
type Team int

const (
	TeamOddSeats  Team = 0 // seats 1 and 3
	TeamEvenSeats Team = 1 // seats 2 and 4
)

// TeamOf returns the partnership a seat belongs to.
func TeamOf(s Seat) Team {
	return Team((int(s) - 1) % 2)
}

// Other returns the opposing team.
func (t Team) Other() Team {
	return 1 - t
}

// Seats returns the two seats of the partnership in ascending order.
func (t Team) Seats() [2]Seat {
	if t == TeamOddSeats {
		return [2]Seat{1, 3}
	}
	return [2]Seat{2, 4}
}
