package game

// TrickView is one trick as broadcast to clients. HadLeadSuit stays
// server-side; exposing it would leak hidden hand information.
type TrickView struct {
	Leader   Seat       `json:"leader"`
	LeadSuit Suit       `json:"lead_suit"`
	Plays    []PlayView `json:"plays"`
	Winner   Seat       `json:"winner,omitempty"`
}

type PlayView struct {
	Seat Seat `json:"seat"`
	Card Card `json:"card"`
}

// NegotiationView mirrors the negotiation sub-state for clients. While
// both teams are still choosing, Choices stay hidden so neither team
// can wait out the other: Chosen says only who has committed. Choices
// are revealed once the stage resolves.
type NegotiationView struct {
	Stage          string       `json:"stage"`
	Choices        [2]NegChoice `json:"choices"`
	Chosen         [2]bool      `json:"chosen"`
	BooksMadeTeam  Team         `json:"books_made_team"`
	IncreasingTeam Team         `json:"increasing_team"`
	RequiredTotal  int          `json:"required_total,omitempty"`
}

// BiddingView is the public bidding state. Picks are table-open.
type BiddingView struct {
	Stage       string           `json:"stage"`
	Picks       map[Seat]int     `json:"picks"`
	Confirmed   [2]bool          `json:"confirmed"`
	TurnTeam    *Team            `json:"turn_team,omitempty"`
	MinTotal    int              `json:"min_total"`
	Negotiation *NegotiationView `json:"negotiation,omitempty"`
}

// Snapshot is the full public room state, safe to broadcast to every
// seat and spectator: no hand contents, no renege evidence.
type Snapshot struct {
	Phase        string       `json:"phase"`
	Dealer       Seat         `json:"dealer,omitempty"`
	HandNum      int          `json:"hand_num"`
	Scores       [2]int       `json:"scores"`
	Bags         [2]int       `json:"bags"`
	FinalBids    [2]int       `json:"final_bids"`
	Bidding      *BiddingView `json:"bidding,omitempty"`
	Turn         Seat         `json:"turn,omitempty"`
	TrickIndex   int          `json:"trick_index"`
	CurrentTrick *TrickView   `json:"current_trick,omitempty"`
	LastTrick    *TrickView   `json:"last_trick,omitempty"`
	Books        [2]int       `json:"books"`
	SpadesBroken bool         `json:"spades_broken"`
	HandSizes    [4]int       `json:"hand_sizes"`
	RenegeCalls  []RenegeCall `json:"renege_calls,omitempty"`
	Adjust       [2]int       `json:"adjust"`
	Probe        *DealerProbe `json:"probe,omitempty"`
	Winner       *Team        `json:"winner,omitempty"`
}

func viewTrick(t *Trick) *TrickView {
	if t == nil {
		return nil
	}
	tv := &TrickView{
		Leader:   t.Leader,
		LeadSuit: t.LeadSuit,
		Winner:   t.Winner,
		Plays:    make([]PlayView, len(t.Plays)),
	}
	for i, p := range t.Plays {
		tv.Plays[i] = PlayView{Seat: p.Seat, Card: p.Card}
	}
	return tv
}

// Snapshot builds the public view of the room.
func (r *Room) Snapshot() Snapshot {
	s := Snapshot{
		Phase:     r.Phase.String(),
		Dealer:    r.Dealer,
		HandNum:   r.HandNum,
		Scores:    r.Scores,
		Bags:      r.Bags,
		FinalBids: r.FinalBids,
		Probe:     r.Probe,
		Winner:    r.Winner,
	}
	for seat := Seat(1); seat <= NumSeats; seat++ {
		s.HandSizes[seat-1] = len(r.hands[seat])
	}
	if b := r.bidding; b != nil {
		bv := &BiddingView{
			Stage:     b.Stage.String(),
			Picks:     make(map[Seat]int, len(b.Picks)),
			Confirmed: b.Confirmed,
			MinTotal:  b.MinTotal,
		}
		if team, ok := b.TurnTeam(); ok {
			bv.TurnTeam = &team
		}
		for seat, pick := range b.Picks {
			bv.Picks[seat] = pick
		}
		if n := b.Neg; n != nil {
			nv := &NegotiationView{
				Stage:          n.Stage.String(),
				BooksMadeTeam:  n.BooksMadeTeam,
				IncreasingTeam: n.IncreasingTeam,
				RequiredTotal:  n.RequiredTotal,
			}
			for team := Team(0); team < 2; team++ {
				nv.Chosen[team] = n.Choices[team] != ChoiceUnset
			}
			if n.Stage != NegChoose {
				nv.Choices = n.Choices
			}
			bv.Negotiation = nv
		}
		s.Bidding = bv
	}
	if ps := r.play; ps != nil {
		s.Turn = ps.turn
		s.TrickIndex = ps.trickIndex
		s.CurrentTrick = viewTrick(ps.current)
		if len(ps.history) > 0 {
			s.LastTrick = viewTrick(&ps.history[len(ps.history)-1])
		}
		s.Books = ps.books
		s.SpadesBroken = ps.spadesBroken
		s.RenegeCalls = ps.renegeCalls
		s.Adjust = ps.adjust
	}
	return s
}
