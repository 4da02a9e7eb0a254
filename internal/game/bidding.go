package game

// BidStage is the top-level bidding state: collecting picks, or running the
// minimum-total negotiation sub-protocol. Negotiation state lives in a
// dedicated struct that exists exactly while StageNegotiating is active,
// rather than as a pile of nullable fields toggled by convention.
type BidStage uint8

const (
	StageCollecting BidStage = iota
	StageNegotiating
)

func (s BidStage) String() string {
	if s == StageNegotiating {
		return "negotiating"
	}
	return "collecting"
}

// NegStage is the stage of the negotiation sub-state machine.
type NegStage uint8

const (
	NegChoose NegStage = iota
	NegOneTeamWaitingAccept
	NegBothIncreaseRelock
)

func (s NegStage) String() string {
	switch s {
	case NegOneTeamWaitingAccept:
		return "waiting_accept"
	case NegBothIncreaseRelock:
		return "both_increase_relock"
	default:
		return "choose"
	}
}

// NegChoice is a team's private selection during the choose stage.
type NegChoice uint8

const (
	ChoiceUnset NegChoice = iota
	ChoiceBooksMade
	ChoiceIncrease
)

func (c NegChoice) String() string {
	switch c {
	case ChoiceBooksMade:
		return "books_made"
	case ChoiceIncrease:
		return "increase"
	default:
		return "unset"
	}
}

// Outcome is what a bidding action resolved to. Actions that leave the
// machine mid-protocol return OutcomePending.
type Outcome uint8

const (
	OutcomePending   Outcome = iota
	OutcomePlay              // bids locked, hand proceeds to play
	OutcomeBooksMade         // truce: hand ends immediately with made == bid
)

// Negotiation exists only while confirmed totals sit below the minimum.
type Negotiation struct {
	Stage          NegStage     `json:"stage"`
	Choices        [2]NegChoice `json:"choices"`
	BooksMadeTeam  Team         `json:"books_made_team"` // valid in waiting_accept
	IncreasingTeam Team         `json:"increasing_team"` // valid in waiting_accept
	RequiredTotal  int          `json:"required_total"`  // valid in waiting_accept
}

// Bidding is the per-hand bid collection and negotiation machine.
type Bidding struct {
	Dealer    Seat         `json:"dealer"`
	Picks     map[Seat]int `json:"picks"`
	Confirmed [2]bool      `json:"confirmed"`
	LockOrder [2]Team      `json:"lock_order"`
	Board     int          `json:"board"`
	MinTotal  int          `json:"min_total"`
	Stage     BidStage     `json:"stage"`
	Neg       *Negotiation `json:"negotiation,omitempty"` // non-nil iff Stage == StageNegotiating
	Baseline  map[Seat]int `json:"baseline,omitempty"`    // increase-only floor during negotiation
}

// NewBidding starts a bid collection for the given dealer. The non-dealing
// team confirms first, in the initial round and in every re-lock cycle.
func NewBidding(dealer Seat, cfg RuleConfig) *Bidding {
	dealing := TeamOf(dealer)
	return &Bidding{
		Dealer:    dealer,
		Picks:     make(map[Seat]int, NumSeats),
		LockOrder: [2]Team{dealing.Other(), dealing},
		Board:     cfg.Board,
		MinTotal:  cfg.MinimumTotalBid(),
	}
}

// TeamTotal sums the team's two seat picks; absent picks count as zero.
func (b *Bidding) TeamTotal(t Team) int {
	seats := t.Seats()
	return b.Picks[seats[0]] + b.Picks[seats[1]]
}

// TurnTeam returns the team that must confirm next, if any.
func (b *Bidding) TurnTeam() (Team, bool) {
	for _, t := range b.LockOrder {
		if !b.Confirmed[t] {
			return t, true
		}
	}
	return 0, false
}

func (b *Bidding) teamHasPicks(t Team) bool {
	seats := t.Seats()
	_, ok0 := b.Picks[seats[0]]
	_, ok1 := b.Picks[seats[1]]
	return ok0 && ok1
}

// SetBid records a seat's pick. During negotiation the edit window depends
// on the stage: nobody edits while choices are being made, only the
// increasing team edits while an accept is pending, and both teams edit
// (increase-only) during a re-lock.
func (b *Bidding) SetBid(seat Seat, value int) error {
	if !seat.Valid() {
		return ErrInvalidSeat
	}
	if value < 0 || value > 13 {
		return ErrInvalidBid
	}
	team := TeamOf(seat)

	switch b.Stage {
	case StageCollecting:
		if b.Confirmed[team] {
			return ErrTeamAlreadyConfirmed
		}
	case StageNegotiating:
		switch b.Neg.Stage {
		case NegChoose:
			return ErrWrongStage
		case NegOneTeamWaitingAccept:
			if team != b.Neg.IncreasingTeam {
				return ErrOtherTeamLocked
			}
		case NegBothIncreaseRelock:
			if b.Confirmed[team] {
				return ErrTeamAlreadyConfirmed
			}
		}
		if floor, ok := b.Baseline[seat]; ok && value < floor {
			return ErrMustIncreaseOrHold
		}
	}

	b.Picks[seat] = value
	return nil
}

// Confirm locks a team's picks for the current cycle. When both teams have
// confirmed totals at or above the minimum, bidding resolves to play;
// below it, the negotiation sub-protocol starts (or loops).
func (b *Bidding) Confirm(seat Seat) (Outcome, error) {
	if !seat.Valid() {
		return OutcomePending, ErrInvalidSeat
	}
	if b.Stage == StageNegotiating && b.Neg.Stage != NegBothIncreaseRelock {
		return OutcomePending, ErrWrongStage
	}
	team := TeamOf(seat)
	turn, ok := b.TurnTeam()
	if !ok || turn != team {
		return OutcomePending, ErrNotYourTurnToConfirm
	}
	if !b.teamHasPicks(team) {
		return OutcomePending, ErrBothTeammatesMustPick
	}
	if b.TeamTotal(team) < b.Board {
		return OutcomePending, ErrTeamBidBelowBoard
	}

	b.Confirmed[team] = true
	if _, pending := b.TurnTeam(); pending {
		return OutcomePending, nil
	}

	total := b.TeamTotal(TeamOddSeats) + b.TeamTotal(TeamEvenSeats)
	if total >= b.MinTotal {
		return OutcomePlay, nil
	}

	// Below minimum with both teams locked: negotiate.
	if b.Stage == StageCollecting {
		b.Stage = StageNegotiating
		b.Neg = &Negotiation{Stage: NegChoose}
	} else {
		// Re-lock cycle still short of the minimum: choose again with an
		// updated increase-only baseline.
		b.Neg.Stage = NegChoose
		b.Neg.Choices = [2]NegChoice{}
	}
	b.snapshotBaseline()
	return OutcomePending, nil
}

// Choose records a team's negotiation choice: accept current totals as
// books made, or ask for another bidding round.
func (b *Bidding) Choose(seat Seat, choice NegChoice) (Outcome, error) {
	if !seat.Valid() {
		return OutcomePending, ErrInvalidSeat
	}
	if b.Stage != StageNegotiating || b.Neg.Stage != NegChoose {
		return OutcomePending, ErrWrongStage
	}
	if choice != ChoiceBooksMade && choice != ChoiceIncrease {
		return OutcomePending, ErrInvalidChoice
	}
	team := TeamOf(seat)
	if b.Neg.Choices[team] != ChoiceUnset {
		return OutcomePending, ErrAlreadyChosen
	}
	b.Neg.Choices[team] = choice

	other := team.Other()
	if b.Neg.Choices[other] == ChoiceUnset {
		return OutcomePending, nil
	}

	switch {
	case b.Neg.Choices[team] == ChoiceBooksMade && b.Neg.Choices[other] == ChoiceBooksMade:
		return OutcomeBooksMade, nil

	case b.Neg.Choices[team] == ChoiceIncrease && b.Neg.Choices[other] == ChoiceIncrease:
		b.Neg.Stage = NegBothIncreaseRelock
		b.Confirmed = [2]bool{}
		b.snapshotBaseline()
		return OutcomePending, nil

	default:
		increasing := team
		if b.Neg.Choices[team] == ChoiceBooksMade {
			increasing = other
		}
		made := increasing.Other()
		b.Neg.Stage = NegOneTeamWaitingAccept
		b.Neg.IncreasingTeam = increasing
		b.Neg.BooksMadeTeam = made
		b.Neg.RequiredTotal = b.MinTotal - b.TeamTotal(made)
		b.snapshotBaseline()
		return OutcomePending, nil
	}
}

// Respond is the increasing team's accept/decline while the other team sits
// on books made. Decline resolves the hand as books made at current totals.
func (b *Bidding) Respond(seat Seat, accept bool) (Outcome, error) {
	if !seat.Valid() {
		return OutcomePending, ErrInvalidSeat
	}
	if b.Stage != StageNegotiating || b.Neg.Stage != NegOneTeamWaitingAccept {
		return OutcomePending, ErrWrongStage
	}
	if TeamOf(seat) != b.Neg.IncreasingTeam {
		return OutcomePending, ErrOtherTeamLocked
	}
	if !accept {
		return OutcomeBooksMade, nil
	}
	if b.TeamTotal(b.Neg.IncreasingTeam) < b.Neg.RequiredTotal {
		return OutcomePending, ErrIncreaseNotEnough
	}
	return OutcomePlay, nil
}

// snapshotBaseline freezes current picks as the floor no seat may bid
// under for the remainder of the negotiation.
func (b *Bidding) snapshotBaseline() {
	b.Baseline = make(map[Seat]int, len(b.Picks))
	for seat, v := range b.Picks {
		b.Baseline[seat] = v
	}
}

// FinalBids returns both teams' totals, used once bidding resolves.
func (b *Bidding) FinalBids() [2]int {
	return [2]int{b.TeamTotal(TeamOddSeats), b.TeamTotal(TeamEvenSeats)}
}
