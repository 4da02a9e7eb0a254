package game

import (
	rand "math/rand/v2"
)

// Phase is the room's top-level lifecycle state.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhaseBidding
	PhaseNegotiating
	PhasePlaying
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseBidding:
		return "bidding"
	case PhaseNegotiating:
		return "negotiating"
	case PhasePlaying:
		return "playing"
	case PhaseComplete:
		return "complete"
	default:
		return "lobby"
	}
}

// RenegeCall is one adjudicated accusation, kept on the room for the
// snapshot's call log.
type RenegeCall struct {
	Accuser    Seat `json:"accuser"`
	Accused    Seat `json:"accused"`
	Hand       int  `json:"hand"`
	TrickIndex int  `json:"trick_index"`
	PlayIndex  int  `json:"play_index"`
	Confirmed  bool `json:"confirmed"`
}

// playState is the trick-taking portion of a hand.
type playState struct {
	turn         Seat
	trickIndex   int
	current      *Trick
	history      []Trick
	books        [2]int
	spadesBroken bool
	adjust       [2]int // renege trick adjustments, zero-sum
	renegeCalls  []RenegeCall
	callsByTeam  [2]int
	noBid        bool // first-hand-bids-itself mode
}

// Room is the sole unit of shared match state. It is not safe for
// concurrent use; the hosting layer must serialise actions (one actor or
// one mutex per room, no suspension mid-action).
type Room struct {
	Config  RuleConfig
	Phase   Phase
	Dealer  Seat
	HandNum int
	Scores  [2]int
	Bags    [2]int

	// Per-hand state. Exactly one of bidding/play is non-nil outside the
	// lobby and complete phases.
	FinalBids [2]int
	bidding   *Bidding
	play      *playState
	hands     map[Seat][]Card
	deckIndex map[string]Card

	Probe       *DealerProbe
	HandHistory []HandScore
	Winner      *Team

	rng *rand.Rand // nil selects the crypto-backed shuffle source
}

// RoomOption configures a Room at construction.
type RoomOption func(*Room)

// WithRNG injects a deterministic shuffle source. Tests only; production
// rooms shuffle from the crypto-backed source.
func WithRNG(rng *rand.Rand) RoomOption {
	return func(r *Room) { r.rng = rng }
}

// NewRoom creates a room in the lobby phase.
func NewRoom(cfg RuleConfig, opts ...RoomOption) *Room {
	r := &Room{Config: cfg, Phase: PhaseLobby}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start begins the match: probe deal for the first dealer, then the first
// hand. Callable only from the lobby.
func (r *Room) Start() error {
	if r.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	deck, err := BuildDeck(r.Config)
	if err != nil {
		return err
	}
	probe, err := DetermineFirstDealer(ShuffleDeck(deck, r.rng))
	if err != nil {
		return err
	}
	r.Probe = &probe
	r.Dealer = probe.Dealer
	return r.startHand()
}

// Reset returns the room to lobby defaults (forfeit/abort path).
func (r *Room) Reset() {
	cfg, rng := r.Config, r.rng
	*r = Room{Config: cfg, Phase: PhaseLobby, rng: rng}
}

// Forfeit ends the match immediately in favour of the opposing team.
func (r *Room) Forfeit(seat Seat) error {
	if !seat.Valid() {
		return ErrInvalidSeat
	}
	if r.Phase == PhaseLobby || r.Phase == PhaseComplete {
		return ErrWrongPhase
	}
	winner := TeamOf(seat).Other()
	r.complete(winner)
	return nil
}

func (r *Room) startHand() error {
	deck, err := BuildDeck(r.Config)
	if err != nil {
		return err
	}
	shuffled := ShuffleDeck(deck, r.rng)
	hands, err := DealHands(shuffled)
	if err != nil {
		return err
	}
	r.HandNum++
	r.hands = hands
	r.deckIndex = make(map[string]Card, len(deck))
	for _, c := range deck {
		r.deckIndex[c.ID] = c
	}
	r.FinalBids = [2]int{}
	r.play = nil
	r.bidding = nil

	if r.Config.FirstHandBidsItself && r.HandNum == 1 {
		r.beginPlay(true)
		return nil
	}
	r.bidding = NewBidding(r.Dealer, r.Config)
	r.Phase = PhaseBidding
	return nil
}

func (r *Room) beginPlay(noBid bool) {
	if r.bidding != nil {
		r.FinalBids = r.bidding.FinalBids()
		r.bidding = nil
	}
	leader := r.Dealer.Next()
	r.play = &playState{
		turn:    leader,
		current: &Trick{Leader: leader},
		noBid:   noBid,
	}
	r.Phase = PhasePlaying
}

// Bidding exposes the live bidding machine for snapshots; nil outside the
// bidding and negotiating phases.
func (r *Room) Bidding() *Bidding {
	return r.bidding
}

// Hand returns a copy of one seat's current hand. The hosting layer sends
// this only to that seat.
func (r *Room) Hand(seat Seat) []Card {
	h := r.hands[seat]
	out := make([]Card, len(h))
	copy(out, h)
	return out
}

// SetBid applies a seat's bid pick.
func (r *Room) SetBid(seat Seat, value int) error {
	if r.bidding == nil {
		return ErrWrongPhase
	}
	return r.bidding.SetBid(seat, value)
}

// ConfirmBid locks a team's picks and advances the bidding machine,
// possibly into negotiation or play.
func (r *Room) ConfirmBid(seat Seat) error {
	if r.bidding == nil {
		return ErrWrongPhase
	}
	outcome, err := r.bidding.Confirm(seat)
	if err != nil {
		return err
	}
	r.applyBidOutcome(outcome)
	return nil
}

// ChooseNegotiation records a team's books-made/increase choice.
func (r *Room) ChooseNegotiation(seat Seat, choice NegChoice) error {
	if r.bidding == nil {
		return ErrWrongPhase
	}
	outcome, err := r.bidding.Choose(seat, choice)
	if err != nil {
		return err
	}
	r.applyBidOutcome(outcome)
	return nil
}

// RespondNegotiation is the increasing team's accept or decline.
func (r *Room) RespondNegotiation(seat Seat, accept bool) error {
	if r.bidding == nil {
		return ErrWrongPhase
	}
	outcome, err := r.bidding.Respond(seat, accept)
	if err != nil {
		return err
	}
	r.applyBidOutcome(outcome)
	return nil
}

func (r *Room) applyBidOutcome(outcome Outcome) {
	switch outcome {
	case OutcomePlay:
		r.beginPlay(false)
	case OutcomeBooksMade:
		bids := r.bidding.FinalBids()
		r.FinalBids = bids
		r.bidding = nil
		r.settleHand(ScoreBooksMade(bids, r.Bags, r.Config))
	default:
		// Still mid-protocol; mirror the machine's stage in the phase.
		if r.bidding.Stage == StageNegotiating {
			r.Phase = PhaseNegotiating
		} else {
			r.Phase = PhaseBidding
		}
	}
}

// Turn returns the seat expected to play next, or 0 when no play is
// pending.
func (r *Room) Turn() Seat {
	if r.Phase != PhasePlaying || r.play == nil {
		return 0
	}
	return r.play.turn
}

// CurrentTrick returns the in-progress trick, nil outside play.
func (r *Room) CurrentTrick() *Trick {
	if r.play == nil {
		return nil
	}
	return r.play.current
}

// TrickHistory returns completed tricks of the current hand.
func (r *Room) TrickHistory() []Trick {
	if r.play == nil {
		return nil
	}
	return r.play.history
}

// Books returns both teams' trick counts for the current hand.
func (r *Room) Books() [2]int {
	if r.play == nil {
		return [2]int{}
	}
	return r.play.books
}

// SpadesBroken reports whether trump has been played this hand.
func (r *Room) SpadesBroken() bool {
	return r.play != nil && r.play.spadesBroken
}

// RenegeLog returns this hand's adjudicated accusations and the net trick
// adjustment per team.
func (r *Room) RenegeLog() ([]RenegeCall, [2]int) {
	if r.play == nil {
		return nil, [2]int{}
	}
	return r.play.renegeCalls, r.play.adjust
}

// PlayCard validates and applies one card play. Validation is complete
// before any mutation: a rejected play leaves the room untouched.
func (r *Room) PlayCard(seat Seat, cardID string) error {
	if r.Phase != PhasePlaying || r.play == nil {
		return ErrWrongPhase
	}
	if !seat.Valid() {
		return ErrInvalidSeat
	}
	ps := r.play
	if ps.turn != seat {
		return ErrNotYourTurn
	}
	if _, known := r.deckIndex[cardID]; !known {
		return ErrUnknownCard
	}
	hand := r.hands[seat]
	idx := -1
	for i, c := range hand {
		if c.ID == cardID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrCardNotInHand
	}
	card := hand[idx]

	if !r.Config.RenegeOn {
		if err := checkLegality(hand, card, ps.current, ps.spadesBroken); err != nil {
			return err
		}
	}

	// Validated; apply.
	leading := len(ps.current.Plays) == 0
	play := Play{
		Seat:          seat,
		Card:          card,
		EffectiveSuit: EffectiveSuit(card),
	}
	if leading {
		ps.current.LeadSuit = play.EffectiveSuit
	}
	// Recorded before removal so the evidence includes the played card.
	play.HadLeadSuit = HasLeadSuit(hand, ps.current.LeadSuit)

	r.hands[seat] = append(hand[:idx:idx], hand[idx+1:]...)
	ps.current.Plays = append(ps.current.Plays, play)
	if card.Trump {
		ps.spadesBroken = true
	}

	if !ps.current.Complete() {
		ps.turn = seat.Next()
		return nil
	}

	winner := ps.current.resolve()
	ps.books[TeamOf(winner)]++
	ps.history = append(ps.history, *ps.current)
	ps.trickIndex++

	if ps.trickIndex == 13 {
		r.finishPlayedHand()
		return nil
	}
	ps.current = &Trick{Leader: winner}
	ps.turn = winner
	return nil
}

// CallRenege adjudicates an accusation against a completed play in this
// hand's trick history. Confirmed: the accused held the lead suit and
// played off it; the accuser's team gains three tricks and the accused
// team loses three. A false accusation reverses the split.
func (r *Room) CallRenege(accuser, accused Seat, handNum, trickIndex, playIndex int) (bool, error) {
	if !r.Config.RenegeOn {
		return false, ErrRenegeDisabled
	}
	if r.Phase != PhasePlaying || r.play == nil {
		return false, ErrWrongPhase
	}
	if !accuser.Valid() || !accused.Valid() {
		return false, ErrInvalidSeat
	}
	if TeamOf(accuser) == TeamOf(accused) {
		return false, ErrRenegeOwnTeam
	}
	ps := r.play
	accuserTeam := TeamOf(accuser)
	if ps.callsByTeam[accuserTeam] >= 3 {
		return false, ErrRenegeCallLimit
	}
	if handNum != r.HandNum {
		return false, ErrRenegeBadRef
	}
	if trickIndex < 0 || trickIndex >= len(ps.history) {
		return false, ErrRenegeBadRef
	}
	trick := ps.history[trickIndex]
	if !trick.Complete() {
		return false, ErrRenegeBadRef
	}
	if playIndex < 0 || playIndex >= len(trick.Plays) {
		return false, ErrRenegeBadRef
	}
	play := trick.Plays[playIndex]
	if play.Seat != accused {
		return false, ErrRenegeBadRef
	}
	for _, c := range ps.renegeCalls {
		if c.Hand == handNum && c.TrickIndex == trickIndex &&
			c.Accused == accused && c.PlayIndex == playIndex {
			return false, ErrRenegeDuplicate
		}
	}

	confirmed := play.HadLeadSuit && play.EffectiveSuit != trick.LeadSuit
	accusedTeam := TeamOf(accused)
	if confirmed {
		ps.adjust[accuserTeam] += 3
		ps.adjust[accusedTeam] -= 3
	} else {
		ps.adjust[accuserTeam] -= 3
		ps.adjust[accusedTeam] += 3
	}
	ps.callsByTeam[accuserTeam]++
	ps.renegeCalls = append(ps.renegeCalls, RenegeCall{
		Accuser:    accuser,
		Accused:    accused,
		Hand:       handNum,
		TrickIndex: trickIndex,
		PlayIndex:  playIndex,
		Confirmed:  confirmed,
	})
	return confirmed, nil
}

// finishPlayedHand scores a fully played hand (13 tricks) and either ends
// the match or rolls into the next hand.
func (r *Room) finishPlayedHand() {
	ps := r.play
	made := [2]int{
		ps.books[0] + ps.adjust[0],
		ps.books[1] + ps.adjust[1],
	}

	if ps.noBid {
		hs := ScoreUncontestedHand(made)
		// Instant win: ten or more books on the uncontested first hand
		// ends the match regardless of target score.
		for t := Team(0); t <= 1; t++ {
			if made[t] >= 10 {
				r.HandHistory = append(r.HandHistory, hs)
				r.Scores[0] += hs.Teams[0].Delta
				r.Scores[1] += hs.Teams[1].Delta
				r.complete(t)
				return
			}
		}
		r.settleHand(hs)
		return
	}

	r.settleHand(ScoreHand(r.FinalBids, made, r.Bags, r.Config))
}

// settleHand applies a hand's score, checks terminal conditions and, if
// the match continues, rotates the dealer and starts the next hand.
func (r *Room) settleHand(hs HandScore) {
	r.HandHistory = append(r.HandHistory, hs)
	for t := 0; t < 2; t++ {
		r.Scores[t] += hs.Teams[t].Delta
		r.Bags[t] = hs.Teams[t].BagsAfter
	}

	target := r.Config.TargetScore
	reached0 := r.Scores[0] >= target
	reached1 := r.Scores[1] >= target
	switch {
	case reached0 && reached1:
		// Both over the line in one hand: higher total wins; a dead tie
		// plays on.
		if r.Scores[0] != r.Scores[1] {
			if r.Scores[0] > r.Scores[1] {
				r.complete(TeamOddSeats)
			} else {
				r.complete(TeamEvenSeats)
			}
			return
		}
	case reached0:
		r.complete(TeamOddSeats)
		return
	case reached1:
		r.complete(TeamEvenSeats)
		return
	}

	r.Dealer = r.Dealer.Next()
	if err := r.startHand(); err != nil {
		// Deck construction failing mid-match is a defect; freeze the
		// room rather than continue with corrupt state.
		r.Phase = PhaseComplete
	}
}

func (r *Room) complete(winner Team) {
	w := winner
	r.Winner = &w
	r.Phase = PhaseComplete
	r.play = nil
	r.bidding = nil
	r.hands = nil
}
