package game

import (
	"testing"

	"github.com/lox/spades/internal/randutil"
)

func startedRoom(t *testing.T, cfg RuleConfig, seed int64) *Room {
	t.Helper()
	r := NewRoom(cfg, WithRNG(randutil.New(seed)))
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r
}

// driveBids sets every pick and confirms in lock order: the dealing team
// bids dealingTotal split across its seats, the other team otherTotal.
func driveBids(t *testing.T, r *Room, dealingTotal, otherTotal int) {
	t.Helper()
	dealing := TeamOf(r.Dealer)
	setPair := func(team Team, total int) {
		seats := team.Seats()
		if err := r.SetBid(seats[0], total/2); err != nil {
			t.Fatalf("SetBid(%d): %v", seats[0], err)
		}
		if err := r.SetBid(seats[1], total-total/2); err != nil {
			t.Fatalf("SetBid(%d): %v", seats[1], err)
		}
	}
	setPair(dealing, dealingTotal)
	setPair(dealing.Other(), otherTotal)
	if err := r.ConfirmBid(dealing.Other().Seats()[0]); err != nil {
		t.Fatalf("non-dealing confirm: %v", err)
	}
	if err := r.ConfirmBid(dealing.Seats()[0]); err != nil {
		t.Fatalf("dealing confirm: %v", err)
	}
}

// playOutHand plays the current hand to completion: every seat throws its
// first card in hand. Renege mode is assumed on, so every play is legal.
func playOutHand(t *testing.T, r *Room) {
	t.Helper()
	hand := r.HandNum
	for r.Phase == PhasePlaying && r.HandNum == hand {
		seat := r.Turn()
		cards := r.Hand(seat)
		if len(cards) == 0 {
			t.Fatalf("seat %d out of cards mid-hand", seat)
		}
		if err := r.PlayCard(seat, cards[0].ID); err != nil {
			t.Fatalf("PlayCard(%d, %s): %v", seat, cards[0].ID, err)
		}
	}
}

func TestRoomStart(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 1)

	if r.Phase != PhaseBidding {
		t.Fatalf("phase = %v, want bidding", r.Phase)
	}
	if !r.Dealer.Valid() {
		t.Fatalf("dealer = %d", r.Dealer)
	}
	if r.Probe == nil || r.Probe.Card.Suit != Diamonds {
		t.Fatalf("probe = %+v", r.Probe)
	}
	if r.HandNum != 1 {
		t.Errorf("hand num = %d", r.HandNum)
	}
	for seat := Seat(1); seat <= NumSeats; seat++ {
		if got := len(r.Hand(seat)); got != 13 {
			t.Errorf("seat %d dealt %d cards", seat, got)
		}
	}

	// A second start is rejected.
	if err := r.Start(); err != ErrWrongPhase {
		t.Errorf("restart: %v", err)
	}
	// Play actions are rejected outside the playing phase.
	if err := r.PlayCard(1, "As"); err != ErrWrongPhase {
		t.Errorf("play during bidding: %v", err)
	}
}

func TestRoomBidToPlayTransition(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 2)
	driveBids(t, r, 6, 6)

	if r.Phase != PhasePlaying {
		t.Fatalf("phase = %v, want playing", r.Phase)
	}
	if r.FinalBids[TeamOf(r.Dealer)] != 6 {
		t.Errorf("final bids = %v", r.FinalBids)
	}
	if r.Turn() != r.Dealer.Next() {
		t.Errorf("leader = %d, dealer = %d", r.Turn(), r.Dealer)
	}
	if r.Bidding() != nil {
		t.Error("bidding machine still live in play phase")
	}
	// Bid actions are rejected once play begins.
	if err := r.SetBid(1, 4); err != ErrWrongPhase {
		t.Errorf("bid during play: %v", err)
	}
}

func TestRoomPlayValidation(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 3)
	driveBids(t, r, 6, 6)

	turn := r.Turn()
	other := turn.Next()
	if err := r.PlayCard(other, r.Hand(other)[0].ID); err != ErrNotYourTurn {
		t.Errorf("out of turn: %v", err)
	}
	if err := r.PlayCard(turn, "Zz"); err != ErrUnknownCard {
		t.Errorf("unknown card: %v", err)
	}
	notHeld := r.Hand(other)[0].ID
	if err := r.PlayCard(turn, notHeld); err != ErrCardNotInHand {
		t.Errorf("card not in hand: %v", err)
	}
	// All rejections left the hand untouched.
	if got := len(r.Hand(turn)); got != 13 {
		t.Errorf("hand size after rejects = %d", got)
	}
}

func TestRoomFullHand(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 4)
	driveBids(t, r, 6, 6)
	playOutHand(t, r)

	if len(r.HandHistory) != 1 {
		t.Fatalf("hand history length = %d", len(r.HandHistory))
	}
	hs := r.HandHistory[0]
	if hs.Teams[0].Made+hs.Teams[1].Made != 13 {
		t.Errorf("made %d + %d != 13", hs.Teams[0].Made, hs.Teams[1].Made)
	}
	if r.Scores[0] != hs.Teams[0].Delta || r.Scores[1] != hs.Teams[1].Delta {
		t.Errorf("scores %v not applied from %+v", r.Scores, hs)
	}
	// Non-terminal: dealer rotated and the next hand began.
	if r.Phase == PhaseComplete {
		t.Fatal("match ended after one hand at target 500")
	}
	if r.HandNum != 2 {
		t.Errorf("hand num = %d", r.HandNum)
	}
	if r.Phase != PhaseBidding {
		t.Errorf("phase = %v", r.Phase)
	}
}

func TestRoomFirstHandBidsItself(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()
	cfg.FirstHandBidsItself = true
	r := startedRoom(t, cfg, 5)

	if r.Phase != PhasePlaying {
		t.Fatalf("phase = %v, want playing (no bid round)", r.Phase)
	}
	playOutHand(t, r)

	hs := r.HandHistory[0]
	for team, ts := range hs.Teams {
		if ts.Delta != 10*ts.Made {
			t.Errorf("team %d delta %d for %d books", team, ts.Delta, ts.Made)
		}
		if ts.BagsAfter != 0 {
			t.Errorf("team %d accrued bags on the open hand", team)
		}
	}
	if r.Phase == PhaseComplete {
		// Instant win path: one team took ten or more books.
		winner := *r.Winner
		if hs.Teams[winner].Made < 10 {
			t.Errorf("match ended with winner on %d books", hs.Teams[winner].Made)
		}
	} else if r.HandNum != 2 || r.Phase != PhaseBidding {
		t.Errorf("hand num = %d phase = %v", r.HandNum, r.Phase)
	}
}

func TestRoomBooksMadeTruceEndsMatch(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()
	cfg.TargetScore = 50
	r := startedRoom(t, cfg, 6)

	// 4 + 6 = 10 < 11 forces negotiation.
	driveBids(t, r, 4, 6)
	if r.Phase != PhaseNegotiating {
		t.Fatalf("phase = %v, want negotiating", r.Phase)
	}

	dealing := TeamOf(r.Dealer)
	if err := r.ChooseNegotiation(dealing.Seats()[0], ChoiceBooksMade); err != nil {
		t.Fatal(err)
	}
	if err := r.ChooseNegotiation(dealing.Other().Seats()[0], ChoiceBooksMade); err != nil {
		t.Fatal(err)
	}

	// Truce scores 40 and 60; only the non-dealing team clears 50.
	if r.Phase != PhaseComplete {
		t.Fatalf("phase = %v, want complete", r.Phase)
	}
	if r.Winner == nil || *r.Winner != dealing.Other() {
		t.Errorf("winner = %v, want %v", r.Winner, dealing.Other())
	}
	if !r.HandHistory[0].BooksMade {
		t.Error("hand not marked books made")
	}
	if r.Scores[dealing] != 40 || r.Scores[dealing.Other()] != 60 {
		t.Errorf("scores = %v", r.Scores)
	}
}

func TestRoomRenegeAdjudication(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 7)
	driveBids(t, r, 6, 6)

	// Complete two tricks.
	for len(r.TrickHistory()) < 2 {
		seat := r.Turn()
		if err := r.PlayCard(seat, r.Hand(seat)[0].ID); err != nil {
			t.Fatalf("PlayCard: %v", err)
		}
	}

	trick := r.TrickHistory()[0]
	play := trick.Plays[1]
	accused := play.Seat
	accuser := accused.Next() // opposing team

	confirmed, err := r.CallRenege(accuser, accused, r.HandNum, 0, 1)
	if err != nil {
		t.Fatalf("CallRenege: %v", err)
	}
	want := play.HadLeadSuit && play.EffectiveSuit != trick.LeadSuit
	if confirmed != want {
		t.Errorf("confirmed = %v, want %v", confirmed, want)
	}

	calls, adjust := r.RenegeLog()
	if len(calls) != 1 {
		t.Fatalf("call log length = %d", len(calls))
	}
	gain, lose := TeamOf(accuser), TeamOf(accused)
	if !confirmed {
		gain, lose = lose, gain
	}
	if adjust[gain] != 3 || adjust[lose] != -3 {
		t.Errorf("adjust = %v (confirmed=%v)", adjust, confirmed)
	}

	// The broadcast snapshot carries the call log and the net adjustment,
	// so clients reconstructing state from room_state alone see both.
	snap := r.Snapshot()
	if len(snap.RenegeCalls) != 1 {
		t.Errorf("snapshot call log length = %d", len(snap.RenegeCalls))
	}
	if snap.Adjust != adjust {
		t.Errorf("snapshot adjust = %v, want %v", snap.Adjust, adjust)
	}

	// Same referenced play again.
	if _, err := r.CallRenege(accuser, accused, r.HandNum, 0, 1); err != ErrRenegeDuplicate {
		t.Errorf("duplicate: %v", err)
	}
	// Accusing a teammate.
	if _, err := r.CallRenege(accuser, accuser.Next().Next(), r.HandNum, 0, 1); err != ErrRenegeOwnTeam {
		t.Errorf("own team: %v", err)
	}
	// Play index that belongs to a different seat.
	if _, err := r.CallRenege(accuser, accused, r.HandNum, 0, 2); err != ErrRenegeBadRef {
		t.Errorf("mismatched play index: %v", err)
	}
	// Stale hand number and out-of-range trick.
	if _, err := r.CallRenege(accuser, accused, r.HandNum+1, 0, 1); err != ErrRenegeBadRef {
		t.Errorf("wrong hand: %v", err)
	}
	if _, err := r.CallRenege(accuser, accused, r.HandNum, 5, 1); err != ErrRenegeBadRef {
		t.Errorf("future trick: %v", err)
	}

	// Two more calls exhaust the accusing team's budget.
	trick1 := r.TrickHistory()[1]
	idxOf := func(tr Trick, s Seat) int {
		for i, p := range tr.Plays {
			if p.Seat == s {
				return i
			}
		}
		t.Fatalf("seat %d missing from trick", s)
		return -1
	}
	teammate := accused.Next().Next()
	if _, err := r.CallRenege(accuser, accused, r.HandNum, 1, idxOf(trick1, accused)); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if _, err := r.CallRenege(accuser, teammate, r.HandNum, 1, idxOf(trick1, teammate)); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if _, err := r.CallRenege(accuser, accused, r.HandNum, 1, idxOf(trick1, accused)); err != ErrRenegeCallLimit {
		t.Errorf("fourth call: %v", err)
	}
}

func TestRoomRenegeDisabled(t *testing.T) {
	t.Parallel()
	cfg := DefaultRules()
	cfg.RenegeOn = false
	r := startedRoom(t, cfg, 8)
	driveBids(t, r, 6, 6)

	if _, err := r.CallRenege(1, 2, r.HandNum, 0, 0); err != ErrRenegeDisabled {
		t.Errorf("renege off: %v", err)
	}
}

func TestRoomForfeitAndReset(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 9)

	if err := r.Forfeit(3); err != nil {
		t.Fatalf("Forfeit: %v", err)
	}
	if r.Phase != PhaseComplete || r.Winner == nil || *r.Winner != TeamEvenSeats {
		t.Errorf("phase = %v winner = %v", r.Phase, r.Winner)
	}
	if err := r.Forfeit(1); err != ErrWrongPhase {
		t.Errorf("forfeit after complete: %v", err)
	}

	r.Reset()
	if r.Phase != PhaseLobby || r.HandNum != 0 || r.Winner != nil {
		t.Errorf("reset state: phase=%v hand=%d winner=%v", r.Phase, r.HandNum, r.Winner)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestRoomSnapshotMasksPendingChoice(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 6)
	driveBids(t, r, 4, 6)

	dealing := TeamOf(r.Dealer)
	if err := r.ChooseNegotiation(dealing.Seats()[0], ChoiceIncrease); err != nil {
		t.Fatal(err)
	}

	// One team has committed but the stage is still open: the broadcast
	// shows who has chosen without revealing what, so the other team
	// cannot tailor its own choice to the answer.
	nv := r.Snapshot().Bidding.Negotiation
	if nv == nil {
		t.Fatal("no negotiation view")
	}
	if !nv.Chosen[dealing] || nv.Chosen[dealing.Other()] {
		t.Errorf("chosen = %v", nv.Chosen)
	}
	if nv.Choices[dealing] != ChoiceUnset || nv.Choices[dealing.Other()] != ChoiceUnset {
		t.Errorf("choices leaked while choosing: %v", nv.Choices)
	}

	if err := r.ChooseNegotiation(dealing.Other().Seats()[0], ChoiceBooksMade); err != nil {
		t.Fatal(err)
	}

	// Stage resolved: both choices are now public.
	nv = r.Snapshot().Bidding.Negotiation
	if nv.Stage != "waiting_accept" {
		t.Fatalf("stage = %q", nv.Stage)
	}
	if nv.Choices[dealing] != ChoiceIncrease || nv.Choices[dealing.Other()] != ChoiceBooksMade {
		t.Errorf("choices = %v", nv.Choices)
	}
}

func TestRoomSnapshotRedaction(t *testing.T) {
	t.Parallel()
	r := startedRoom(t, DefaultRules(), 10)
	driveBids(t, r, 6, 6)

	seat := r.Turn()
	if err := r.PlayCard(seat, r.Hand(seat)[0].ID); err != nil {
		t.Fatal(err)
	}

	snap := r.Snapshot()
	if snap.Phase != "playing" {
		t.Errorf("phase = %q", snap.Phase)
	}
	if snap.CurrentTrick == nil || len(snap.CurrentTrick.Plays) != 1 {
		t.Fatalf("current trick = %+v", snap.CurrentTrick)
	}
	if snap.HandSizes[seat-1] != 12 {
		t.Errorf("hand sizes = %v after seat %d played", snap.HandSizes, seat)
	}
	if snap.Turn != seat.Next() {
		t.Errorf("turn = %d", snap.Turn)
	}
}
