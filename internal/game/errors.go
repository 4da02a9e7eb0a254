package game

import "errors"

// Rule violations surfaced to the acting client. Each has a stable code so
// the transport layer can map them onto wire errors without string matching.
var (
	ErrInvalidSeat   = errors.New("invalid seat")
	ErrInvalidBid    = errors.New("bid must be between 0 and 13")
	ErrUnknownCard   = errors.New("unknown card id")
	ErrCardNotInHand = errors.New("card not in hand")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrWrongPhase    = errors.New("action not valid in current phase")
	ErrWrongStage    = errors.New("action not valid in current bidding stage")
	ErrInvalidChoice = errors.New("invalid negotiation choice")

	ErrTeamAlreadyConfirmed  = errors.New("team has already confirmed its bid")
	ErrOtherTeamLocked       = errors.New("only the increasing team may edit bids")
	ErrMustIncreaseOrHold    = errors.New("bid may not drop below its negotiation baseline")
	ErrNotYourTurnToConfirm  = errors.New("not your team's turn to confirm")
	ErrBothTeammatesMustPick = errors.New("both teammates must pick before confirming")
	ErrTeamBidBelowBoard     = errors.New("team bid is below the board minimum")
	ErrIncreaseNotEnough     = errors.New("increased total does not meet the requirement")
	ErrAlreadyChosen         = errors.New("team has already chosen for this negotiation")

	ErrMustFollowSuit  = errors.New("must follow the lead suit")
	ErrSpadesNotBroken = errors.New("cannot lead trump before spades are broken")

	ErrRenegeDisabled  = errors.New("renege calls are disabled")
	ErrRenegeOwnTeam   = errors.New("cannot accuse your own team")
	ErrRenegeBadRef    = errors.New("accusation references an unknown trick or play")
	ErrRenegeDuplicate = errors.New("accusation already adjudicated")
	ErrRenegeCallLimit = errors.New("renege call limit reached for this hand")
)

// Invariant violations indicate deck-construction or orchestration defects,
// never bad client input. They abort the operation loudly.
var (
	ErrDeckSize    = errors.New("invariant: deck must contain exactly 52 cards")
	ErrMissingCard = errors.New("invariant: required trump anchor missing from deck")
	ErrHandSize    = errors.New("invariant: dealt hand is not 13 cards")
	ErrNoDiamond   = errors.New("invariant: no diamond found during dealer probe")
)

// IsInvariant reports whether err is a defect rather than a user-facing
// rule violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrDeckSize) ||
		errors.Is(err, ErrMissingCard) ||
		errors.Is(err, ErrHandSize) ||
		errors.Is(err, ErrNoDiamond)
}

var errorCodes = map[error]string{
	ErrInvalidSeat:           "invalid_seat",
	ErrInvalidBid:            "invalid_bid",
	ErrUnknownCard:           "unknown_card",
	ErrCardNotInHand:         "card_not_in_hand",
	ErrNotYourTurn:           "not_your_turn",
	ErrWrongPhase:            "wrong_phase",
	ErrWrongStage:            "wrong_stage",
	ErrInvalidChoice:         "invalid_choice",
	ErrTeamAlreadyConfirmed:  "team_already_confirmed",
	ErrOtherTeamLocked:       "other_team_locked",
	ErrMustIncreaseOrHold:    "must_increase_or_hold",
	ErrNotYourTurnToConfirm:  "not_your_turn_to_confirm",
	ErrBothTeammatesMustPick: "both_teammates_must_pick",
	ErrTeamBidBelowBoard:     "team_bid_below_board",
	ErrIncreaseNotEnough:     "increase_not_enough",
	ErrAlreadyChosen:         "already_chosen",
	ErrMustFollowSuit:        "must_follow_suit",
	ErrSpadesNotBroken:       "spades_not_broken",
	ErrRenegeDisabled:        "renege_disabled",
	ErrRenegeOwnTeam:         "renege_own_team",
	ErrRenegeBadRef:          "renege_bad_reference",
	ErrRenegeDuplicate:       "renege_duplicate",
	ErrRenegeCallLimit:       "renege_call_limit",
	ErrDeckSize:              "deck_size_invalid",
	ErrMissingCard:           "missing_card",
	ErrHandSize:              "bad_hand_size",
	ErrNoDiamond:             "no_diamond_found",
}

// ErrorCode returns the stable wire code for a rules error, or "internal"
// for anything unrecognised.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "internal"
}
