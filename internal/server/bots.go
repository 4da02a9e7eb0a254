package server

import (
	"github.com/lox/spades/internal/game"
)

// Bot turns run on the actor goroutine like everything else, one engine
// mutation per wakeup. afterCommit reschedules until nothing is pending,
// so a table of four bots still plays one paced step at a time.

func (a *RoomActor) teamAllBots(t game.Team) bool {
	seats := t.Seats()
	return a.seats[seats[0]].isBot() && a.seats[seats[1]].isBot()
}

func (a *RoomActor) firstBotSeat(t game.Team) game.Seat {
	for _, seat := range t.Seats() {
		if a.seats[seat].isBot() {
			return seat
		}
	}
	return 0
}

// botActionPending reports whether the game currently waits on a seat a
// bot holds.
func (a *RoomActor) botActionPending() bool {
	switch a.room.Phase {
	case game.PhasePlaying:
		return a.seats[a.room.Turn()].isBot()
	case game.PhaseBidding:
		return a.pendingBidStep() != nil
	case game.PhaseNegotiating:
		return a.pendingNegotiationStep() != nil
	default:
		return false
	}
}

// botStep performs at most one bot mutation. Returns whether anything
// committed.
func (a *RoomActor) botStep() bool {
	switch a.room.Phase {
	case game.PhasePlaying:
		return a.botPlay()
	case game.PhaseBidding:
		if step := a.pendingBidStep(); step != nil {
			return step()
		}
	case game.PhaseNegotiating:
		if step := a.pendingNegotiationStep(); step != nil {
			return step()
		}
	}
	return false
}

// pendingBidStep covers the collecting stage and the both-increase
// re-lock cycle, which share the pick-then-confirm shape. Bots on mixed
// teams pick but leave confirmation to their human partner.
func (a *RoomActor) pendingBidStep() func() bool {
	b := a.room.Bidding()
	if b == nil {
		return nil
	}

	// First bot seat on an unconfirmed team without a pick bids.
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		st := a.seats[seat]
		if !st.isBot() || b.Confirmed[game.TeamOf(seat)] {
			continue
		}
		if _, picked := b.Picks[seat]; picked {
			continue
		}
		seat := seat
		return func() bool { return a.botPick(seat) }
	}

	// All-bot turn team with both picks in confirms, topping up to the
	// board minimum first if the heuristic bid short.
	team, ok := b.TurnTeam()
	if !ok || !a.teamAllBots(team) {
		return nil
	}
	seats := team.Seats()
	for _, seat := range seats {
		if _, picked := b.Picks[seat]; !picked {
			return nil
		}
	}
	if b.TeamTotal(team) < b.Board {
		seat := seats[0]
		return func() bool {
			short := b.Board - b.TeamTotal(team)
			if err := a.room.SetBid(seat, b.Picks[seat]+short); err != nil {
				a.logger.Error().Err(err).Int("seat", int(seat)).Msg("Bot board top-up failed")
				return false
			}
			return true
		}
	}

	// In a re-lock cycle an all-bot team closes the whole remaining gap
	// itself rather than re-confirming the same short total forever.
	if b.Stage == game.StageNegotiating {
		combined := b.TeamTotal(team) + b.TeamTotal(team.Other())
		if short := b.MinTotal - combined; short > 0 {
			for _, s := range seats {
				raise := short
				if b.Picks[s]+raise > 13 {
					raise = 13 - b.Picks[s]
				}
				if raise <= 0 {
					continue
				}
				s := s
				return func() bool {
					if err := a.room.SetBid(s, b.Picks[s]+raise); err != nil {
						a.logger.Error().Err(err).Int("seat", int(s)).Msg("Bot relock raise failed")
						return false
					}
					return true
				}
			}
		}
	}
	confirmer := a.firstBotSeat(team)
	return func() bool {
		if err := a.room.ConfirmBid(confirmer); err != nil {
			a.logger.Error().Err(err).Int("seat", int(confirmer)).Msg("Bot confirm failed")
			return false
		}
		return true
	}
}

func (a *RoomActor) botPick(seat game.Seat) bool {
	b := a.room.Bidding()
	if b == nil {
		return false
	}
	st := a.seats[seat]
	value := st.strategy.Bid(a.room.Hand(seat), a.room.Config)
	if floor, ok := b.Baseline[seat]; ok && value < floor {
		value = floor
	}
	if err := a.room.SetBid(seat, value); err != nil {
		a.logger.Error().Err(err).Int("seat", int(seat)).Msg("Bot bid failed")
		return false
	}
	return true
}

// pendingNegotiationStep drives negotiation only for teams with no human
// in either chair; mixed teams negotiate through their human.
func (a *RoomActor) pendingNegotiationStep() func() bool {
	b := a.room.Bidding()
	if b == nil || b.Neg == nil {
		return nil
	}

	switch b.Neg.Stage {
	case game.NegChoose:
		for _, team := range []game.Team{game.TeamOddSeats, game.TeamEvenSeats} {
			if !a.teamAllBots(team) || b.Neg.Choices[team] != game.ChoiceUnset {
				continue
			}
			team := team
			return func() bool { return a.botChoose(team) }
		}
		return nil

	case game.NegOneTeamWaitingAccept:
		team := b.Neg.IncreasingTeam
		if !a.teamAllBots(team) {
			return nil
		}
		return func() bool { return a.botRespond(team) }

	case game.NegBothIncreaseRelock:
		return a.pendingBidStep()
	}
	return nil
}

func (a *RoomActor) botChoose(team game.Team) bool {
	b := a.room.Bidding()
	seat := a.firstBotSeat(team)
	choice := a.seats[seat].strategy.ChooseNegotiation(b.TeamTotal(team), b.MinTotal)
	if err := a.room.ChooseNegotiation(seat, choice); err != nil {
		a.logger.Error().Err(err).Int("seat", int(seat)).Msg("Bot negotiation choice failed")
		return false
	}
	return true
}

// botRespond raises the team's picks toward the required total one step
// at a time, then accepts; declines when no further raise is possible.
func (a *RoomActor) botRespond(team game.Team) bool {
	b := a.room.Bidding()
	seat := a.firstBotSeat(team)
	total := b.TeamTotal(team)
	required := b.Neg.RequiredTotal

	if a.seats[seat].strategy.RespondNegotiation(total, required) {
		if err := a.room.RespondNegotiation(seat, true); err != nil {
			a.logger.Error().Err(err).Int("seat", int(seat)).Msg("Bot accept failed")
			return false
		}
		return true
	}

	short := required - total
	for _, s := range team.Seats() {
		pick := b.Picks[s]
		raise := short
		if pick+raise > 13 {
			raise = 13 - pick
		}
		if raise <= 0 {
			continue
		}
		if err := a.room.SetBid(s, pick+raise); err != nil {
			a.logger.Error().Err(err).Int("seat", int(s)).Msg("Bot raise failed")
			return false
		}
		return true
	}

	// Both seats capped and still short: give up the raise.
	if err := a.room.RespondNegotiation(seat, false); err != nil {
		a.logger.Error().Err(err).Int("seat", int(seat)).Msg("Bot decline failed")
		return false
	}
	return true
}

func (a *RoomActor) botPlay() bool {
	seat := a.room.Turn()
	st := a.seats[seat]
	if !st.isBot() {
		return false
	}
	hand := a.room.Hand(seat)
	card := st.strategy.PlayCard(hand, a.room.CurrentTrick(), a.room.SpadesBroken())
	if err := a.room.PlayCard(seat, card.ID); err == nil {
		return true
	}
	// The heuristic missed a legality rule; fall back to anything legal.
	for _, c := range hand {
		if err := a.room.PlayCard(seat, c.ID); err == nil {
			return true
		}
	}
	a.logger.Error().Int("seat", int(seat)).Msg("Bot found no playable card")
	return false
}
