package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/spades/internal/bot"
	"github.com/lox/spades/internal/game"
	"github.com/lox/spades/internal/protocol"
)

// client is the actor's view of a connected player: just a message sink.
// Session implements it; tests substitute their own.
type client interface {
	Send(msg any) error
}

// exec marks an internal queue entry carrying a closure. Scheduled bot
// follow-ups ride the same command channel as client actions, so
// everything that touches the room runs on the one actor goroutine.
const exec protocol.ActionType = "__exec"

// disconnect marks a session drop; enqueued by the read pump on exit.
const disconnect protocol.ActionType = "__disconnect"

type command struct {
	sess   client
	typ    protocol.ActionType
	action any
}

type seatState struct {
	occupied bool
	name     string
	session  client       // nil while a bot holds the seat
	strategy bot.Strategy // nil while a human holds the seat
}

func (s seatState) isBot() bool {
	return s.occupied && s.strategy != nil
}

// RoomActor owns one game.Room. Every mutation runs on its goroutine,
// pulled off a single queue: actions never interleave, and bot follow-ups
// only fire after the action that created them has fully committed.
type RoomActor struct {
	ID string

	room     *game.Room
	seats    [game.NumSeats + 1]seatState // indexed by seat, slot 0 unused
	commands chan command
	clock    quartz.Clock
	botDelay time.Duration
	logger   zerolog.Logger
	onEmpty  func(string)

	botSeq     int64
	lastActive atomic.Int64 // unix nanos of the last handled command
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewRoomActor creates and starts the actor for one room.
func NewRoomActor(id string, rules game.RuleConfig, clock quartz.Clock, botDelay time.Duration, logger zerolog.Logger, onEmpty func(string)) *RoomActor {
	a := &RoomActor{
		ID:       id,
		room:     game.NewRoom(rules),
		commands: make(chan command, 64),
		clock:    clock,
		botDelay: botDelay,
		logger:   logger.With().Str("component", "room").Str("room_id", id).Logger(),
		onEmpty:  onEmpty,
		stopCh:   make(chan struct{}),
	}
	a.touch()
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *RoomActor) touch() {
	a.lastActive.Store(a.clock.Now().UnixNano())
}

// LastActive reports when the actor last handled a command. Used by the
// store's idle reaper.
func (a *RoomActor) LastActive() time.Time {
	return time.Unix(0, a.lastActive.Load())
}

// Submit queues a client action. It fails only once the room has shut
// down.
func (a *RoomActor) Submit(sess client, typ protocol.ActionType, action any) error {
	select {
	case a.commands <- command{sess: sess, typ: typ, action: action}:
		return nil
	case <-a.stopCh:
		return ErrRoomClosed
	}
}

// Disconnect notifies the actor that a session's read pump has exited.
func (a *RoomActor) Disconnect(sess client) {
	select {
	case a.commands <- command{sess: sess, typ: disconnect}:
	case <-a.stopCh:
	}
}

// enqueue queues a closure for the actor goroutine.
func (a *RoomActor) enqueue(fn func()) {
	select {
	case a.commands <- command{typ: exec, action: fn}:
	case <-a.stopCh:
	}
}

// Stop shuts the actor down. Idempotent.
func (a *RoomActor) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
	a.wg.Wait()
}

func (a *RoomActor) run() {
	defer a.wg.Done()
	for {
		select {
		case cmd := <-a.commands:
			a.handle(cmd)
		case <-a.stopCh:
			return
		}
	}
}

func (a *RoomActor) handle(cmd command) {
	a.touch()
	if cmd.typ == exec {
		if fn, ok := cmd.action.(func()); ok {
			fn()
		}
		return
	}
	if cmd.typ == disconnect {
		a.handleDisconnect(cmd.sess)
		return
	}

	if err := a.dispatch(cmd); err != nil {
		a.reject(cmd, err)
		return
	}
	_ = cmd.sess.Send(&protocol.Ack{Type: protocol.TypeAck, Action: cmd.typ})
	a.afterCommit()
}

func (a *RoomActor) dispatch(cmd command) error {
	switch act := cmd.action.(type) {
	case *protocol.Join:
		return a.join(cmd.sess, act)
	case *protocol.AddBot:
		return a.addBot(act.Seat)
	case *protocol.Leave:
		return a.vacate(cmd.sess)
	case *protocol.StartMatch:
		return a.startMatch(cmd.sess)
	case *protocol.SetBid:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		return a.room.SetBid(seat, act.Value)
	case *protocol.ConfirmBid:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		return a.room.ConfirmBid(seat)
	case *protocol.ChooseNegotiation:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		choice, err := parseChoice(act.Choice)
		if err != nil {
			return err
		}
		return a.room.ChooseNegotiation(seat, choice)
	case *protocol.RespondNegotiation:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		return a.room.RespondNegotiation(seat, act.Accept)
	case *protocol.PlayCard:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		return a.room.PlayCard(seat, act.Card)
	case *protocol.CallRenege:
		seat, err := a.seatOf(cmd.sess)
		if err != nil {
			return err
		}
		confirmed, err := a.room.CallRenege(seat, act.Accused, act.Hand, act.TrickIndex, act.PlayIndex)
		if err != nil {
			return err
		}
		a.broadcastRenege(confirmed)
		return nil
	default:
		return fmt.Errorf("unhandled action %s", cmd.typ)
	}
}

func parseChoice(s string) (game.NegChoice, error) {
	switch s {
	case "books_made":
		return game.ChoiceBooksMade, nil
	case "increase":
		return game.ChoiceIncrease, nil
	default:
		return game.ChoiceUnset, fmt.Errorf("%w: %q", game.ErrInvalidChoice, s)
	}
}

func (a *RoomActor) reject(cmd command, err error) {
	if game.IsInvariant(err) {
		a.logger.Error().Err(err).Str("action", string(cmd.typ)).Msg("Engine invariant violated")
	} else {
		a.logger.Debug().Err(err).Str("action", string(cmd.typ)).Msg("Action rejected")
	}
	_ = cmd.sess.Send(&protocol.Error{
		Type:    protocol.TypeError,
		Action:  cmd.typ,
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

func (a *RoomActor) seatOf(sess client) (game.Seat, error) {
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if a.seats[seat].session == sess {
			return seat, nil
		}
	}
	return 0, ErrNotSeated
}

func (a *RoomActor) join(sess client, act *protocol.Join) error {
	if _, err := a.seatOf(sess); err == nil {
		return ErrSeatTaken
	}
	seat := act.Seat
	if seat != 0 && !seat.Valid() {
		return game.ErrInvalidSeat
	}
	if seat == 0 {
		seat = a.firstOpenSeat()
		if seat == 0 {
			return ErrTableFull
		}
	} else if a.seats[seat].occupied {
		return ErrSeatTaken
	}

	name := act.Name
	if name == "" {
		name = fmt.Sprintf("player-%d", seat)
	}
	a.seats[seat] = seatState{occupied: true, name: name, session: sess}
	a.logger.Info().Str("name", name).Int("seat", int(seat)).Msg("Player seated")
	return sess.Send(&protocol.Welcome{Type: protocol.TypeWelcome, RoomID: a.ID, Seat: seat})
}

func (a *RoomActor) addBot(seat game.Seat) error {
	if seat != 0 && !seat.Valid() {
		return game.ErrInvalidSeat
	}
	if seat == 0 {
		seat = a.firstOpenSeat()
		if seat == 0 {
			return ErrTableFull
		}
	} else if a.seats[seat].occupied {
		return ErrSeatTaken
	}
	a.fillWithBot(seat)
	return nil
}

func (a *RoomActor) fillWithBot(seat game.Seat) {
	a.botSeq++
	a.seats[seat] = seatState{
		occupied: true,
		name:     fmt.Sprintf("bot-%d", a.botSeq),
		strategy: bot.NewHeuristic(a.botSeq),
	}
	a.logger.Info().Int("seat", int(seat)).Msg("Bot seated")
}

func (a *RoomActor) firstOpenSeat() game.Seat {
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if !a.seats[seat].occupied {
			return seat
		}
	}
	return 0
}

func (a *RoomActor) vacate(sess client) error {
	seat, err := a.seatOf(sess)
	if err != nil {
		return err
	}
	a.dropSeat(seat)
	a.stopIfEmpty()
	return nil
}

func (a *RoomActor) handleDisconnect(sess client) {
	seat, err := a.seatOf(sess)
	if err != nil {
		a.stopIfEmpty()
		return
	}
	a.dropSeat(seat)
	a.stopIfEmpty()
	a.afterCommit()
}

// dropSeat vacates a chair in the lobby, or hands it to a bot mid-match
// so the table keeps playing.
func (a *RoomActor) dropSeat(seat game.Seat) {
	name := a.seats[seat].name
	if a.room.Phase == game.PhaseLobby || a.room.Phase == game.PhaseComplete {
		a.seats[seat] = seatState{}
		a.logger.Info().Str("name", name).Int("seat", int(seat)).Msg("Seat vacated")
		return
	}
	a.fillWithBot(seat)
	a.logger.Info().Str("name", name).Int("seat", int(seat)).Msg("Seat handed to bot")
}

// stopIfEmpty destroys the room once no human session remains.
func (a *RoomActor) stopIfEmpty() {
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if a.seats[seat].session != nil {
			return
		}
	}
	a.logger.Info().Msg("Room empty, shutting down")
	if a.onEmpty != nil {
		a.onEmpty(a.ID)
	}
	a.stopOnce.Do(func() { close(a.stopCh) })
}

func (a *RoomActor) startMatch(sess client) error {
	if _, err := a.seatOf(sess); err != nil {
		return err
	}
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if !a.seats[seat].occupied {
			return ErrNeedFullTable
		}
	}
	if a.room.Phase == game.PhaseComplete {
		a.room.Reset()
	}
	if a.room.Phase != game.PhaseLobby {
		return ErrMatchRunning
	}
	return a.room.Start()
}

// afterCommit runs once per committed mutation: refresh every client's
// view, then schedule a bot follow-up if the game now waits on one.
func (a *RoomActor) afterCommit() {
	a.broadcastState()
	a.sendHands()
	if a.botActionPending() {
		a.clock.AfterFunc(a.botDelay, func() {
			a.enqueue(func() {
				if a.botStep() {
					a.afterCommit()
				}
			})
		})
	}
}

func (a *RoomActor) broadcastState() {
	msg := &protocol.RoomState{Type: protocol.TypeRoomState, Game: a.room.Snapshot()}
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		st := a.seats[seat]
		msg.Seats[seat-1] = protocol.SeatInfo{
			Seat:     seat,
			Name:     st.name,
			Occupied: st.occupied,
			Bot:      st.isBot(),
		}
	}
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if sess := a.seats[seat].session; sess != nil {
			if err := sess.Send(msg); err != nil {
				a.logger.Debug().Err(err).Int("seat", int(seat)).Msg("State send failed")
			}
		}
	}
}

// sendHands delivers each seat's private cards to its own session only.
func (a *RoomActor) sendHands() {
	switch a.room.Phase {
	case game.PhaseBidding, game.PhaseNegotiating, game.PhasePlaying:
	default:
		return
	}
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		sess := a.seats[seat].session
		if sess == nil {
			continue
		}
		_ = sess.Send(&protocol.Hand{
			Type:  protocol.TypeHand,
			Seat:  seat,
			Cards: a.room.Hand(seat),
		})
	}
}

func (a *RoomActor) broadcastRenege(confirmed bool) {
	calls, adjust := a.room.RenegeLog()
	if len(calls) == 0 {
		return
	}
	msg := &protocol.RenegeResult{
		Type:      protocol.TypeRenege,
		Call:      calls[len(calls)-1],
		Adjust:    adjust,
		Confirmed: confirmed,
	}
	for seat := game.Seat(1); seat <= game.NumSeats; seat++ {
		if sess := a.seats[seat].session; sess != nil {
			_ = sess.Send(msg)
		}
	}
}
