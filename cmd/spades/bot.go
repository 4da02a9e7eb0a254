package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/spades/cmd/spades/shared"
	"github.com/lox/spades/internal/bot"
	"github.com/lox/spades/internal/game"
	"github.com/lox/spades/internal/protocol"
)

// BotCmd connects one or more heuristic bots to a room over websocket.
// With --count below four the first bot asks the server to fill the
// remaining seats, so `spades bot` alone produces a full self-playing
// table.
type BotCmd struct {
	Server string `kong:"default='ws://localhost:8080/ws',help='WebSocket server URL'"`
	Room   string `kong:"default='default',help='Room to join'"`
	Name   string `kong:"default='heuristic',help='Name prefix for the bots'"`
	Count  int    `kong:"default='1',help='Number of client bots to connect (1-4)'"`
	Seed   int64  `kong:"default='1',help='Base RNG seed for the bot strategies'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *BotCmd) Run() error {
	if c.Count < 1 || c.Count > 4 {
		return fmt.Errorf("count must be 1-4, got %d", c.Count)
	}

	logger := shared.Logger(c.Debug, false)

	u, err := url.Parse(c.Server)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	q := u.Query()
	q.Set("room", c.Room)
	u.RawQuery = q.Encode()

	ctx := shared.SignalContext(logger)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.Count; i++ {
		bc := &botClient{
			name:     fmt.Sprintf("%s-%d", c.Name, i+1),
			url:      u.String(),
			strategy: bot.NewHeuristic(c.Seed + int64(i)),
			starter:  i == 0,
			logger:   logger.With().Str("bot", fmt.Sprintf("%s-%d", c.Name, i+1)).Logger(),
		}
		g.Go(func() error { return bc.run(ctx) })
	}
	return g.Wait()
}

// botClient drives one seat from the public room state. It acts only in
// reaction to a room_state broadcast, so every commit prompts at most one
// action and rejected actions simply wait for the next broadcast.
type botClient struct {
	name     string
	url      string
	strategy bot.Strategy
	starter  bool
	logger   zerolog.Logger

	seat  game.Seat
	cards []game.Card
}

func (b *botClient) run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", b.url, err)
	}
	defer conn.Close()

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := b.send(conn, protocol.TypeJoin, protocol.Join{Name: b.name}); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}
		stop, err := b.handle(conn, data)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

func (b *botClient) handle(conn *websocket.Conn, data []byte) (bool, error) {
	var env struct {
		Type protocol.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("decoding message: %w", err)
	}

	switch env.Type {
	case protocol.TypeWelcome:
		var msg protocol.Welcome
		if err := json.Unmarshal(data, &msg); err != nil {
			return false, err
		}
		b.seat = msg.Seat
		b.logger.Info().Str("room", msg.RoomID).Int("seat", int(msg.Seat)).Msg("Seated")

	case protocol.TypeHand:
		var msg protocol.Hand
		if err := json.Unmarshal(data, &msg); err != nil {
			return false, err
		}
		if msg.Seat == b.seat {
			b.cards = msg.Cards
		}

	case protocol.TypeRoomState:
		var msg protocol.RoomState
		if err := json.Unmarshal(data, &msg); err != nil {
			return false, err
		}
		return b.act(conn, &msg)

	case protocol.TypeError:
		var msg protocol.Error
		if err := json.Unmarshal(data, &msg); err != nil {
			return false, err
		}
		b.logger.Debug().Str("action", string(msg.Action)).Str("code", msg.Code).Msg("Action rejected")
	}
	return false, nil
}

func (b *botClient) act(conn *websocket.Conn, state *protocol.RoomState) (bool, error) {
	switch state.Game.Phase {
	case "lobby":
		if !b.starter {
			return false, nil
		}
		for _, si := range state.Seats {
			if !si.Occupied {
				return false, b.send(conn, protocol.TypeAddBot, protocol.AddBot{})
			}
		}
		b.logger.Info().Msg("Table full, starting match")
		return false, b.send(conn, protocol.TypeStartMatch, protocol.StartMatch{})

	case "bidding", "negotiating":
		return false, b.bid(conn, state.Game.Bidding)

	case "playing":
		if state.Game.Turn != b.seat || len(b.cards) == 0 {
			return false, nil
		}
		card := b.strategy.PlayCard(b.cards, trickFromView(state.Game.CurrentTrick), state.Game.SpadesBroken)
		return false, b.send(conn, protocol.TypePlayCard, protocol.PlayCard{Card: card.ID})

	case "complete":
		if state.Game.Winner != nil {
			b.logger.Info().
				Int("winner", int(*state.Game.Winner)).
				Ints("scores", state.Game.Scores[:]).
				Msg("Match complete")
		}
		return true, nil
	}
	return false, nil
}

// bid walks the negotiation protocol from the public view. Team-level
// moves (confirm, choose, respond) are made by the lower seat of each
// partnership so two client bots on one team never race each other.
func (b *botClient) bid(conn *websocket.Conn, bv *game.BiddingView) error {
	if bv == nil {
		return nil
	}
	team := game.TeamOf(b.seat)
	anchor := b.seat <= 2

	if _, picked := bv.Picks[b.seat]; !picked {
		if len(b.cards) == 0 {
			return nil
		}
		value := b.strategy.Bid(b.cards, game.DefaultRules())
		return b.send(conn, protocol.TypeSetBid, protocol.SetBid{Value: value})
	}

	if nv := bv.Negotiation; nv != nil {
		switch nv.Stage {
		case "choose":
			if anchor && !nv.Chosen[team] {
				choice := b.strategy.ChooseNegotiation(teamTotal(bv, team), bv.MinTotal)
				return b.send(conn, protocol.TypeChooseNegotiation, protocol.ChooseNegotiation{Choice: choice.String()})
			}
			return nil
		case "waiting_accept":
			if !anchor || team != nv.IncreasingTeam {
				return nil
			}
			total := teamTotal(bv, team)
			if total >= nv.RequiredTotal {
				return b.send(conn, protocol.TypeRespond, protocol.RespondNegotiation{Accept: true})
			}
			raised := bv.Picks[b.seat] + nv.RequiredTotal - total
			if raised <= 13 {
				return b.send(conn, protocol.TypeSetBid, protocol.SetBid{Value: raised})
			}
			return b.send(conn, protocol.TypeRespond, protocol.RespondNegotiation{Accept: false})
		case "both_increase_relock":
			// Falls through to the collecting logic below: raise until
			// the table clears the minimum, then confirm in lock order.
		default:
			return nil
		}
	}

	combined := teamTotal(bv, game.TeamOddSeats) + teamTotal(bv, game.TeamEvenSeats)
	if anchor && combined < bv.MinTotal && bv.Negotiation != nil {
		raised := bv.Picks[b.seat] + bv.MinTotal - combined
		if raised > 13 {
			raised = 13
		}
		if raised > bv.Picks[b.seat] {
			return b.send(conn, protocol.TypeSetBid, protocol.SetBid{Value: raised})
		}
	}

	// A confirmed team bid may still sit under the board; top up our own
	// pick before locking. The board floor is recovered from the table
	// minimum, which is 2*board+3 under the standard derivation.
	board := (bv.MinTotal - 3) / 2
	if anchor && !bv.Confirmed[team] && teamHasPicks(bv, team) {
		if short := board - teamTotal(bv, team); short > 0 {
			raised := bv.Picks[b.seat] + short
			if raised <= 13 {
				return b.send(conn, protocol.TypeSetBid, protocol.SetBid{Value: raised})
			}
		}
		if bv.TurnTeam != nil && *bv.TurnTeam == team {
			return b.send(conn, protocol.TypeConfirmBid, protocol.ConfirmBid{})
		}
	}
	return nil
}

func (b *botClient) send(conn *websocket.Conn, typ protocol.ActionType, action any) error {
	data, err := protocol.EncodeAction(typ, action)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func teamTotal(bv *game.BiddingView, t game.Team) int {
	total := 0
	for _, s := range t.Seats() {
		total += bv.Picks[s]
	}
	return total
}

func teamHasPicks(bv *game.BiddingView, t game.Team) bool {
	seats := t.Seats()
	_, ok0 := bv.Picks[seats[0]]
	_, ok1 := bv.Picks[seats[1]]
	return ok0 && ok1
}

func trickFromView(tv *game.TrickView) *game.Trick {
	if tv == nil {
		return nil
	}
	t := &game.Trick{
		Leader:   tv.Leader,
		LeadSuit: tv.LeadSuit,
		Plays:    make([]game.Play, len(tv.Plays)),
	}
	for i, p := range tv.Plays {
		t.Plays[i] = game.Play{Seat: p.Seat, Card: p.Card}
	}
	return t
}
