package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/spades/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Session is one websocket client attached to a room. All game state
// access goes through the room actor; the session only pumps frames.
type Session struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	actor  *RoomActor
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewSession wraps an upgraded connection.
func NewSession(id string, conn *websocket.Conn, actor *RoomActor, logger zerolog.Logger) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, 256),
		actor:  actor,
		logger: logger.With().Str("component", "session").Str("session_id", id).Logger(),
		done:   make(chan struct{}),
	}
}

// Send queues a marshalled message for the write pump.
func (s *Session) Send(msg any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	data, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-time.After(time.Second):
		return ErrSendTimeout
	}
}

// Done is closed when either pump exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) markClosed() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
}

// ReadPump reads frames until the peer goes away, forwarding decoded
// actions into the room actor's queue.
func (s *Session) ReadPump() {
	defer func() {
		s.actor.Disconnect(s)
		_ = s.conn.Close()
		s.markClosed()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error().Err(err).Msg("Unexpected WebSocket close")
			}
			return
		}

		typ, action, err := protocol.DecodeAction(message)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Rejected malformed frame")
			_ = s.Send(&protocol.Error{
				Type:    protocol.TypeError,
				Action:  typ,
				Code:    "bad_frame",
				Message: err.Error(),
			})
			continue
		}

		if err := s.actor.Submit(s, typ, action); err != nil {
			_ = s.Send(&protocol.Error{
				Type:    protocol.TypeError,
				Action:  typ,
				Code:    "room_closed",
				Message: err.Error(),
			})
			return
		}
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		s.markClosed()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}
