package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server exposes the game over websockets: clients attach to a room at
// /ws and speak the action protocol from there on.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	store    RoomStore
	logger   zerolog.Logger
	httpSrv  *http.Server
}

// NewServer wires a server around a room store.
func NewServer(addr string, store RoomStore, logger zerolog.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients connect from anywhere.
				return true
			},
		},
		store:  store,
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until the context is cancelled, then drains rooms.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting connections and tears down every room.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("Shutting down")
	s.store.StopAll()
	if s.httpSrv != nil {
		return s.httpSrv.Close()
	}
	return nil
}

// handleWebSocket upgrades the connection and binds it to the requested
// room (?room=<id>, omitted for a fresh one).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Upgrade failed")
		return
	}

	actor := s.store.GetOrCreate(r.URL.Query().Get("room"))
	sess := NewSession(uuid.NewString(), conn, actor, s.logger)
	s.logger.Info().Str("session_id", sess.ID).Str("room_id", actor.ID).Msg("Client connected")

	go sess.WritePump()
	go sess.ReadPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK rooms=%d", s.store.Len())
}
