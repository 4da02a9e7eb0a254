package server

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/spades/internal/game"
	"github.com/lox/spades/internal/roomid"
)

// RoomStore tracks live room actors. Injected into the server so tests
// can substitute their own.
type RoomStore interface {
	// GetOrCreate returns the named room, creating it on first use. An
	// empty id allocates a fresh room with a generated id.
	GetOrCreate(id string) *RoomActor
	Get(id string) (*RoomActor, bool)
	Remove(id string)
	Len() int
	// StopAll shuts down every live room, for server shutdown.
	StopAll()
}

// MemoryRoomStore is the in-process implementation: one actor per room,
// created on demand, removed when the room empties.
type MemoryRoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*RoomActor

	rules    game.RuleConfig
	clock    quartz.Clock
	botDelay time.Duration
	idleTTL  time.Duration
	logger   zerolog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryRoomStore creates an empty store. Rooms it creates inherit
// the given rule config and clock. A non-zero idleTTL starts a reaper
// that destroys rooms whose actors have handled no command for that
// long.
func NewMemoryRoomStore(rules game.RuleConfig, clock quartz.Clock, botDelay, idleTTL time.Duration, logger zerolog.Logger) *MemoryRoomStore {
	s := &MemoryRoomStore{
		rooms:    make(map[string]*RoomActor),
		rules:    rules,
		clock:    clock,
		botDelay: botDelay,
		idleTTL:  idleTTL,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	if idleTTL > 0 {
		s.scheduleReap()
	}
	return s
}

func (s *MemoryRoomStore) scheduleReap() {
	s.clock.AfterFunc(s.idleTTL, func() {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.reapIdle()
		s.scheduleReap()
	})
}

// reapIdle destroys rooms whose actors have been idle past the TTL,
// connected sessions included. Any command traffic resets the clock.
func (s *MemoryRoomStore) reapIdle() {
	cutoff := s.clock.Now().Add(-s.idleTTL)
	var stale []string
	s.mu.RLock()
	for id, actor := range s.rooms {
		if !actor.LastActive().After(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range stale {
		s.logger.Info().Str("room_id", id).Msg("Reaping idle room")
		s.Remove(id)
	}
}

func (s *MemoryRoomStore) GetOrCreate(id string) *RoomActor {
	if id == "" {
		id = roomid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if actor, ok := s.rooms[id]; ok {
		return actor
	}
	actor := NewRoomActor(id, s.rules, s.clock, s.botDelay, s.logger, s.remove)
	s.rooms[id] = actor
	s.logger.Info().Str("room_id", id).Int("rooms", len(s.rooms)).Msg("Room created")
	return actor
}

func (s *MemoryRoomStore) Get(id string) (*RoomActor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actor, ok := s.rooms[id]
	return actor, ok
}

func (s *MemoryRoomStore) Remove(id string) {
	s.mu.Lock()
	actor, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()
	if ok {
		actor.Stop()
	}
}

// remove is the actor's onEmpty callback; the actor stops itself, so only
// the map entry needs dropping.
func (s *MemoryRoomStore) remove(id string) {
	s.mu.Lock()
	delete(s.rooms, id)
	n := len(s.rooms)
	s.mu.Unlock()
	s.logger.Info().Str("room_id", id).Int("rooms", n).Msg("Room destroyed")
}

func (s *MemoryRoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *MemoryRoomStore) StopAll() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.mu.Lock()
	actors := make([]*RoomActor, 0, len(s.rooms))
	for id, actor := range s.rooms {
		actors = append(actors, actor)
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	for _, actor := range actors {
		actor.Stop()
	}
}
