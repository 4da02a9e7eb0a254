package server

import (
	"errors"

	"github.com/lox/spades/internal/game"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSendTimeout   = errors.New("send timeout")
	ErrRoomClosed    = errors.New("room closed")
	ErrSeatTaken     = errors.New("seat already taken")
	ErrTableFull     = errors.New("table full")
	ErrNotSeated     = errors.New("not seated in this room")
	ErrNeedFullTable = errors.New("all four seats must be filled to start")
	ErrMatchRunning  = errors.New("match already running")
)

var errorCodes = map[error]string{
	ErrRoomClosed:    "room_closed",
	ErrSeatTaken:     "seat_taken",
	ErrTableFull:     "table_full",
	ErrNotSeated:     "not_seated",
	ErrNeedFullTable: "need_full_table",
	ErrMatchRunning:  "match_running",
}

// errorCode maps an error to its stable wire code: server-level rules
// first, then the engine's own taxonomy.
func errorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return game.ErrorCode(err)
}
