package protocol

import "github.com/lox/spades/internal/game"

// ActionType identifies a client -> server action. The set is closed:
// the decoder rejects anything outside it.
type ActionType string

const (
	TypeJoin              ActionType = "join"
	TypeAddBot            ActionType = "add_bot"
	TypeLeave             ActionType = "leave"
	TypeStartMatch        ActionType = "start_match"
	TypeSetBid            ActionType = "set_bid"
	TypeConfirmBid        ActionType = "confirm_bid"
	TypeChooseNegotiation ActionType = "choose_negotiation"
	TypeRespond           ActionType = "respond_negotiation"
	TypePlayCard          ActionType = "play_card"
	TypeCallRenege        ActionType = "call_renege"
)

// MessageType identifies a server -> client message.
type MessageType string

const (
	TypeWelcome   MessageType = "welcome"
	TypeRoomState MessageType = "room_state"
	TypeHand      MessageType = "hand"
	TypeRenege    MessageType = "renege_result"
	TypeAck       MessageType = "ack"
	TypeError     MessageType = "error"
)

// Client -> Server actions. Every action names its seat; the server
// verifies it against the session before dispatch.

type Join struct {
	Name string    `json:"name"`
	Seat game.Seat `json:"seat"` // 0 lets the server pick
}

type AddBot struct {
	Seat game.Seat `json:"seat"` // 0 fills the first open seat
}

type Leave struct{}

type StartMatch struct{}

type SetBid struct {
	Value int `json:"value"`
}

type ConfirmBid struct{}

type ChooseNegotiation struct {
	Choice string `json:"choice"` // books_made or increase
}

type RespondNegotiation struct {
	Accept bool `json:"accept"`
}

type PlayCard struct {
	Card string `json:"card"`
}

type CallRenege struct {
	Accused    game.Seat `json:"accused"`
	Hand       int       `json:"hand"`
	TrickIndex int       `json:"trick_index"`
	PlayIndex  int       `json:"play_index"`
}

// Server -> Client messages.

// Welcome confirms a join: the seat assigned and the room joined.
type Welcome struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"room_id"`
	Seat   game.Seat   `json:"seat"`
}

// RoomState carries the public snapshot, broadcast after every committed
// action.
type RoomState struct {
	Type  MessageType   `json:"type"`
	Seats [4]SeatInfo   `json:"seats"`
	Game  game.Snapshot `json:"game"`
}

// SeatInfo is the lobby-level view of one chair.
type SeatInfo struct {
	Seat     game.Seat `json:"seat"`
	Name     string    `json:"name,omitempty"`
	Occupied bool      `json:"occupied"`
	Bot      bool      `json:"bot,omitempty"`
}

// Hand is the private per-seat deal, sent only to its owner.
type Hand struct {
	Type  MessageType `json:"type"`
	Seat  game.Seat   `json:"seat"`
	Cards []game.Card `json:"cards"`
}

// RenegeResult reports an adjudicated accusation to the whole table.
type RenegeResult struct {
	Type      MessageType     `json:"type"`
	Call      game.RenegeCall `json:"call"`
	Adjust    [2]int          `json:"adjust"`
	Confirmed bool            `json:"confirmed"`
}

// Ack confirms a committed action back to its sender.
type Ack struct {
	Type   MessageType `json:"type"`
	Action ActionType  `json:"action"`
}

// Error reports a rejected action. Code is the stable machine-readable
// rule identifier; Message is human-oriented.
type Error struct {
	Type    MessageType `json:"type"`
	Action  ActionType  `json:"action,omitempty"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}
