package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for action types outside the closed set.
var ErrUnknownAction = errors.New("unknown action type")

// envelope is the wire shape of every client action: a type tag plus the
// action's own fields at the top level.
type envelope struct {
	Type ActionType `json:"type"`
}

// DecodeAction parses one client frame into its typed action. The return
// is always one of the pointer types declared in messages.go.
func DecodeAction(data []byte) (ActionType, any, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("malformed action frame: %w", err)
	}

	var action any
	switch env.Type {
	case TypeJoin:
		action = &Join{}
	case TypeAddBot:
		action = &AddBot{}
	case TypeLeave:
		action = &Leave{}
	case TypeStartMatch:
		action = &StartMatch{}
	case TypeSetBid:
		action = &SetBid{}
	case TypeConfirmBid:
		action = &ConfirmBid{}
	case TypeChooseNegotiation:
		action = &ChooseNegotiation{}
	case TypeRespond:
		action = &RespondNegotiation{}
	case TypePlayCard:
		action = &PlayCard{}
	case TypeCallRenege:
		action = &CallRenege{}
	default:
		return env.Type, nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}

	if err := json.Unmarshal(data, action); err != nil {
		return env.Type, nil, fmt.Errorf("malformed %s action: %w", env.Type, err)
	}
	return env.Type, action, nil
}

// EncodeAction wraps a typed action in its envelope for the wire.
func EncodeAction(typ ActionType, action any) ([]byte, error) {
	fields, err := json.Marshal(action)
	if err != nil {
		return nil, err
	}
	// Splice the type tag into the action's own object.
	var m map[string]json.RawMessage
	if err := json.Unmarshal(fields, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	m["type"] = json.RawMessage(fmt.Sprintf("%q", typ))
	return json.Marshal(m)
}

// Marshal serializes a server -> client message.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
