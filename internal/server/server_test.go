package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spades/internal/game"
	"github.com/lox/spades/internal/protocol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := newTestStore(t)
	srv := NewServer("", store, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func readMessage[T any](t *testing.T, conn *websocket.Conn) *T {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg T
		if err := json.Unmarshal(data, &msg); err == nil {
			// The envelope decodes into any struct; check it's the
			// wanted type via its own round trip of the type tag.
			var probe struct {
				Type string `json:"type"`
			}
			require.NoError(t, json.Unmarshal(data, &probe))
			if matchesType[T](probe.Type) {
				return &msg
			}
		}
	}
	t.Fatal("message not received")
	return nil
}

func matchesType[T any](typ string) bool {
	var zero T
	switch any(zero).(type) {
	case protocol.Welcome:
		return typ == string(protocol.TypeWelcome)
	case protocol.RoomState:
		return typ == string(protocol.TypeRoomState)
	case protocol.Hand:
		return typ == string(protocol.TypeHand)
	case protocol.Error:
		return typ == string(protocol.TypeError)
	default:
		return false
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "OK")
}

func TestWebSocketJoinFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws?room=table1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	frame, err := protocol.EncodeAction(protocol.TypeJoin, &protocol.Join{Name: "ada"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	welcome := readMessage[protocol.Welcome](t, conn)
	assert.Equal(t, "table1", welcome.RoomID)
	assert.Equal(t, game.Seat(1), welcome.Seat)

	// A bad action gets a typed error back, not a dropped connection.
	frame, err = protocol.EncodeAction(protocol.TypeSetBid, &protocol.SetBid{Value: 4})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
	errMsg := readMessage[protocol.Error](t, conn)
	assert.Equal(t, "wrong_phase", errMsg.Code)
}

func TestWebSocketStartBroadcastsState(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws?room=table2"), nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(typ protocol.ActionType, action any) {
		frame, err := protocol.EncodeAction(typ, action)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
	}

	send(protocol.TypeJoin, &protocol.Join{Name: "ada"})
	for i := 0; i < 3; i++ {
		send(protocol.TypeAddBot, &protocol.AddBot{})
	}
	send(protocol.TypeStartMatch, &protocol.StartMatch{})

	state := readMessage[protocol.RoomState](t, conn)
	for state.Game.Phase == "lobby" {
		state = readMessage[protocol.RoomState](t, conn)
	}
	assert.Equal(t, "bidding", state.Game.Phase)

	hand := readMessage[protocol.Hand](t, conn)
	assert.Equal(t, game.Seat(1), hand.Seat)
	assert.Len(t, hand.Cards, 13)
}
