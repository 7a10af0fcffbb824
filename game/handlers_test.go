package game

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSTestServer(t *testing.T) (*httptest.Server, *Gateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g := NewGateway(NewRegistry(), nil, nil, time.Second*30, time.Minute)
	r := gin.New()
	r.GET("/ws", NewHandler(g, nil).ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, g
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame(t, event, payload)))
}

func readEvent(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second*2)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope
}

// Runs the whole game flow over real websockets: create, join, contested
// claim, progress, completion, and the next claim after the grid frees up.
func TestGameFlowOverWebsocket(t *testing.T) {
	t.Parallel()
	srv, _ := newWSTestServer(t)

	connA := dialWS(t, srv)
	writeEvent(t, connA, EventCreateGame, createGamePayload{
		GameName: "Quiz",
		Player:   Player{ID: "alice", Name: "Alice"},
	})
	created := readEvent(t, connA)
	require.Equal(t, EventGameCreated, created.Event)
	var createdPayload gameCreatedPayload
	require.NoError(t, json.Unmarshal(created.Data, &createdPayload))
	gameID := createdPayload.GameID
	require.Len(t, createdPayload.GameState.Players, 1)
	for col := range GridColumns {
		for row := range GridRows {
			assert.NotEmpty(t, createdPayload.GameState.Words[col][row].ID)
		}
	}

	connB := dialWS(t, srv)
	writeEvent(t, connB, EventJoinGame, joinGamePayload{
		GameID: gameID,
		Player: Player{ID: "bob", Name: "Bob"},
	})

	update := readEvent(t, connA)
	require.Equal(t, EventGameUpdated, update.Event)
	snap := decodeSnapshot(t, update.Data)
	require.Len(t, snap.Players, 2)

	bobUpdate := readEvent(t, connB)
	require.Equal(t, EventGameUpdated, bobUpdate.Event)
	joined := readEvent(t, connB)
	require.Equal(t, EventGameJoined, joined.Event)

	// Alice claims (0,2); Bob's competing claim is rejected.
	target := snap.Words[0][2]
	writeEvent(t, connA, EventSelectWord, selectWordPayload{
		GameID: gameID, WordID: target.ID, Category: target.Category,
		ColumnIndex: 0, RowIndex: 2, PlayerID: "alice",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		selected := readEvent(t, conn)
		require.Equal(t, EventWordSelected, selected.Event)
		claimSnap := decodeSnapshot(t, selected.Data)
		require.NotNil(t, claimSnap.SelectedWord)
		assert.Equal(t, 0, claimSnap.SelectedWord.Progress)
	}

	other := snap.Words[1][0]
	writeEvent(t, connB, EventSelectWord, selectWordPayload{
		GameID: gameID, WordID: other.ID, Category: other.Category,
		ColumnIndex: 1, RowIndex: 0, PlayerID: "bob",
	})
	rejection := readEvent(t, connB)
	assert.Equal(t, EventError, rejection.Event)

	writeEvent(t, connA, EventWordProgress, wordProgressPayload{GameID: gameID, Progress: 70})
	for _, conn := range []*websocket.Conn{connA, connB} {
		progress := readEvent(t, conn)
		require.Equal(t, EventProgressUpdated, progress.Event)
		assert.Equal(t, 70, decodeSnapshot(t, progress.Data).SelectedWord.Progress)
	}

	writeEvent(t, connA, EventWordCompleted, selectWordPayload{
		GameID: gameID, WordID: target.ID, Category: target.Category,
		ColumnIndex: 0, RowIndex: 2, PlayerID: "alice",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		completed := readEvent(t, conn)
		require.Equal(t, EventGameUpdated, completed.Event)
		doneSnap := decodeSnapshot(t, completed.Data)
		assert.Nil(t, doneSnap.SelectedWord)
		assert.Equal(t, 1, doneSnap.Players[0].Score)
		assert.NotEqual(t, target.ID, doneSnap.Words[0][2].ID)
		assert.Equal(t, CategoryEasy, doneSnap.Words[0][2].Category)
	}

	// The grid is free again, so Bob's claim now goes through.
	writeEvent(t, connB, EventSelectWord, selectWordPayload{
		GameID: gameID, WordID: other.ID, Category: other.Category,
		ColumnIndex: 1, RowIndex: 0, PlayerID: "bob",
	})
	for _, conn := range []*websocket.Conn{connA, connB} {
		selected := readEvent(t, conn)
		require.Equal(t, EventWordSelected, selected.Event)
		assert.Equal(t, "bob", decodeSnapshot(t, selected.Data).SelectedWord.PlayerID)
	}
}

func TestUnknownRoomOverWebsocket(t *testing.T) {
	t.Parallel()
	srv, g := newWSTestServer(t)

	conn := dialWS(t, srv)
	writeEvent(t, conn, EventJoinGame, joinGamePayload{GameID: "ZZZZZ9", Player: Player{Name: "Bob"}})

	reply := readEvent(t, conn)
	require.Equal(t, EventError, reply.Event)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(reply.Data, &payload))
	assert.Equal(t, "Game not found", payload.Message)
	assert.Empty(t, g.registry.Rooms())
}

func TestMalformedFrameKeepsConnectionAlive(t *testing.T) {
	t.Parallel()
	srv, _ := newWSTestServer(t)

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	reply := readEvent(t, conn)
	assert.Equal(t, EventError, reply.Event)

	writeEvent(t, conn, EventCreateGame, createGamePayload{
		GameName: "Still here",
		Player:   Player{Name: "Alice"},
	})
	created := readEvent(t, conn)
	assert.Equal(t, EventGameCreated, created.Event, "the connection survives bad input")
}

func TestDisconnectOverWebsocket(t *testing.T) {
	t.Parallel()
	srv, g := newWSTestServer(t)

	connA := dialWS(t, srv)
	writeEvent(t, connA, EventCreateGame, createGamePayload{
		GameName: "Quiz", Player: Player{ID: "alice", Name: "Alice"},
	})
	created := readEvent(t, connA)
	var createdPayload gameCreatedPayload
	require.NoError(t, json.Unmarshal(created.Data, &createdPayload))
	gameID := createdPayload.GameID

	connB := dialWS(t, srv)
	writeEvent(t, connB, EventJoinGame, joinGamePayload{GameID: gameID, Player: Player{ID: "bob", Name: "Bob"}})
	readEvent(t, connA) // join broadcast

	connB.Close()

	update := readEvent(t, connA)
	require.Equal(t, EventGameUpdated, update.Event)
	snap := decodeSnapshot(t, update.Data)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice", snap.Players[0].ID)

	connA.Close()
	require.Eventually(t, func() bool {
		g.sweepRooms(time.Now().Add(time.Hour))
		_, err := g.registry.Get(gameID)
		return err != nil
	}, time.Second*2, time.Millisecond*20, "the empty room is eventually collected")
}
