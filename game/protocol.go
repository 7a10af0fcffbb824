package game

import "encoding/json"

// Client-to-server events.
const (
	EventCreateGame    = "create-game"
	EventJoinGame      = "join-game"
	EventSelectWord    = "select-word"
	EventWordProgress  = "word-progress"
	EventWordCompleted = "word-completed"
	EventUpdateTime    = "update-time"
)

// Server-to-client events.
const (
	EventGameCreated     = "game-created"
	EventGameJoined      = "game-joined"
	EventGameUpdated     = "game-updated"
	EventWordSelected    = "word-selected"
	EventProgressUpdated = "progress-updated"
	EventError           = "error"
)

// Envelope is the wire frame for both directions: an event name plus its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type createGamePayload struct {
	GameName string `json:"gameName"`
	Player   Player `json:"player"`
}

type joinGamePayload struct {
	GameID string `json:"gameId"`
	Player Player `json:"player"`
}

type selectWordPayload struct {
	GameID      string   `json:"gameId"`
	WordID      string   `json:"wordId"`
	Category    Category `json:"category"`
	ColumnIndex int      `json:"columnIndex"`
	RowIndex    int      `json:"rowIndex"`
	PlayerID    string   `json:"playerId"`
}

type wordProgressPayload struct {
	GameID   string `json:"gameId"`
	Progress int    `json:"progress"`
}

type updateTimePayload struct {
	GameID      string `json:"gameId"`
	ElapsedTime int64  `json:"elapsedTime"`
}

type gameCreatedPayload struct {
	GameID    string   `json:"gameId"`
	GameState Snapshot `json:"gameState"`
}

type gameJoinedPayload struct {
	GameState Snapshot `json:"gameState"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func marshalEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// validCoordinate reports whether a claimed grid coordinate is inside the
// fixed 3x5 grid.
func validCoordinate(col, row int) bool {
	return col >= 0 && col < GridColumns && row >= 0 && row < GridRows
}
