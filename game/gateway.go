package game

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Recorder mirrors room lifecycle events into an external store. Writes are
// fire-and-forget; a failing recorder never affects room state.
type Recorder interface {
	GameCreated(ctx context.Context, code, name string) error
	PlayerJoined(ctx context.Context, code, playerID, name, color string) error
	WordClaimed(ctx context.Context, code, wordID string, category string, points int, playerID string) error
}

type nopRecorder struct{}

func (nopRecorder) GameCreated(context.Context, string, string) error { return nil }
func (nopRecorder) PlayerJoined(context.Context, string, string, string, string) error {
	return nil
}
func (nopRecorder) WordClaimed(context.Context, string, string, string, int, string) error {
	return nil
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

// Gateway dispatches inbound events to room operations and fans the
// resulting snapshots out to every session subscribed to the room. All
// broadcast decisions live here; rooms never call back in.
type Gateway struct {
	registry      *Registry
	recorder      Recorder
	tickerCreator PeriodicTickerChannelCreator

	claimMaxIdle   time.Duration
	emptyRoomGrace time.Duration

	locker      sync.Mutex
	sessions    map[*session]struct{}
	subscribers map[string]map[*session]struct{}
}

func NewGateway(registry *Registry, recorder Recorder, tickerCreator PeriodicTickerChannelCreator, claimMaxIdle, emptyRoomGrace time.Duration) *Gateway {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Gateway{
		registry:       registry,
		recorder:       recorder,
		tickerCreator:  tickerCreator,
		claimMaxIdle:   claimMaxIdle,
		emptyRoomGrace: emptyRoomGrace,
		sessions:       make(map[*session]struct{}),
		subscribers:    make(map[string]map[*session]struct{}),
	}
}

// NewSession registers a fresh connection. The caller owns the pumps.
func (g *Gateway) NewSession(socket NetworkSession) *session {
	s := newSession(socket, g)
	g.locker.Lock()
	g.sessions[s] = struct{}{}
	g.locker.Unlock()
	return s
}

// Run drives the periodic sweeps: claim expiry, empty-room teardown and
// connection pings. It returns when ctx is done.
func (g *Gateway) Run(ctx context.Context) {
	sweepTicker := g.tickerCreator.Create(time.Second)
	pingTicker := g.tickerCreator.Create(time.Second * 30)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-sweepTicker:
			g.sweepClaims(now)
			g.sweepRooms(now)
		case <-pingTicker:
			g.pingSessions()
		}
	}
}

func (g *Gateway) sweepClaims(now time.Time) {
	for _, room := range g.registry.Rooms() {
		if snap, expired := room.ExpireClaim(now, g.claimMaxIdle); expired {
			slog.Debug("claim expired", "room", room.Code())
			g.broadcast(room.Code(), EventGameUpdated, snap)
		}
	}
}

func (g *Gateway) sweepRooms(now time.Time) {
	for _, room := range g.registry.Rooms() {
		if room.CloseIfEmpty(now, g.emptyRoomGrace) {
			code := room.Code()
			g.registry.Remove(code)
			g.locker.Lock()
			delete(g.subscribers, code)
			g.locker.Unlock()
			slog.Info("empty room removed", "room", code)
		}
	}
}

func (g *Gateway) pingSessions() {
	g.locker.Lock()
	defer g.locker.Unlock()
	for s := range g.sessions {
		s.ping()
	}
}

// dispatch decodes one inbound frame and routes it. A malformed frame gets
// an error reply; the connection itself survives.
func (g *Gateway) dispatch(s *session, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.sendError("malformed request")
		return
	}

	switch envelope.Event {
	case EventCreateGame:
		g.handleCreateGame(s, envelope.Data)
	case EventJoinGame:
		g.handleJoinGame(s, envelope.Data)
	case EventSelectWord:
		g.handleSelectWord(s, envelope.Data)
	case EventWordProgress:
		g.handleWordProgress(s, envelope.Data)
	case EventWordCompleted:
		g.handleWordCompleted(s, envelope.Data)
	case EventUpdateTime:
		g.handleUpdateTime(s, envelope.Data)
	default:
		s.sendError("unknown event")
	}
}

func (g *Gateway) handleCreateGame(s *session, data json.RawMessage) {
	var payload createGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError("malformed request")
		return
	}

	room := g.registry.Create(payload.GameName, payload.Player)
	snap := room.Snapshot()
	g.subscribe(room.Code(), s)
	s.bind(room.Code(), snap.Players[0].ID)

	s.sendEvent(EventGameCreated, gameCreatedPayload{GameID: room.Code(), GameState: snap})
	slog.Info("game created", "room", room.Code(), "name", payload.GameName)

	g.record("game-created", func(ctx context.Context) error {
		if err := g.recorder.GameCreated(ctx, snap.ID, snap.Name); err != nil {
			return err
		}
		host := snap.Players[0]
		return g.recorder.PlayerJoined(ctx, snap.ID, host.ID, host.Name, host.Color)
	})
}

func (g *Gateway) handleJoinGame(s *session, data json.RawMessage) {
	var payload joinGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError("malformed request")
		return
	}

	room, err := g.registry.Get(payload.GameID)
	if err != nil {
		s.sendError("Game not found")
		return
	}

	snap, err := room.Join(payload.Player)
	if err != nil {
		s.sendError("Game not found")
		return
	}
	g.subscribe(room.Code(), s)
	joined := snap.Players[len(snap.Players)-1]
	s.bind(room.Code(), joined.ID)

	g.broadcast(room.Code(), EventGameUpdated, snap)
	s.sendEvent(EventGameJoined, gameJoinedPayload{GameState: snap})
	slog.Info("player joined", "room", room.Code(), "player", joined.Name)

	g.record("player-joined", func(ctx context.Context) error {
		return g.recorder.PlayerJoined(ctx, snap.ID, joined.ID, joined.Name, joined.Color)
	})
}

func (g *Gateway) handleSelectWord(s *session, data json.RawMessage) {
	var payload selectWordPayload
	if err := json.Unmarshal(data, &payload); err != nil || !validCoordinate(payload.ColumnIndex, payload.RowIndex) {
		s.sendError("malformed request")
		return
	}

	room, err := g.registry.Get(payload.GameID)
	if err != nil {
		s.sendError("Game not found")
		return
	}

	snap, err := room.SelectWord(payload.WordID, payload.Category, payload.ColumnIndex, payload.RowIndex, payload.PlayerID)
	if errors.Is(err, ErrClaimInProgress) {
		s.sendError("another claim is already in progress")
		return
	}
	g.broadcast(room.Code(), EventWordSelected, snap)
}

func (g *Gateway) handleWordProgress(s *session, data json.RawMessage) {
	var payload wordProgressPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError("malformed request")
		return
	}

	room, err := g.registry.Get(payload.GameID)
	if err != nil {
		s.sendError("Game not found")
		return
	}

	if snap, live := room.UpdateProgress(payload.Progress); live {
		g.broadcast(room.Code(), EventProgressUpdated, snap)
	}
}

func (g *Gateway) handleWordCompleted(s *session, data json.RawMessage) {
	var payload selectWordPayload
	if err := json.Unmarshal(data, &payload); err != nil || !validCoordinate(payload.ColumnIndex, payload.RowIndex) {
		s.sendError("malformed request")
		return
	}

	room, err := g.registry.Get(payload.GameID)
	if err != nil {
		s.sendError("Game not found")
		return
	}

	snap, err := room.CompleteWord(payload.WordID, payload.Category, payload.ColumnIndex, payload.RowIndex, payload.PlayerID)
	if errors.Is(err, ErrStaleClaim) {
		s.sendError("no matching claim to complete")
		return
	}
	g.broadcast(room.Code(), EventGameUpdated, snap)

	g.record("word-claimed", func(ctx context.Context) error {
		return g.recorder.WordClaimed(ctx, snap.ID, payload.WordID, string(payload.Category), Points(payload.Category), payload.PlayerID)
	})
}

func (g *Gateway) handleUpdateTime(s *session, data json.RawMessage) {
	var payload updateTimePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.sendError("malformed request")
		return
	}

	room, err := g.registry.Get(payload.GameID)
	if err != nil {
		s.sendError("Game not found")
		return
	}
	room.Tick(payload.ElapsedTime)
}

// dropSession is the presence teardown path: unsubscribe, remove the player
// from the roster, tell the remaining players, and leave empty rooms to the
// garbage collection sweep.
func (g *Gateway) dropSession(s *session) {
	s.stop()

	g.locker.Lock()
	delete(g.sessions, s)
	if s.roomCode != "" {
		if subs, exists := g.subscribers[s.roomCode]; exists {
			delete(subs, s)
		}
	}
	g.locker.Unlock()

	if s.roomCode == "" {
		return
	}
	room, err := g.registry.Get(s.roomCode)
	if err != nil {
		return
	}
	if snap, removed := room.RemovePlayer(s.playerID); removed {
		g.broadcast(s.roomCode, EventGameUpdated, snap)
		slog.Info("player disconnected", "room", s.roomCode, "player", s.playerID)
	}
}

func (g *Gateway) subscribe(roomCode string, s *session) {
	g.locker.Lock()
	defer g.locker.Unlock()
	subs, exists := g.subscribers[roomCode]
	if !exists {
		subs = make(map[*session]struct{})
		g.subscribers[roomCode] = subs
	}
	subs[s] = struct{}{}
}

// broadcast delivers an event to every session subscribed to the room.
// Delivery is fire-and-forget per subscriber.
func (g *Gateway) broadcast(roomCode, event string, payload any) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		slog.Error("broadcast marshal failed", "event", event, "error", err)
		return
	}
	g.locker.Lock()
	defer g.locker.Unlock()
	for s := range g.subscribers[roomCode] {
		s.send(data)
	}
}

func (g *Gateway) record(op string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Error("state mirror write failed", "op", op, "error", err)
		}
	}()
}

func (s *session) sendEvent(event string, payload any) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		slog.Error("reply marshal failed", "event", event, "error", err)
		return
	}
	s.send(data)
}

func (s *session) sendError(message string) {
	s.sendEvent(EventError, errorPayload{Message: message})
}
