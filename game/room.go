package game

import (
	"sync"
	"time"
)

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Color string `json:"color,omitempty"`
}

// Claim is the single in-flight attempt to win a word. At most one claim
// exists per room at any instant; it serializes the whole grid, not just
// the targeted slot.
type Claim struct {
	WordID      string   `json:"wordId"`
	Category    Category `json:"category"`
	ColumnIndex int      `json:"columnIndex"`
	RowIndex    int      `json:"rowIndex"`
	PlayerID    string   `json:"playerId"`
	Progress    int      `json:"progress"`
}

// Snapshot is the complete authoritative room state. Broadcasts always carry
// a full snapshot, never a delta.
type Snapshot struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Players      []Player                    `json:"players"`
	Words        [GridColumns][GridRows]Word `json:"words"`
	StartTime    int64                       `json:"startTime"`
	ElapsedTime  int64                       `json:"elapsedTime"`
	IsActive     bool                        `json:"isActive"`
	SelectedWord *Claim                      `json:"selectedWord"`
}

// Room owns all mutable state of one game session. Every mutating method
// takes the room mutex, so operations on a room are serialized while
// different rooms stay fully independent.
type Room struct {
	locker sync.Mutex

	code      string
	name      string
	players   []Player
	words     [GridColumns][GridRows]Word
	startTime time.Time
	elapsedMs int64
	active    bool

	claim        *Claim
	claimTouched time.Time

	emptySince time.Time
	closed     bool
}

func NewRoom(code, name string, host Player) *Room {
	room := &Room{
		code:      code,
		name:      name,
		players:   make([]Player, 0, 4),
		startTime: time.Now(),
		active:    true,
	}
	for col, category := range GridCategories {
		copy(room.words[col][:], DrawWords(category, GridRows))
	}
	room.addPlayerLocked(host)
	return room
}

func (r *Room) Code() string {
	return r.code
}

// Join appends the player to the roster. Join order is significant: the
// first player is the host. There is no capacity limit. Joining a room the
// sweep has already closed fails with ErrRoomClosed; the close flag and the
// roster share the room mutex, so the two can never interleave.
func (r *Room) Join(player Player) (Snapshot, error) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.closed {
		return Snapshot{}, ErrRoomClosed
	}
	r.addPlayerLocked(player)
	r.emptySince = time.Time{}
	return r.snapshotLocked(), nil
}

// addPlayerLocked fills in the server-issued id and a roster-distinct color
// when the joining player carries none.
func (r *Room) addPlayerLocked(player Player) {
	if player.ID == "" {
		player.ID = newToken(playerIDLength)
	}
	if player.Color == "" {
		used := make([]string, 0, len(r.players))
		for _, p := range r.players {
			used = append(used, p.Color)
		}
		player.Color = pickColor(used)
	}
	r.players = append(r.players, player)
}

// SelectWord installs a new claim at progress zero. It fails with
// ErrClaimInProgress while any claim is live anywhere in the room. The
// coordinate is trusted as observed by the caller and not revalidated
// against the grid.
func (r *Room) SelectWord(wordID string, category Category, col, row int, playerID string) (Snapshot, error) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.claim != nil {
		return Snapshot{}, ErrClaimInProgress
	}
	r.claim = &Claim{
		WordID:      wordID,
		Category:    category,
		ColumnIndex: col,
		RowIndex:    row,
		PlayerID:    playerID,
	}
	r.claimTouched = time.Now()
	return r.snapshotLocked(), nil
}

// UpdateProgress sets the live claim's progress, clamped to [0,100].
// Last write wins; decreasing values are accepted verbatim. Without a live
// claim it is a no-op and reports false.
func (r *Room) UpdateProgress(progress int) (Snapshot, bool) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.claim == nil {
		return Snapshot{}, false
	}
	r.claim.Progress = min(100, max(0, progress))
	r.claimTouched = time.Now()
	return r.snapshotLocked(), true
}

// CompleteWord settles the live claim: it awards points to playerID if that
// player is on the roster, replaces the slot with a fresh word of the
// column's category, and clears the claim, all atomically. A completion
// whose word id or coordinate does not match the live claim fails with
// ErrStaleClaim, so a duplicate or drifted delivery can never double-award
// or clobber an unclaimed slot.
func (r *Room) CompleteWord(wordID string, category Category, col, row int, playerID string) (Snapshot, error) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.claim == nil || r.claim.WordID != wordID || r.claim.ColumnIndex != col || r.claim.RowIndex != row {
		return Snapshot{}, ErrStaleClaim
	}
	for i := range r.players {
		if r.players[i].ID == playerID {
			r.players[i].Score += Points(category)
			break
		}
	}
	r.words[col][row] = DrawWords(GridCategories[col], 1)[0]
	r.claim = nil
	return r.snapshotLocked(), nil
}

// Tick records the client-reported elapsed time while the room is active.
// Time is trusted as reported; there is no server-side clock authority.
func (r *Room) Tick(elapsedMs int64) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.active {
		r.elapsedMs = elapsedMs
	}
}

// RemovePlayer drops the player from the roster. A claim owned by the
// leaving player is abandoned so the grid is not locked until expiry. When
// the roster empties the room is marked for garbage collection.
func (r *Room) RemovePlayer(playerID string) (Snapshot, bool) {
	r.locker.Lock()
	defer r.locker.Unlock()
	removed := false
	for i := range r.players {
		if r.players[i].ID == playerID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return Snapshot{}, false
	}
	if r.claim != nil && r.claim.PlayerID == playerID {
		r.claim = nil
	}
	if len(r.players) == 0 {
		r.emptySince = time.Now()
	}
	return r.snapshotLocked(), true
}

// ExpireClaim abandons a claim that has seen no select/progress activity
// within maxIdle, so a stalled client cannot lock the grid forever.
func (r *Room) ExpireClaim(now time.Time, maxIdle time.Duration) (Snapshot, bool) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.claim == nil || now.Sub(r.claimTouched) < maxIdle {
		return Snapshot{}, false
	}
	r.claim = nil
	return r.snapshotLocked(), true
}

// CloseIfEmpty tombstones the room once the roster has been empty for at
// least grace and reports whether the room is closed. The check and the
// close happen under the room mutex, so a concurrent Join either lands
// before the close or fails with ErrRoomClosed.
func (r *Room) CloseIfEmpty(now time.Time, grace time.Duration) bool {
	r.locker.Lock()
	defer r.locker.Unlock()
	if !r.closed && len(r.players) == 0 && !r.emptySince.IsZero() && now.Sub(r.emptySince) >= grace {
		r.closed = true
	}
	return r.closed
}

func (r *Room) Snapshot() Snapshot {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          r.code,
		Name:        r.name,
		Players:     make([]Player, len(r.players)),
		Words:       r.words,
		StartTime:   r.startTime.UnixMilli(),
		ElapsedTime: r.elapsedMs,
		IsActive:    r.active,
	}
	copy(snap.Players, r.players)
	if r.claim != nil {
		claim := *r.claim
		snap.SelectedWord = &claim
	}
	return snap
}
