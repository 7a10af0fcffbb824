package game

import (
	"math/rand/v2"
	"sync"
)

const (
	roomCodeLength = 6
	wordIDLength   = 9
	playerIDLength = 9

	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Idgen hands out room codes that are unique among live rooms. Dispose must
// be called when a room is torn down so its code can be reissued.
type Idgen struct {
	locker sync.Mutex
	ids    map[string]struct{}
}

func NewIdGen() Idgen {
	return Idgen{ids: make(map[string]struct{})}
}

func (g *Idgen) Generate() string {
	g.locker.Lock()
	defer g.locker.Unlock()
	for {
		code := randomString(roomCodeAlphabet, roomCodeLength)
		if _, taken := g.ids[code]; taken {
			continue
		}
		g.ids[code] = struct{}{}
		return code
	}
}

func (g *Idgen) Dispose(id string) {
	g.locker.Lock()
	defer g.locker.Unlock()
	delete(g.ids, id)
}

func randomString(alphabet string, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

func randomIndex(n int) int {
	return rand.IntN(n)
}

// newToken generates the short opaque ids used for words and players.
func newToken(length int) string {
	return randomString(tokenAlphabet, length)
}
