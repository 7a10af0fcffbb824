package game

import "sync"

// Registry maps live room codes to rooms. It only guards the map; per-room
// serialization is each room's own mutex.
type Registry struct {
	locker sync.RWMutex
	rooms  map[string]*Room
	idGen  Idgen
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		idGen: NewIdGen(),
	}
}

// Create builds a room under a fresh collision-checked code with the host
// as its first player.
func (reg *Registry) Create(name string, host Player) *Room {
	code := reg.idGen.Generate()
	room := NewRoom(code, name, host)
	reg.locker.Lock()
	reg.rooms[code] = room
	reg.locker.Unlock()
	return room
}

func (reg *Registry) Get(code string) (*Room, error) {
	reg.locker.RLock()
	room, exists := reg.rooms[code]
	reg.locker.RUnlock()
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (reg *Registry) Remove(code string) {
	reg.locker.Lock()
	delete(reg.rooms, code)
	reg.locker.Unlock()
	reg.idGen.Dispose(code)
}

// Rooms returns the live rooms for periodic sweeps.
func (reg *Registry) Rooms() []*Room {
	reg.locker.RLock()
	defer reg.locker.RUnlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
