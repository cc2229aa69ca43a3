package live

import "sync"

// liveRoom pairs a room's authoritative state with the mutex that forms its
// mutation boundary. All reads and writes of state happen with mu held.
type liveRoom struct {
	mu      sync.Mutex
	state   *RoomState
	retired bool
}

// Registry maps room ids to their single live instance. Exactly one
// RoomState exists per room id at any time; two connections acting on the
// same room always reach the same instance.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*liveRoom
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*liveRoom)}
}

func (g *Registry) get(roomID string) (*liveRoom, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rm, ok := g.rooms[roomID]
	return rm, ok
}

// getOrCreate returns the live instance for the room, building one from the
// given state if none exists yet. The build function runs under the registry
// lock at most once per live instance.
func (g *Registry) getOrCreate(roomID string, build func() *RoomState) *liveRoom {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rm, ok := g.rooms[roomID]; ok {
		return rm
	}
	rm := &liveRoom{state: build()}
	g.rooms[roomID] = rm
	return rm
}

// retire marks the instance dead and unmaps it. Caller holds rm.mu; a caller
// that finds retired set must re-fetch from the registry.
func (g *Registry) retire(roomID string, rm *liveRoom) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rm.retired = true
	if current, ok := g.rooms[roomID]; ok && current == rm {
		delete(g.rooms, roomID)
	}
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
