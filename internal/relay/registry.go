package relay

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ConnID identifies one live connection for the lifetime of its transport
// session. IDs are never reused; a reconnecting client gets a fresh one.
type ConnID string

// ConnRegistry maps connection ids to their transport handles. It owns the
// connections themselves; room membership lives in the RoomRegistry.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[ConnID]*Conn
}

// NewConnRegistry creates an empty registry.
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[ConnID]*Conn)}
}

// Register assigns the connection its identity and records it. Registration
// has no failure mode.
func (cr *ConnRegistry) Register(c *Conn) ConnID {
	id := ConnID(uuid.NewString())
	c.id = id

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.conns[id] = c
	return id
}

// Unregister forgets the connection. Unregistering an id twice is a no-op;
// the disconnect path tolerates racing cleanups.
func (cr *ConnRegistry) Unregister(id ConnID) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	delete(cr.conns, id)
}

// Get looks up a live connection by id.
func (cr *ConnRegistry) Get(id ConnID) (*Conn, bool) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	c, ok := cr.conns[id]
	return c, ok
}

// Snapshot returns the current set of live connections. Used at shutdown to
// close everything without holding the registry lock while doing so.
func (cr *ConnRegistry) Snapshot() []*Conn {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return lo.Values(cr.conns)
}

// Len reports the number of live connections.
func (cr *ConnRegistry) Len() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.conns)
}
