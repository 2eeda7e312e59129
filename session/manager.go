package session

import (
	"sort"
	"sync"
	"time"
)

// Manager owns the live session set. Only the tick goroutine calls
// Drain/CheckTimeouts/Remove on the sessions it returns; Create and
// Lookup are safe to call from a transport's accept goroutine too, since
// they only touch the map under mu — never a Session's own fields.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
	nextID   uint32
	cfg      Config
}

// NewManager creates an empty session manager using cfg for every new
// Session.
func NewManager(cfg Config) *Manager {
	return &Manager{sessions: make(map[uint32]*Session), cfg: cfg}
}

// Create allocates a new session in StateNew, called when a transport
// accepts a connection.
func (m *Manager) Create(now time.Time) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := New(m.nextID, m.cfg, now)
	m.sessions[s.ID] = s
	return s
}

// Lookup returns the session with id, or nil.
func (m *Manager) Lookup(id uint32) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Remove deletes a session from the manager, called once the tick loop
// has torn down its world/AOI state (CLOSING→CLOSED).
func (m *Manager) Remove(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// All returns every live session sorted by ascending id, matching the
// session-id-ascending iteration order used for input application and
// snapshot production.
func (m *Manager) All() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
