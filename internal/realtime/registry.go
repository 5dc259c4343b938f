package realtime

import "sync"

// Event is the envelope written to a client connection.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Handle is a live, push-capable connection. Send must not block: it hands
// the event to the connection's writer and reports whether it was accepted.
type Handle interface {
	ID() string
	Send(evt Event) bool
}

// Registry maps a user ID to that user's most recent live connection.
// A later Register for the same user replaces the earlier handle; the
// replaced connection stays open but no longer receives targeted pushes.
type Registry struct {
	mu    sync.RWMutex
	users map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]Handle)}
}

// Register stores or overwrites the handle for userID.
func (r *Registry) Register(userID string, h Handle) {
	r.mu.Lock()
	r.users[userID] = h
	r.mu.Unlock()
}

// Unregister removes the mapping for userID. Absent IDs are a no-op.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.users, userID)
	r.mu.Unlock()
}

// UnregisterHandle removes the mapping only if userID still points at h.
// The hub calls this on disconnect so that an older connection closing does
// not evict a newer one registered under the same user.
func (r *Registry) UnregisterHandle(userID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[userID]
	if !ok || cur.ID() != h.ID() {
		return false
	}
	delete(r.users, userID)
	return true
}

// Lookup returns the current handle for userID, if any.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	h, ok := r.users[userID]
	r.mu.RUnlock()
	return h, ok
}

// Len returns the number of users with a live connection.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ConnSet tracks every open connection, registered under a user or not.
// Broadcast walks this set rather than the registry.
type ConnSet struct {
	mu    sync.RWMutex
	conns map[string]Handle
}

func NewConnSet() *ConnSet {
	return &ConnSet{conns: make(map[string]Handle)}
}

func (s *ConnSet) Add(h Handle) {
	s.mu.Lock()
	s.conns[h.ID()] = h
	s.mu.Unlock()
}

func (s *ConnSet) Remove(h Handle) {
	s.mu.Lock()
	delete(s.conns, h.ID())
	s.mu.Unlock()
}

// Snapshot copies the current handles so callers can send without holding
// the lock.
func (s *ConnSet) Snapshot() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Handle, 0, len(s.conns))
	for _, h := range s.conns {
		out = append(out, h)
	}
	return out
}

func (s *ConnSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}
