package receiver

import "sync"

// Registry is the receiver's source of truth for connected sessions,
// keyed by owner. All operations are atomic with respect to each
// other; no concurrent reader observes a partial update.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put inserts a session, replacing and returning any prior session
// with the same owner.
func (r *Registry) Put(s *Session) (prior *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prior = r.sessions[s.Owner]
	r.sessions[s.Owner] = s
	return prior
}

// Get returns the session for the owner, or nil.
func (r *Registry) Get(owner string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[owner]
}

// ByID returns the session with the given id, or nil.
func (r *Registry) ByID(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Remove deletes and returns the owner's session. Removing an absent
// owner is a no-op returning nil.
func (r *Registry) Remove(owner string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[owner]
	delete(r.sessions, owner)
	return s
}

// Pending returns a snapshot of sessions not yet activated.
func (r *Registry) Pending() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []*Session
	for _, s := range r.sessions {
		if !s.Started() {
			pending = append(pending, s)
		}
	}
	return pending
}

// Size returns the number of currently registered sessions.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Clear removes every session.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.sessions)
}
