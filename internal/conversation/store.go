package conversation

import "sync"

// Store maps session ids to their histories. Histories are created lazily and live
// for the lifetime of the Store; there is no eviction.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*History
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*History),
	}
}

// GetOrCreate returns the history for sessionID, creating an empty one on first use.
// Repeated calls return the same instance.
func (s *Store) GetOrCreate(sessionID string) *History {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have created it between the two locks.
	if h, ok := s.sessions[sessionID]; ok {
		return h
	}
	h = newHistory(sessionID)
	s.sessions[sessionID] = h
	return h
}

// Lookup returns the history for sessionID without creating one.
func (s *Store) Lookup(sessionID string) (*History, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[sessionID]
	return h, ok
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
