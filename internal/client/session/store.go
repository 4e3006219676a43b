package session

import "sync"

// Store owns the current Session. The session is only ever replaced as a
// whole; readers get a copy.
type Store struct {
	mu      sync.RWMutex
	current Session
	err     error
}

func NewStore() *Store {
	return &Store{}
}

// Init resets the store to an empty session with no recorded error.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
	s.err = nil
}

// Replace installs next and forgets any earlier error.
func (s *Store) Replace(next Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	s.err = nil
}

// Clear empties the session and records cause, which may be nil.
func (s *Store) Clear(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
	s.err = cause
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Err returns the error recorded by the last Clear.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
