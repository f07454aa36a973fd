package storage

import (
	"sync"

	"github.com/cardbinder/cardbinder/internal/catalog"
)

// ReviewStore holds the live review sessions, keyed by session id.
type ReviewStore struct {
	sessions map[string]*catalog.Catalog
	mu       sync.RWMutex
}

// New creates an empty ReviewStore.
func New() *ReviewStore {
	return &ReviewStore{
		sessions: make(map[string]*catalog.Catalog),
	}
}

// Get returns the session with the given id.
func (s *ReviewStore) Get(sessionID string) (*catalog.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// Set stores a session under its id.
func (s *ReviewStore) Set(sessionID string, session *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

// GetOrCreate returns the session with the given id, creating it when
// absent.
func (s *ReviewStore) GetOrCreate(sessionID string) *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, exists := s.sessions[sessionID]; exists {
		return session
	}
	session := catalog.New(sessionID)
	s.sessions[sessionID] = session
	return session
}

// GetAll returns a copy of the session map.
func (s *ReviewStore) GetAll() map[string]*catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*catalog.Catalog, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

// Delete removes a session.
func (s *ReviewStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
