package service

import (
	"fmt"
	"sync"

	"extract-viewer/internal/domain"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxSessions bounds the sessions kept in memory.
const DefaultMaxSessions = 1024

// SessionFactory builds a new session for id.
type SessionFactory func(id string) *Session

// SessionStore keeps the most recently used sessions. An evicted session is
// closed, which releases its presentation.
type SessionStore struct {
	sessions *lru.Cache[string, *Session]
	factory  SessionFactory
	mu       sync.Mutex
	logger   domain.Logger
}

// NewSessionStore creates a store holding at most size sessions.
func NewSessionStore(size int, factory SessionFactory, logger domain.Logger) (*SessionStore, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, s *Session) {
		logger.Debug("Evicting session", "session", id)
		s.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &SessionStore{sessions: cache, factory: factory, logger: logger}, nil
}

// Get returns the session with id, if it is still held.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return st.sessions.Get(id)
}

// GetOrCreate returns the session with id, or a new session under a fresh
// id when id is unknown. created reports the latter.
func (st *SessionStore) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.Get(id); ok {
		return s, false
	}

	s = st.factory(uuid.NewString())
	st.sessions.Add(s.ID, s)
	st.logger.Debug("Created session", "session", s.ID)
	return s, true
}

// Remove closes and forgets a session.
func (st *SessionStore) Remove(id string) {
	st.sessions.Remove(id)
}

// Len returns the number of sessions held.
func (st *SessionStore) Len() int {
	return st.sessions.Len()
}

// Close closes every session.
func (st *SessionStore) Close() {
	st.sessions.Purge()
}
