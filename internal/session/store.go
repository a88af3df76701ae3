package session

import (
	"context"
	"sync"
)

// Store persists sessions. Implementations must treat corrupt records
// as absent: clear them and return ErrSessionNotFound, never surface a
// decode failure to the caller.
type Store interface {
	// Put inserts or replaces a session.
	Put(ctx context.Context, s *Session) error

	// Get returns the session for an ID, or ErrSessionNotFound.
	// Expiry is the Manager's concern; stores return expired sessions.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions whose expiry is at or before
	// nowMillis and returns how many were removed.
	DeleteExpired(ctx context.Context, nowMillis int64) (int64, error)
}

// MemoryStore is an in-process Store for ephemeral sessions.
// Used when Redis is not configured; sessions vanish on restart,
// which is the point of the non-remember-me scope.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

// Put inserts or replaces a session.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Get returns the session for an ID, or ErrSessionNotFound.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := s
	return &out, nil
}

// Delete removes a session. Absent IDs are a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes sessions expired at nowMillis.
func (m *MemoryStore) DeleteExpired(_ context.Context, nowMillis int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, s := range m.sessions {
		if s.ExpiresAt <= nowMillis {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
