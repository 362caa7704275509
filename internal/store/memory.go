package store

import (
	"context"
	"sync"
	"time"

	"github.com/antaresinnovate/eva/internal/domain"
)

// MemoryStore is the default in-process SessionStore backed by a map.
// Sessions are copied on the way in and out so callers never share mutable
// state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

// Get retrieves a session by identifier.
func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

// Put creates or replaces a session.
func (m *MemoryStore) Put(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

// List returns all sessions.
func (m *MemoryStore) List(_ context.Context) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, cloneSession(s))
	}
	return out, nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteIdle removes sessions idle past ttl.
func (m *MemoryStore) DeleteIdle(_ context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error { return nil }

func cloneSession(s *domain.Session) *domain.Session {
	cp := *s
	cp.Messages = make([]domain.Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	if s.Facts != nil {
		facts := *s.Facts
		facts.Needs = make([]string, len(s.Facts.Needs))
		copy(facts.Needs, s.Facts.Needs)
		cp.Facts = &facts
	} else {
		cp.Facts = domain.NewFacts()
	}
	return &cp
}
