package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	s  Session
}

// NewMemoryStore returns a store seeded with the given session.
func NewMemoryStore(initial Session) *MemoryStore {
	return &MemoryStore{s: clone(initial)}
}

func (m *MemoryStore) Get(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.s), nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	m.s = clone(s)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SetCredentials(_ context.Context, c Credentials) error {
	m.mu.Lock()
	m.s.Credentials = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.s = Session{}
	m.mu.Unlock()
	return nil
}

func clone(s Session) Session {
	if s.User != nil {
		s.User = append([]byte(nil), s.User...)
	}
	return s
}
