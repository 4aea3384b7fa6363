package profile

import (
	"context"
	"sync"
)

// InMemoryStore keeps profiles in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]*Profile),
	}
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p.Clone()
	return nil
}
