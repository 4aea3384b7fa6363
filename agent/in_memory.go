package agent

import (
	"context"
	"sync"
)

// InMemoryConfigStore keeps agent records in process memory. Useful for tests
// and ephemeral deployments.
type InMemoryConfigStore struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

var _ ConfigStore = (*InMemoryConfigStore)(nil)

// NewInMemoryConfigStore creates an empty in-memory config store.
func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{
		agents: make(map[string]*Agent),
	}
}

// Get implements ConfigStore.
func (s *InMemoryConfigStore) Get(_ context.Context, name string) (*Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[name]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// Put implements ConfigStore.
func (s *InMemoryConfigStore) Put(_ context.Context, a *Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.Name] = a.Clone()
	return nil
}
