package budget

import (
	"context"
	"sync"
)

// InMemoryStore keeps budgets in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Budget
	byUser map[string][]string
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory budget store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[string]*Budget),
		byUser: make(map[string][]string),
	}
}

// List implements Store.
func (s *InMemoryStore) List(_ context.Context, userID string) ([]Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]Budget, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	return out, nil
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, id string) (*Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *b
	return &c, nil
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, b *Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(b)
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	ids := s.byUser[b.UserID]
	for i, existing := range ids {
		if existing == id {
			s.byUser[b.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Replace implements Store.
func (s *InMemoryStore) Replace(_ context.Context, userID string, budgets []Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byUser[userID] {
		delete(s.byID, id)
	}
	s.byUser[userID] = nil
	for i := range budgets {
		b := budgets[i]
		s.put(&b)
	}
	return nil
}

func (s *InMemoryStore) put(b *Budget) {
	c := *b
	if _, exists := s.byID[c.ID]; !exists {
		s.byUser[c.UserID] = append(s.byUser[c.UserID], c.ID)
	}
	s.byID[c.ID] = &c
}
