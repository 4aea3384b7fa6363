package history

import (
	"context"
	"sync"

	"github.com/aion-pfm/aion/core"
)

// InMemoryStore is a volatile Store implementation keeping turn logs in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Replay returns a defensive copy to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]core.Turn
}

// NewInMemoryStore constructs an empty in-memory turn store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{logs: make(map[string][]core.Turn)}
}

func logKey(agentName, userID string) string {
	return agentName + "\x00" + userID
}

// Append implements Store.
func (s *InMemoryStore) Append(_ context.Context, agentName, userID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := logKey(agentName, userID)
	s.logs[key] = append(s.logs[key], turn)
	return nil
}

// Replay implements Store.
func (s *InMemoryStore) Replay(_ context.Context, agentName, userID string) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[logKey(agentName, userID)]
	out := make([]core.Turn, len(log))
	copy(out, log)
	return out, nil
}

// Clear implements Store.
func (s *InMemoryStore) Clear(_ context.Context, agentName, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, logKey(agentName, userID))
	return nil
}
