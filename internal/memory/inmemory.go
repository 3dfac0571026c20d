package memory

import (
	"context"
	"strings"
	"sync"
)

// InMemoryStore is the fallback tier: a process-local table with unbounded
// lifetime and no expiry, used when the durable tier is unreachable.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns: make(map[string][]Turn),
	}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, exists := s.turns[key]
	if !exists {
		return nil, nil
	}

	copied := make([]Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

func (s *InMemoryStore) Save(ctx context.Context, key string, turns []Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Turn, len(turns))
	copy(copied, turns)
	s.turns[key] = copied
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.turns[key]; !exists {
		return false, nil
	}
	delete(s.turns, key)
	return true, nil
}

func (s *InMemoryStore) Keys(ctx context.Context, ownerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := keyPrefix
	if ownerID != "" {
		prefix = keyPrefix + ownerID + ":"
	}

	keys := make([]string, 0, len(s.turns))
	for key := range s.turns {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *InMemoryStore) Name() string {
	return "ram_fallback"
}
