package throttle

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	state     State
	expiresAt time.Time
}

// MemoryStore keeps throttle state in process.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Load returns a copy of the state for key.
func (s *MemoryStore) Load(_ context.Context, key string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !item.expiresAt.IsZero() && !s.now().Before(item.expiresAt) {
		delete(s.items, key)
		return nil, nil
	}
	st := item.state
	return &st, nil
}

// Save stores st under key; ttl <= 0 keeps it until overwritten.
func (s *MemoryStore) Save(_ context.Context, key string, st *State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{state: *st}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = item
	return nil
}
