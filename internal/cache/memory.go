package cache

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory Store. Its contents live as
// long as the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: call signature, value: latest entry
	data map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Entry),
	}
}

// Load returns the entry stored under key.
func (s *MemoryStore) Load(_ context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Save replaces any entry stored under e.Key.
func (s *MemoryStore) Save(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[e.Key] = e
	return nil
}

// Len reports the number of stored entries, fresh or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
