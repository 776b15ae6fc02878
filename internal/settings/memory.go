package settings

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used for replays and tests.
// It is goroutine-safe.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the stored value or defaultValue.
func (s *MemoryStore) Get(_ context.Context, platform, orgID, key, defaultValue string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[orgPrefix(platform, orgID)+key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

// Set stores a value.
func (s *MemoryStore) Set(_ context.Context, platform, orgID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[orgPrefix(platform, orgID)+key] = value
	return nil
}
