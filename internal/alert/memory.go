package alert

import (
	"context"
	"sync"
)

// MemoryStore keeps suppressions for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[Key]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[Key]struct{})}
}

func (m *MemoryStore) Has(_ context.Context, key Key) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.keys[key]

	return ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[key] = struct{}{}

	return nil
}
