package localstore

import (
	"context"
	"sync"

	"github.com/digicoders-git/espejo-website-sub001/internal/domain"
)

// MemoryStore is a process-local SnapshotStore for cache-less deployments and
// tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]domain.CartItem)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) []domain.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.snapshots[userID]
	if !ok {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func (m *MemoryStore) Save(_ context.Context, userID string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]domain.CartItem, len(items))
	copy(stored, items)
	m.snapshots[userID] = stored
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, userID)
	return nil
}
