package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory SnapshotStore for tests and ephemeral runs
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns a copy of the snapshot
func (m *MemoryStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Write stores a copy of data
func (m *MemoryStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make([]byte, len(data))
	copy(m.data, data)
	m.set = true
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

var _ SnapshotStore = (*MemoryStore)(nil)
