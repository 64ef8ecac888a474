// Package mock provides an in-memory database.KVStore for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-auth/internal/database"
)

// KVStore is an in-memory database.KVStore.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool

	// Error injection
	LoadError   error
	SaveError   error
	DeleteError error
}

// NewKVStore creates an empty store.
func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string][]byte)}
}

func (m *KVStore) Load(_ context.Context, name string) ([]byte, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[name]
	if !ok {
		return nil, database.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *KVStore) Save(_ context.Context, name string, value []byte) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = append([]byte(nil), value...)
	return nil
}

func (m *KVStore) Delete(_ context.Context, name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
	return nil
}

func (m *KVStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Raw returns the stored bytes for name without error injection.
func (m *KVStore) Raw(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[name]
	return v, ok
}

// Closed reports whether Close was called.
func (m *KVStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
