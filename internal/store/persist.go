package store

import (
	"context"
	"sync"
)

// Entry is one named snapshot.
type Entry struct {
	Key   string
	Value []byte
}

// Persister durably stores snapshots by key.
type Persister interface {
	// Load returns the stored snapshot for key; ok is false when none exists.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Save writes all entries atomically: either every entry is stored or none.
	Save(ctx context.Context, entries ...Entry) error
	// Replace removes every snapshot and writes entries in the same atomic step.
	Replace(ctx context.Context, entries ...Entry) error
	Ping(ctx context.Context) error
}

// MemoryPersister keeps snapshots in process memory.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: map[string][]byte{}}
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	for _, e := range entries {
		m.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

// Replace implements Persister.
func (m *MemoryPersister) Replace(_ context.Context, entries ...Entry) error {
	data := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data[e.Key] = append([]byte(nil), e.Value...)
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Ping implements Persister.
func (m *MemoryPersister) Ping(context.Context) error { return nil }
