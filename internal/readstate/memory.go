package readstate

import (
	"context"
	"sync"
)

// MemoryStore keeps the slot in process memory. It is used by tests and
// by ephemeral sessions that should not touch disk.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore returns an empty in-memory slot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithRaw seeds the slot with a raw stored value, which may
// be corrupt.
func NewMemoryStoreWithRaw(raw string) *MemoryStore {
	return &MemoryStore{data: []byte(raw)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) Set {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return NewSet()
	}
	s, err := decode(m.data)
	if err != nil {
		return NewSet()
	}
	return s
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s Set) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the stored slot value.
func (m *MemoryStore) Raw() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}
