package usercopy

import (
	"context"
	"sync"
)

// MemoryStore keeps user copies in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	copies map[string]string
	closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, copies: make(map[string]string)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, subjectID, programID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	code, ok := m.copies[Key(m.prefix, subjectID, programID)]
	return code, ok, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, subjectID, programID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.copies[Key(m.prefix, subjectID, programID)] = code
	return nil
}

// Backend implements Store.
func (*MemoryStore) Backend() string { return "memory" }

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
