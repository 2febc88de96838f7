package conversation

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound means no context exists for the session id.
var ErrNotFound = errors.New("session not found")

// Store persists conversation contexts between turns. Session lifetime is
// the caller's concern; stores only get, put and count.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Context, error)
	Put(ctx context.Context, conv *Context) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore keeps contexts in process memory. The default when no
// database is configured; sessions vanish on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Context
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*Context)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.data[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, conv *Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[conv.SessionID] = conv.clone()
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data), nil
}
