package cart

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrConflict = errors.New("cart changed concurrently")

// Store persists cart lines under a key. Update must run fn and write its
// result atomically with respect to other writers of the same key.
type Store interface {
	Load(ctx context.Context, key string) ([]Line, error)
	Save(ctx context.Context, key string, lines []Line) error
	Update(ctx context.Context, key string, fn func([]Line) []Line) ([]Line, error)
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]Line
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]Line{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.carts[key]), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(lines) == 0 {
		delete(m.carts, key)
		return nil
	}
	m.carts[key] = slices.Clone(lines)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, key string, fn func([]Line) []Line) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := fn(Restore(m.carts[key]))
	if len(next) == 0 {
		delete(m.carts, key)
	} else {
		m.carts[key] = slices.Clone(next)
	}
	return next, nil
}
