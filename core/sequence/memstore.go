package sequence

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store guarded by one mutex per scope.
// It suits tests and single-instance tools; multiple instances must share a GormStore.
type MemoryStore struct {
	mu     sync.Mutex
	scopes map[string]*memoryCounter
}

type memoryCounter struct {
	mu   sync.Mutex
	next int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]*memoryCounter)}
}

func (s *MemoryStore) counter(scope string) *memoryCounter {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.scopes[scope]
	if !ok {
		c = &memoryCounter{next: 1}
		s.scopes[scope] = c
	}
	return c
}

// AllocateNext implements Store.
func (s *MemoryStore) AllocateNext(ctx context.Context, scope string, count int) (int64, error) {
	if err := checkCount(count); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c := s.counter(scope)
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.next
	c.next += int64(count)
	return start, nil
}

// Peek implements Store.
func (s *MemoryStore) Peek(_ context.Context, scope string) (int64, error) {
	c := s.counter(scope)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next, nil
}
