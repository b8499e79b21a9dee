package session

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore is a Store backed by a map. Values are not copied, so a
// stored pointer is shared with every caller that Gets it.
type MemoryStore[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

// Delete removes id. Deleting a missing id is not an error.
func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// IDs lists the stored session ids in sorted order.
func (s *MemoryStore[T]) IDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := lo.Keys(s.m)
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids, nil
}

// NewID returns a random UUID.
func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
