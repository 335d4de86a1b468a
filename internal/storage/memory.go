package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded document in memory. Documents go through
// the same JSON encoding as the other stores, so callers never share
// slices or maps with the store.
type MemoryStore[T any] struct {
	empty EmptyFunc[T]

	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore[T any](empty EmptyFunc[T]) *MemoryStore[T] {
	return &MemoryStore[T]{empty: empty}
}

// SetRaw replaces the stored bytes verbatim. Tests use it to simulate
// corrupt documents.
func (s *MemoryStore[T]) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

func (s *MemoryStore[T]) Load(ctx context.Context) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

func (s *MemoryStore[T]) Save(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

func (s *MemoryStore[T]) Update(ctx context.Context, fn func(doc *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	write, err := apply(&doc, fn)
	if err != nil || !write {
		return err
	}
	return s.save(ctx, doc)
}

func (s *MemoryStore[T]) load(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	if s.data == nil {
		return s.empty(), nil
	}
	return decode("memory", s.data, s.empty)
}

func (s *MemoryStore[T]) save(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}
