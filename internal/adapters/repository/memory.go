package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/demandgen/internal/domain/model"
)

// InMemoryStore is an owned state cell. Reads are lock free; writes are
// serialized and publish a private deep copy through an atomic pointer.
type InMemoryStore struct {
	mu          sync.Mutex
	current     atomic.Pointer[model.Snapshot]
	version     atomic.Uint64
	allowRewind bool
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements Store.Load.
func (s *InMemoryStore) Load(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}
	cur := s.current.Load()
	if cur == nil {
		return model.Snapshot{}, ErrEmpty
	}
	return cur.Clone(), nil
}

// Replace implements Store.Replace.
func (s *InMemoryStore) Replace(ctx context.Context, snapshot model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.current.Load(); cur != nil && !s.allowRewind && snapshot.Sequence <= cur.Sequence {
		return fmt.Errorf("%w: have %d, got %d", ErrStaleSnapshot, cur.Sequence, snapshot.Sequence)
	}

	c := snapshot.Clone()
	s.current.Store(&c)
	s.version.Add(1)
	return nil
}

// Version implements Store.Version.
func (s *InMemoryStore) Version(_ context.Context) uint64 {
	return s.version.Load()
}
