package repository

import "github.com/okian/demandgen/internal/domain/model"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithInitial stores s as the first snapshot.
func WithInitial(s model.Snapshot) Option {
	return func(st *InMemoryStore) {
		c := s.Clone()
		st.current.Store(&c)
		st.version.Store(1)
	}
}

// WithAllowRewind accepts snapshots whose sequence does not advance.
func WithAllowRewind() Option {
	return func(st *InMemoryStore) {
		st.allowRewind = true
	}
}
