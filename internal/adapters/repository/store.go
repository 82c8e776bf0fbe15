// Package repository holds the live simulator snapshot.
package repository

import (
	"context"

	"github.com/okian/demandgen/internal/domain/model"
)

// Store provides read/write access to the live snapshot.
//
// There is exactly one writer (the scheduler loop) and any number of readers.
type Store interface {
	// Load returns a copy of the current snapshot.
	// Returns ErrEmpty before the first Replace.
	Load(ctx context.Context) (model.Snapshot, error)

	// Replace swaps in a new snapshot. The sequence must be greater than the
	// stored one, otherwise ErrStaleSnapshot is returned and nothing changes.
	Replace(ctx context.Context, snapshot model.Snapshot) error

	// Version returns how many snapshots have been stored.
	Version(ctx context.Context) uint64
}
