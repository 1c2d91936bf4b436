package batch

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested batch does not exist.
var ErrNotFound = errors.New("batch not found")

// Store is the persistence boundary for batches. Implementations assign IDs
// on first save and return the stored copy.
type Store interface {
	// Save stores the batch, assigning an ID if it has none, and returns
	// the stored value.
	Save(ctx context.Context, b Batch) (Batch, error)

	// Get returns the batch with the given ID, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, id int64) (Batch, error)

	// List returns batches ordered by creation time (newest first) plus the
	// total count. limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]Batch, int, error)

	// Delete removes the batch with the given ID, or returns an error
	// wrapping ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
