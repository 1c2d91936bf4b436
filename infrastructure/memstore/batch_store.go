// Package memstore provides in-memory stores for batches, tasks, and
// statuses. State lives for the lifetime of the process; the exported CSV is
// the durable artifact.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/firmint/firmint/domain/batch"
)

// BatchStore is an in-memory implementation of batch.Store.
type BatchStore struct {
	mu       sync.RWMutex
	batches  map[int64]batch.Batch
	sequence int64
}

// NewBatchStore creates an empty batch store.
func NewBatchStore() *BatchStore {
	return &BatchStore{
		batches: make(map[int64]batch.Batch),
	}
}

// Save stores the batch, assigning an ID on first save, and returns the
// stored value.
func (s *BatchStore) Save(_ context.Context, b batch.Batch) (batch.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID() == 0 {
		s.sequence++
		b = b.WithID(s.sequence)
	}
	s.batches[b.ID()] = b
	return b, nil
}

// Get returns the batch with the given ID.
func (s *BatchStore) Get(_ context.Context, id int64) (batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return batch.Batch{}, fmt.Errorf("batch %d: %w", id, batch.ErrNotFound)
	}
	return b, nil
}

// List returns batches newest first plus the total count. limit <= 0 means
// no limit.
func (s *BatchStore) List(_ context.Context, limit, offset int) ([]batch.Batch, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]batch.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		all = append(all, b)
	}
	// Creation time descending; IDs are monotonic so they break timestamp
	// ties deterministically.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].CreatedAt().After(all[j].CreatedAt())
		}
		return all[i].ID() > all[j].ID()
	})

	total := len(all)
	if offset > 0 {
		if offset >= len(all) {
			return []batch.Batch{}, total, nil
		}
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

// Delete removes the batch with the given ID.
func (s *BatchStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[id]; !ok {
		return fmt.Errorf("batch %d: %w", id, batch.ErrNotFound)
	}
	delete(s.batches, id)
	return nil
}

// Ensure BatchStore implements batch.Store.
var _ batch.Store = (*BatchStore)(nil)
