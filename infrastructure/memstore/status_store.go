package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/firmint/firmint/domain/task"
)

// StatusStore is an in-memory implementation of task.StatusStore.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[string]task.Status
}

// NewStatusStore creates an empty status store.
func NewStatusStore() *StatusStore {
	return &StatusStore{
		statuses: make(map[string]task.Status),
	}
}

// Save creates or updates a status, keyed by status ID.
func (s *StatusStore) Save(_ context.Context, status task.Status) (task.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[status.ID()] = status
	return status, nil
}

// Get retrieves a status by ID.
func (s *StatusStore) Get(_ context.Context, id string) (task.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[id]
	if !ok {
		return task.Status{}, fmt.Errorf("status %q: %w", id, task.ErrNotFound)
	}
	return status, nil
}

// FindByBatch retrieves the statuses tracking the given batch, oldest first.
func (s *StatusStore) FindByBatch(_ context.Context, batchID int64) ([]task.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.Status
	for _, status := range s.statuses {
		if status.BatchID() == batchID {
			result = append(result, status)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		}
		return result[i].ID() < result[j].ID()
	})
	return result, nil
}

// DeleteByBatch removes the statuses tracking the given batch.
func (s *StatusStore) DeleteByBatch(_ context.Context, batchID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, status := range s.statuses {
		if status.BatchID() == batchID {
			delete(s.statuses, id)
		}
	}
	return nil
}

// Ensure StatusStore implements task.StatusStore.
var _ task.StatusStore = (*StatusStore)(nil)
