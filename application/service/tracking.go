package service

import (
	"context"
	"log/slog"

	"github.com/firmint/firmint/domain/task"
)

// Tracking provides read access to operation progress statuses.
type Tracking struct {
	store  task.StatusStore
	logger *slog.Logger
}

// NewTracking creates a new Tracking service.
func NewTracking(store task.StatusStore, logger *slog.Logger) *Tracking {
	return &Tracking{
		store:  store,
		logger: logger,
	}
}

// ForBatch returns the statuses recorded for a batch, oldest first.
func (s *Tracking) ForBatch(ctx context.Context, batchID int64) ([]task.Status, error) {
	return s.store.FindByBatch(ctx, batchID)
}

// EnrichmentStatus returns the enrichment progress for a batch, or false if
// the batch has not started processing yet.
func (s *Tracking) EnrichmentStatus(ctx context.Context, batchID int64) (task.Status, bool, error) {
	statuses, err := s.store.FindByBatch(ctx, batchID)
	if err != nil {
		return task.Status{}, false, err
	}
	for _, status := range statuses {
		if status.Operation() == task.OperationEnrichBatch {
			return status, true, nil
		}
	}
	return task.Status{}, false, nil
}
