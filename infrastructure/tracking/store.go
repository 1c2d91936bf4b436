package tracking

import (
	"context"
	"log/slog"

	"github.com/firmint/firmint/domain/task"
)

// StoreReporter implements Reporter by persisting status changes, making
// batch progress visible to API polling.
type StoreReporter struct {
	store  task.StatusStore
	logger *slog.Logger
}

// NewStoreReporter creates a new StoreReporter.
func NewStoreReporter(store task.StatusStore, logger *slog.Logger) *StoreReporter {
	return &StoreReporter{
		store:  store,
		logger: logger,
	}
}

// OnChange saves the status.
func (r *StoreReporter) OnChange(ctx context.Context, status task.Status) error {
	if _, err := r.store.Save(ctx, status); err != nil {
		r.logger.Error("failed to save batch status",
			slog.String("error", err.Error()),
			slog.String("operation", status.Operation().String()),
			slog.Int64("batch_id", status.BatchID()),
		)
		return err
	}
	return nil
}

// Ensure StoreReporter implements Reporter.
var _ Reporter = (*StoreReporter)(nil)
