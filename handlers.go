package firmint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firmint/firmint/application/handler"
	enrichmenthandler "github.com/firmint/firmint/application/handler/enrichment"
	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/tracking"
)

// registerHandlers registers all task handlers with the worker registry.
func (c *Client) registerHandlers(trackerFactory *trackerFactoryImpl) error {
	h, err := enrichmenthandler.NewEnrichBatch(c.Batches, trackerFactory, c.logger)
	if err != nil {
		return fmt.Errorf("enrich batch handler: %w", err)
	}
	c.registry.Register(task.OperationEnrichBatch, h)

	c.logger.Info("registered task handlers", slog.Int("count", len(c.registry.Operations())))
	return nil
}

// trackerFactoryImpl implements handler.TrackerFactory for progress reporting.
type trackerFactoryImpl struct {
	statuses  task.StatusStore
	reporters []tracking.Reporter
	logger    *slog.Logger
}

// ForOperation creates a Tracker for one operation on one batch. An existing
// status for the pair is resumed, so a completion marked by the worker keeps
// the progress counters the handler reported.
func (f *trackerFactoryImpl) ForOperation(operation task.Operation, batchID int64) handler.Tracker {
	status := task.NewStatus(operation, batchID)
	if existing, err := f.statuses.Get(context.Background(), status.ID()); err == nil {
		status = existing
	}
	tracker := tracking.NewTracker(status, f.logger)
	for _, reporter := range f.reporters {
		tracker.Subscribe(reporter)
	}
	return tracker
}

// workerTrackerAdapter adapts trackerFactoryImpl to service.WorkerTrackerFactory.
type workerTrackerAdapter struct {
	factory *trackerFactoryImpl
}

// ForOperation creates a WorkerTracker for the given operation.
func (a *workerTrackerAdapter) ForOperation(operation task.Operation, batchID int64) service.WorkerTracker {
	return a.factory.ForOperation(operation, batchID)
}
