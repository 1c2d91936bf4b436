package tracking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/firmint/firmint/domain/task"
)

// Tracker wraps a Status and propagates every change to its subscribers.
// All methods are safe for concurrent use.
type Tracker struct {
	status      task.Status
	subscribers []Reporter
	logger      *slog.Logger
	mu          sync.RWMutex
}

// NewTracker creates a tracker wrapping the given Status.
func NewTracker(status task.Status, logger *slog.Logger) *Tracker {
	return &Tracker{
		status: status,
		logger: logger,
	}
}

// TrackerForBatch creates a tracker for one operation on one batch.
func TrackerForBatch(operation task.Operation, batchID int64, logger *slog.Logger) *Tracker {
	return NewTracker(task.NewStatus(operation, batchID), logger)
}

// Status returns a copy of the current status.
func (t *Tracker) Status() task.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Subscribe adds a reporter to receive status change notifications.
func (t *Tracker) Subscribe(reporter Reporter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, reporter)
}

// SetTotal sets the total count for progress reporting.
func (t *Tracker) SetTotal(ctx context.Context, total int) {
	t.apply(ctx, func(s task.Status) task.Status { return s.SetTotal(total) })
}

// SetCurrent updates the progress count and optionally the message.
func (t *Tracker) SetCurrent(ctx context.Context, current int, message string) {
	t.apply(ctx, func(s task.Status) task.Status { return s.SetCurrent(current, message) })
}

// Skip marks the operation as skipped with a reason.
func (t *Tracker) Skip(ctx context.Context, reason string) {
	t.apply(ctx, func(s task.Status) task.Status { return s.Skip(reason) })
}

// Fail marks the operation as failed with an error message.
func (t *Tracker) Fail(ctx context.Context, errMsg string) {
	t.apply(ctx, func(s task.Status) task.Status { return s.Fail(errMsg) })
}

// Complete marks the operation as completed.
func (t *Tracker) Complete(ctx context.Context) {
	t.apply(ctx, func(s task.Status) task.Status { return s.Complete() })
}

// Notify announces the current status without changing it. Use after setup
// so subscribers see the started state.
func (t *Tracker) Notify(ctx context.Context) {
	t.mu.RLock()
	status := t.status
	t.mu.RUnlock()

	t.notifySubscribers(ctx, status)
}

// apply performs a status transition under the lock, then notifies outside
// it so a slow subscriber cannot block further transitions.
func (t *Tracker) apply(ctx context.Context, transition func(task.Status) task.Status) {
	t.mu.Lock()
	t.status = transition(t.status)
	status := t.status
	t.mu.Unlock()

	t.notifySubscribers(ctx, status)
}

// notifySubscribers delivers the status to every reporter. A failing
// reporter is logged and skipped; the rest still get the update.
func (t *Tracker) notifySubscribers(ctx context.Context, status task.Status) {
	t.mu.RLock()
	subscribers := make([]Reporter, len(t.subscribers))
	copy(subscribers, t.subscribers)
	t.mu.RUnlock()

	for _, subscriber := range subscribers {
		if err := subscriber.OnChange(ctx, status); err != nil {
			t.logger.Error("failed to notify subscriber",
				slog.String("error", err.Error()),
				slog.String("operation", status.Operation().String()),
				slog.Int64("batch_id", status.BatchID()),
			)
		}
	}
}
