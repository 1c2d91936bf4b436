package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firmint/firmint/domain/task"
)

// TaskListParams configures task listing.
type TaskListParams struct {
	Operation *task.Operation
	Limit     int
	Offset    int
}

// Queue provides the main interface for enqueuing and managing tasks.
type Queue struct {
	store  task.Store
	logger *slog.Logger
}

// NewQueue creates a new queue service.
func NewQueue(store task.Store, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
	}
}

// Enqueue adds a task to the queue.
// If a task with the same dedup_key exists, it is reused instead.
func (s *Queue) Enqueue(ctx context.Context, t task.Task) error {
	_, err := s.store.Save(ctx, t)
	if err != nil {
		return err
	}

	s.logger.Debug("task enqueued",
		slog.String("dedup_key", t.DedupKey()),
		slog.String("operation", t.Operation().String()),
	)
	return nil
}

// List returns pending tasks matching the given params.
// Tasks are sorted by priority (highest first) then by created_at (oldest first).
func (s *Queue) List(ctx context.Context, params *TaskListParams) ([]task.Task, error) {
	tasks, err := s.store.FindPending(ctx)
	if err != nil {
		return nil, err
	}

	if params != nil && params.Operation != nil {
		filtered := make([]task.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Operation() == *params.Operation {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if params != nil && params.Offset > 0 {
		if params.Offset >= len(tasks) {
			tasks = nil
		} else {
			tasks = tasks[params.Offset:]
		}
	}
	if params != nil && params.Limit > 0 && params.Limit < len(tasks) {
		tasks = tasks[:params.Limit]
	}

	return tasks, nil
}

// Count returns the total number of pending tasks.
func (s *Queue) Count(ctx context.Context) (int64, error) {
	return s.store.CountPending(ctx)
}

// DrainForBatch removes all pending tasks whose payload references the given
// batch. This prevents a queued enrichment from resurrecting a batch that is
// being deleted.
func (s *Queue) DrainForBatch(ctx context.Context, batchID int64) (int, error) {
	tasks, err := s.store.FindPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("find pending tasks: %w", err)
	}

	removed := 0
	for _, t := range tasks {
		id, ok := t.BatchID()
		if !ok || id != batchID {
			continue
		}
		if err := s.store.Delete(ctx, t); err != nil {
			return removed, fmt.Errorf("delete task %d: %w", t.ID(), err)
		}
		removed++
	}
	return removed, nil
}
