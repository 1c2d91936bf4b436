package task

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested task or status does not exist.
var ErrNotFound = errors.New("task not found")

// Store defines the interface for Task queue persistence.
type Store interface {
	// Save creates a new task or updates an existing one. Uses the dedup
	// key for conflict resolution - if a task with the same dedup key
	// exists, it is returned instead of creating a duplicate.
	Save(ctx context.Context, t Task) (Task, error)

	// Dequeue retrieves and removes the highest priority task, oldest
	// first within a priority. Returns the task and true if one was found,
	// or zero-value and false if the queue is empty.
	Dequeue(ctx context.Context) (Task, bool, error)

	// FindPending retrieves pending tasks ordered like Dequeue.
	FindPending(ctx context.Context) ([]Task, error)

	// CountPending returns the number of pending tasks.
	CountPending(ctx context.Context) (int64, error)

	// Delete removes a task.
	Delete(ctx context.Context, t Task) error
}

// StatusStore defines the interface for Status persistence.
type StatusStore interface {
	// Save creates or updates a status, keyed by status ID.
	Save(ctx context.Context, status Status) (Status, error)

	// Get retrieves a status by ID.
	Get(ctx context.Context, id string) (Status, error)

	// FindByBatch retrieves the statuses tracking the given batch.
	FindByBatch(ctx context.Context, batchID int64) ([]Status, error)

	// DeleteByBatch removes the statuses tracking the given batch.
	DeleteByBatch(ctx context.Context, batchID int64) error
}
