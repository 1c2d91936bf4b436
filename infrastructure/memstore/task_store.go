package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/firmint/firmint/domain/task"
)

// TaskStore is an in-memory implementation of task.Store. Existence implies
// pending; dequeued tasks leave the store.
type TaskStore struct {
	mu       sync.RWMutex
	tasks    map[int64]task.Task
	byDedup  map[string]int64
	sequence int64
}

// NewTaskStore creates an empty task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:   make(map[int64]task.Task),
		byDedup: make(map[string]int64),
	}
}

// Save enqueues a task. When a task with the same dedup key is already
// queued, the existing task is returned and nothing new is enqueued.
func (s *TaskStore) Save(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byDedup[t.DedupKey()]; ok {
		return s.tasks[existingID], nil
	}

	now := time.Now().UTC()
	s.sequence++
	saved := t.WithID(s.sequence).WithTimestamps(now, now)
	s.tasks[saved.ID()] = saved
	s.byDedup[saved.DedupKey()] = saved.ID()
	return saved, nil
}

// Dequeue retrieves and removes the next task: highest priority first,
// oldest first within a priority.
func (s *TaskStore) Dequeue(_ context.Context) (task.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) == 0 {
		return task.Task{}, false, nil
	}

	var next task.Task
	found := false
	for _, t := range s.tasks {
		if !found || before(t, next) {
			next = t
			found = true
		}
	}

	delete(s.byDedup, next.DedupKey())
	delete(s.tasks, next.ID())
	return next, true, nil
}

// FindPending returns the queued tasks in dequeue order.
func (s *TaskStore) FindPending(_ context.Context) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		pending = append(pending, t)
	}
	sort.Slice(pending, func(i, j int) bool {
		return before(pending[i], pending[j])
	})
	return pending, nil
}

// CountPending returns the number of queued tasks.
func (s *TaskStore) CountPending(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tasks)), nil
}

// Delete removes a task. Deleting an absent task is a no-op.
func (s *TaskStore) Delete(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byDedup, t.DedupKey())
	delete(s.tasks, t.ID())
	return nil
}

// before reports whether a dequeues ahead of b: higher priority first, then
// older, then lower ID for determinism on equal timestamps.
func before(a, b task.Task) bool {
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().Before(b.CreatedAt())
	}
	return a.ID() < b.ID()
}

// Ensure TaskStore implements task.Store.
var _ task.Store = (*TaskStore)(nil)
