package task

import (
	"fmt"
	"time"
)

// ReportingState represents the state of task reporting.
type ReportingState string

// ReportingState values.
const (
	ReportingStateStarted    ReportingState = "started"
	ReportingStateInProgress ReportingState = "in_progress"
	ReportingStateCompleted  ReportingState = "completed"
	ReportingStateFailed     ReportingState = "failed"
	ReportingStateSkipped    ReportingState = "skipped"
)

// IsTerminal returns true if the state represents a terminal (final) state.
func (s ReportingState) IsTerminal() bool {
	return s == ReportingStateCompleted ||
		s == ReportingStateFailed ||
		s == ReportingStateSkipped
}

// Status represents the progress of a batch operation. Immutable: mutations
// return copies.
type Status struct {
	id           string
	state        ReportingState
	operation    Operation
	batchID      int64
	message      string
	total        int
	current      int
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewStatus creates a started Status for the given operation and batch.
func NewStatus(operation Operation, batchID int64) Status {
	now := time.Now().UTC()
	return Status{
		id:        createStatusID(operation, batchID),
		operation: operation,
		batchID:   batchID,
		state:     ReportingStateStarted,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the status ID.
func (s Status) ID() string { return s.id }

// State returns the current state.
func (s Status) State() ReportingState { return s.state }

// Operation returns the tracked operation.
func (s Status) Operation() Operation { return s.operation }

// BatchID returns the batch this status tracks.
func (s Status) BatchID() int64 { return s.batchID }

// Message returns the status message.
func (s Status) Message() string { return s.message }

// Total returns the total count for progress tracking.
func (s Status) Total() int { return s.total }

// Current returns the current count for progress tracking.
func (s Status) Current() int { return s.current }

// Error returns the error message if failed.
func (s Status) Error() string { return s.errorMessage }

// CreatedAt returns when the status was created.
func (s Status) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the status was last updated.
func (s Status) UpdatedAt() time.Time { return s.updatedAt }

// CompletionPercent calculates the completion percentage, clamped to
// [0, 100].
func (s Status) CompletionPercent() float64 {
	if s.total == 0 {
		return 0.0
	}
	percent := float64(s.current) / float64(s.total) * 100.0
	if percent < 0 {
		return 0.0
	}
	if percent > 100 {
		return 100.0
	}
	return percent
}

// Skip marks the operation as skipped with the given message.
func (s Status) Skip(message string) Status {
	s.state = ReportingStateSkipped
	s.message = message
	s.updatedAt = time.Now().UTC()
	return s
}

// Fail marks the operation as failed with the given error message.
func (s Status) Fail(errorMsg string) Status {
	s.state = ReportingStateFailed
	s.errorMessage = errorMsg
	s.updatedAt = time.Now().UTC()
	return s
}

// SetTotal sets the total count for progress tracking.
func (s Status) SetTotal(total int) Status {
	s.total = total
	s.updatedAt = time.Now().UTC()
	return s
}

// SetCurrent sets the current progress and optionally updates the message.
func (s Status) SetCurrent(current int, message string) Status {
	s.state = ReportingStateInProgress
	s.current = current
	if message != "" {
		s.message = message
	}
	s.updatedAt = time.Now().UTC()
	return s
}

// Complete marks the operation as completed.
// If already in a terminal state, no change is made.
func (s Status) Complete() Status {
	if s.state.IsTerminal() {
		return s
	}
	s.state = ReportingStateCompleted
	s.current = s.total // Ensure progress shows 100%
	s.updatedAt = time.Now().UTC()
	return s
}

// createStatusID creates a unique ID for a status.
// Format: "batches-{batch_id}-{operation}" or just "{operation}".
func createStatusID(operation Operation, batchID int64) string {
	if batchID == 0 {
		return string(operation)
	}
	return fmt.Sprintf("batches-%d-%s", batchID, operation)
}
