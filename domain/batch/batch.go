// Package batch provides domain types for uploaded company-name batches.
package batch

import (
	"time"

	"github.com/firmint/firmint/domain/enrichment"
)

// State represents the lifecycle state of a batch.
type State string

// State values.
const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal returns true if the state represents a terminal (final) state.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Batch is one uploaded set of company names and, once enriched, their
// records. This is an immutable value object identified by its ID once
// saved; mutations return copies.
type Batch struct {
	id           int64
	source       string
	names        []string
	records      []enrichment.Record
	state        State
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a pending batch for the given source label (originating
// filename, or "api" for direct submissions) and company names.
func New(source string, names []string) Batch {
	now := time.Now().UTC()
	return Batch{
		source:    source,
		names:     copyNames(names),
		state:     StatePending,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the batch identifier, 0 until first saved.
func (b Batch) ID() int64 { return b.id }

// Source returns the originating filename or submission label.
func (b Batch) Source() string { return b.source }

// Names returns a copy of the input company names.
func (b Batch) Names() []string { return copyNames(b.names) }

// Records returns a copy of the enrichment records, empty until the batch
// has run.
func (b Batch) Records() []enrichment.Record {
	records := make([]enrichment.Record, len(b.records))
	copy(records, b.records)
	return records
}

// State returns the batch lifecycle state.
func (b Batch) State() State { return b.state }

// ErrorMessage returns the batch-level failure diagnostic, set only when the
// state is StateFailed. Per-company failures live on the records instead.
func (b Batch) ErrorMessage() string { return b.errorMessage }

// CreatedAt returns when the batch was created.
func (b Batch) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns when the batch was last updated.
func (b Batch) UpdatedAt() time.Time { return b.updatedAt }

// RecordCounts returns how many records succeeded and failed.
func (b Batch) RecordCounts() (succeeded, failed int) {
	for _, r := range b.records {
		if r.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// WithID returns a copy of the batch with the given ID.
func (b Batch) WithID(id int64) Batch {
	b.id = id
	return b
}

// WithState returns a copy of the batch in the given state.
func (b Batch) WithState(state State) Batch {
	b.state = state
	b.updatedAt = time.Now().UTC()
	return b
}

// WithRecords returns a completed copy of the batch carrying the records.
func (b Batch) WithRecords(records []enrichment.Record) Batch {
	b.records = make([]enrichment.Record, len(records))
	copy(b.records, records)
	b.state = StateCompleted
	b.updatedAt = time.Now().UTC()
	return b
}

// WithError returns a failed copy of the batch carrying the diagnostic.
func (b Batch) WithError(message string) Batch {
	b.state = StateFailed
	b.errorMessage = message
	b.updatedAt = time.Now().UTC()
	return b
}

func copyNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
