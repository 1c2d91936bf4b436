package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/domain/enrichment"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/csvio"
)

// BatchStats summarizes the outcome of a finished batch.
type BatchStats struct {
	Total     int
	Succeeded int
	Failed    int
}

// SuccessRate returns the percentage of records that enriched cleanly,
// in [0, 100]. A batch with no records has a rate of 0.
func (st BatchStats) SuccessRate() float64 {
	if st.Total == 0 {
		return 0.0
	}
	return float64(st.Succeeded) / float64(st.Total) * 100.0
}

// StatsForRecords computes stats over a record slice.
func StatsForRecords(records []enrichment.Record) BatchStats {
	st := BatchStats{Total: len(records)}
	for _, r := range records {
		if r.Failed() {
			st.Failed++
		} else {
			st.Succeeded++
		}
	}
	return st
}

// Batches provides batch lifecycle operations: submission, queueing,
// synchronous runs, queries, and CSV export.
type Batches struct {
	store    batch.Store
	statuses task.StatusStore
	queue    *Queue
	enricher domainservice.Enricher
	logger   *slog.Logger
}

// NewBatches creates a new Batches service.
func NewBatches(store batch.Store, statuses task.StatusStore, queue *Queue, enricher domainservice.Enricher, logger *slog.Logger) *Batches {
	return &Batches{
		store:    store,
		statuses: statuses,
		queue:    queue,
		enricher: enricher,
		logger:   logger,
	}
}

// Create validates the company names, stores a pending batch, and queues it
// for enrichment. Blank names are dropped up front; if nothing usable
// remains the batch is rejected with ErrNoInput before any task is queued.
func (s *Batches) Create(ctx context.Context, source string, names []string) (batch.Batch, error) {
	usable := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			usable = append(usable, trimmed)
		}
	}
	if len(usable) == 0 {
		return batch.Batch{}, domainservice.ErrNoInput
	}

	saved, err := s.store.Save(ctx, batch.New(source, usable))
	if err != nil {
		return batch.Batch{}, fmt.Errorf("save batch: %w", err)
	}

	payload := map[string]any{"batch_id": saved.ID()}
	t := task.NewTask(task.OperationEnrichBatch, task.PriorityUserInitiated, payload)
	if err := s.queue.Enqueue(ctx, t); err != nil {
		return batch.Batch{}, fmt.Errorf("enqueue enrichment: %w", err)
	}

	s.logger.Info("batch created",
		slog.Int64("batch_id", saved.ID()),
		slog.String("source", saved.Source()),
		slog.Int("companies", len(usable)),
	)

	return saved, nil
}

// CreateFromCSV reads company names from a CSV stream and creates a batch.
// The source label is the originating filename.
func (s *Batches) CreateFromCSV(ctx context.Context, source string, r io.Reader) (batch.Batch, error) {
	names, err := csvio.ReadCompanyNames(r)
	if err != nil {
		return batch.Batch{}, err
	}
	return s.Create(ctx, source, names)
}

// Run executes the enrichment for a stored batch synchronously: marks it
// running, enriches every name, and saves the outcome. The returned batch
// carries the records on success or the failure diagnostic otherwise.
// Options pass through to the enricher so callers can observe progress.
func (s *Batches) Run(ctx context.Context, id int64, opts ...domainservice.EnrichOption) (batch.Batch, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return batch.Batch{}, fmt.Errorf("get batch: %w", err)
	}

	running, err := s.store.Save(ctx, b.WithState(batch.StateRunning))
	if err != nil {
		return batch.Batch{}, fmt.Errorf("mark running: %w", err)
	}

	records, err := s.enricher.Enrich(ctx, running.Names(), opts...)
	if err != nil {
		failed, saveErr := s.store.Save(ctx, running.WithError(err.Error()))
		if saveErr != nil {
			return batch.Batch{}, fmt.Errorf("mark failed: %w", saveErr)
		}
		return failed, fmt.Errorf("enrich batch %d: %w", id, err)
	}

	completed, err := s.store.Save(ctx, running.WithRecords(records))
	if err != nil {
		return batch.Batch{}, fmt.Errorf("save records: %w", err)
	}

	succeeded, failed := completed.RecordCounts()
	s.logger.Info("batch enriched",
		slog.Int64("batch_id", completed.ID()),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)

	return completed, nil
}

// List returns batches ordered by creation time (newest first) and the total
// count for pagination.
func (s *Batches) List(ctx context.Context, limit, offset int) ([]batch.Batch, int, error) {
	return s.store.List(ctx, limit, offset)
}

// Get retrieves a batch by ID.
func (s *Batches) Get(ctx context.Context, id int64) (batch.Batch, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a batch, drains any pending enrichment task for it, and
// clears its tracking statuses.
func (s *Batches) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return fmt.Errorf("get batch: %w", err)
	}

	drained, err := s.queue.DrainForBatch(ctx, id)
	if err != nil {
		return fmt.Errorf("drain queue: %w", err)
	}
	if err := s.statuses.DeleteByBatch(ctx, id); err != nil {
		return fmt.Errorf("delete statuses: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}

	s.logger.Info("batch deleted",
		slog.Int64("batch_id", id),
		slog.Int("drained_tasks", drained),
	)
	return nil
}

// Records returns the enrichment records of a batch, empty until it has run.
func (s *Batches) Records(ctx context.Context, id int64) ([]enrichment.Record, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Records(), nil
}

// ExportCSV renders a finished batch as a CSV document. Batches that have
// not reached a terminal state return ErrBatchNotReady.
func (s *Batches) ExportCSV(ctx context.Context, id int64) ([]byte, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.State().IsTerminal() {
		return nil, fmt.Errorf("batch %d is %s: %w", id, b.State(), ErrBatchNotReady)
	}
	return csvio.MarshalRecords(b.Records())
}

// Stats summarizes the record outcomes of a batch.
func (s *Batches) Stats(ctx context.Context, id int64) (BatchStats, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return BatchStats{}, err
	}
	return StatsForRecords(b.Records()), nil
}
