// Package enrichment provides the task handler that runs batch enrichments.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firmint/firmint/application/handler"
	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/batch"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/domain/task"
)

// EnrichBatch handles the firmint.batch.enrich operation.
type EnrichBatch struct {
	batches        *service.Batches
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewEnrichBatch creates a new EnrichBatch handler.
func NewEnrichBatch(batches *service.Batches, trackerFactory handler.TrackerFactory, logger *slog.Logger) (*EnrichBatch, error) {
	if batches == nil {
		return nil, fmt.Errorf("NewEnrichBatch: nil Batches")
	}
	if trackerFactory == nil {
		return nil, fmt.Errorf("NewEnrichBatch: nil TrackerFactory")
	}
	return &EnrichBatch{
		batches:        batches,
		trackerFactory: trackerFactory,
		logger:         logger,
	}, nil
}

// Execute enriches every company in the batch. Per-company failures are
// already folded into records by the engine; an error return here means the
// batch as a whole could not run.
func (h *EnrichBatch) Execute(ctx context.Context, payload map[string]any) error {
	batchID, err := handler.ExtractBatchID(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(task.OperationEnrichBatch, batchID)

	b, err := h.batches.Get(ctx, batchID)
	if errors.Is(err, batch.ErrNotFound) {
		// Deleted between enqueue and dequeue.
		tracker.Skip(ctx, "batch deleted before enrichment")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get batch: %w", err)
	}

	if b.State().IsTerminal() {
		tracker.Skip(ctx, "batch already enriched")
		return nil
	}

	tracker.SetTotal(ctx, len(b.Names()))

	_, err = h.batches.Run(ctx, batchID,
		domainservice.WithEnrichProgress(func(completed, total int) {
			tracker.SetCurrent(ctx, completed, fmt.Sprintf("enriched %d of %d companies", completed, total))
		}),
		domainservice.WithItemError(func(name string, itemErr error) {
			h.logger.Warn("company enrichment failed",
				slog.Int64("batch_id", batchID),
				slog.String("company", name),
				slog.String("error", itemErr.Error()),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("enrich batch %d: %w", batchID, err)
	}

	return nil
}

// Ensure EnrichBatch implements handler.Handler.
var _ handler.Handler = (*EnrichBatch)(nil)
