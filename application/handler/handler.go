// Package handler provides task handlers for processing queued operations.
package handler

import (
	"context"
	"fmt"

	"github.com/firmint/firmint/domain/task"
)

// Tracker provides progress tracking for task execution.
type Tracker interface {
	SetTotal(ctx context.Context, total int)
	SetCurrent(ctx context.Context, current int, message string)
	Skip(ctx context.Context, message string)
	Fail(ctx context.Context, message string)
	Complete(ctx context.Context)
}

// TrackerFactory creates trackers for progress reporting.
type TrackerFactory interface {
	ForOperation(operation task.Operation, batchID int64) Tracker
}

// Handler defines the interface for task operation handlers.
type Handler interface {
	Execute(ctx context.Context, payload map[string]any) error
}

// ExtractInt64 extracts an int64 value from the payload.
func ExtractInt64(payload map[string]any, key string) (int64, error) {
	val, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("missing required field: %s", key)
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("invalid type for %s: %T", key, val)
	}
}

// ExtractBatchID extracts the batch_id field every enrichment payload carries.
func ExtractBatchID(payload map[string]any) (int64, error) {
	return ExtractInt64(payload, "batch_id")
}
