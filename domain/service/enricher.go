// Package service defines domain service contracts.
package service

import (
	"context"
	"errors"

	"github.com/firmint/firmint/domain/enrichment"
)

// ErrNoInput indicates an enrichment call with no usable company names.
// It is surfaced before any provider call is made.
var ErrNoInput = errors.New("no company names to enrich")

// Enricher turns an ordered sequence of company names into an equally
// ordered sequence of enrichment records, one per non-blank name, using an
// AI completion provider.
type Enricher interface {
	// Enrich processes the names in input order. Per-company provider
	// failures become failed records and never abort the batch; the only
	// mid-batch error is context cancellation. An input with no non-blank
	// names returns ErrNoInput.
	Enrich(ctx context.Context, names []string, opts ...EnrichOption) ([]enrichment.Record, error)
}
