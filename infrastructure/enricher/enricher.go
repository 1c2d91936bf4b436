// Package enricher turns company names into structured enrichment records
// using an AI completion provider. One completion call is made per company;
// the response is parsed into the four guessed attributes.
package enricher

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/firmint/firmint/domain/enrichment"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/infrastructure/provider"
)

// Defaults for the enrichment engine.
const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3
	defaultRequestRate = 2 // provider calls per second
)

// errNoFields reports a completion that parsed to zero recognizable fields.
var errNoFields = errors.New("no recognizable fields in response")

// CompanyEnricher guesses company attributes from names, one completion call
// per company. Implements domainservice.Enricher.
type CompanyEnricher struct {
	generator   provider.TextGenerator
	maxTokens   int
	temperature float64
	limiter     *rate.Limiter
	log         *slog.Logger
}

// Option configures a CompanyEnricher.
type Option func(*CompanyEnricher)

// WithMaxTokens bounds the completion length requested per company.
func WithMaxTokens(n int) Option {
	return func(e *CompanyEnricher) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature for completions.
func WithTemperature(t float64) Option {
	return func(e *CompanyEnricher) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

// WithRequestRate caps provider calls per second, pacing consecutive calls
// within a batch.
func WithRequestRate(perSecond float64) Option {
	return func(e *CompanyEnricher) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *CompanyEnricher) {
		if log != nil {
			e.log = log
		}
	}
}

// NewCompanyEnricher creates an enrichment engine around a completion
// provider. All tuning arrives through options; the engine never reads the
// environment.
func NewCompanyEnricher(generator provider.TextGenerator, opts ...Option) *CompanyEnricher {
	e := &CompanyEnricher{
		generator:   generator,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		limiter:     rate.NewLimiter(rate.Limit(defaultRequestRate), 1),
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich processes the names sequentially in input order and returns exactly
// one record per non-blank name. A provider failure or an unparseable
// response fails that company's record and the batch continues; context
// cancellation is the only mid-batch abort and discards partial results.
// An input with no non-blank names returns domainservice.ErrNoInput.
func (e *CompanyEnricher) Enrich(ctx context.Context, names []string, opts ...domainservice.EnrichOption) ([]enrichment.Record, error) {
	cfg := domainservice.NewEnrichConfig(opts...)

	var filtered []string
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	if len(filtered) == 0 {
		return nil, domainservice.ErrNoInput
	}

	records := make([]enrichment.Record, 0, len(filtered))
	failures := 0

	for i, name := range filtered {
		if err := e.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		record, err := e.enrichOne(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Warn("company enrichment failed",
				"company", name,
				"error", err,
			)
			if cb := cfg.ItemError(); cb != nil {
				cb(name, err)
			}
			record = enrichment.NewFailedRecord(name, failureMessage(err))
			failures++
		}

		records = append(records, record)
		if cb := cfg.Progress(); cb != nil {
			cb(i+1, len(filtered))
		}
	}

	e.log.Info("enrichment complete",
		"total", len(filtered),
		"failed", failures,
	)
	return records, nil
}

func (e *CompanyEnricher) enrichOne(ctx context.Context, name string) (enrichment.Record, error) {
	messages := []provider.Message{
		provider.SystemMessage(systemPrompt),
		provider.UserMessage(BuildPrompt(name)),
	}

	req := provider.NewChatCompletionRequest(messages).
		WithMaxTokens(e.maxTokens).
		WithTemperature(e.temperature)

	resp, err := e.generator.ChatCompletion(ctx, req)
	if err != nil {
		return enrichment.Record{}, err
	}

	fields := ParseFields(resp.Content())
	if fields.IsEmpty() {
		return enrichment.Record{}, errNoFields
	}
	return enrichment.NewRecord(name, fields), nil
}

// failureMessage reduces an enrichment error to the short diagnostic stored
// on the failed record.
func failureMessage(err error) string {
	var provErr *provider.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Message()
	}
	return err.Error()
}

// Ensure CompanyEnricher implements domainservice.Enricher.
var _ domainservice.Enricher = (*CompanyEnricher)(nil)
