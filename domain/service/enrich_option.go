package service

// EnrichProgress is called after each company completes during enrichment.
// completed is the running total of companies processed so far;
// total is the overall number of companies to enrich.
type EnrichProgress func(completed, total int)

// ItemError is called when an individual company fails during enrichment.
// The failure is already captured in that company's record; this callback
// exists so callers can log each upstream error as it occurs.
type ItemError func(companyName string, err error)

// EnrichOption configures the behaviour of an Enrich call.
type EnrichOption func(*EnrichConfig)

// EnrichConfig holds the resolved configuration for an Enrich call.
type EnrichConfig struct {
	progress  EnrichProgress
	itemError ItemError
}

// NewEnrichConfig applies all options and returns the resolved config.
func NewEnrichConfig(opts ...EnrichOption) EnrichConfig {
	var cfg EnrichConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Progress returns the progress callback, or nil if none was set.
func (c EnrichConfig) Progress() EnrichProgress { return c.progress }

// ItemError returns the per-company error callback, or nil if none was set.
func (c EnrichConfig) ItemError() ItemError { return c.itemError }

// WithEnrichProgress registers a callback that is invoked after each company
// produces its record.
func WithEnrichProgress(fn EnrichProgress) EnrichOption {
	return func(c *EnrichConfig) { c.progress = fn }
}

// WithItemError registers a callback that is invoked when an individual
// company's provider call fails.
func WithItemError(fn ItemError) EnrichOption {
	return func(c *EnrichConfig) { c.itemError = fn }
}
