// Package firmint provides a library for company lead enrichment.
//
// Firmint takes plain company names, asks an AI completion provider what it
// knows about each one, and produces structured records (website, industry,
// company size, HQ location). Batches run on a background worker; per-company
// failures are recorded without aborting the batch.
//
// Basic usage:
//
//	client, err := firmint.New(
//	    firmint.WithGroq(os.Getenv("GROQ_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Enqueue a batch for background enrichment
//	b, err := client.Batches.Create(ctx, "api", []string{"OpenAI", "Zoho"})
//
//	// Or enrich synchronously
//	records, err := client.Enrich(ctx, []string{"OpenAI", "Zoho"})
//
//	// Export results once the batch is terminal
//	csvBytes, err := client.Batches.ExportCSV(ctx, b.ID())
package firmint

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/domain/enrichment"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/enricher"
	"github.com/firmint/firmint/infrastructure/memstore"
	"github.com/firmint/firmint/infrastructure/provider"
	"github.com/firmint/firmint/infrastructure/tracking"
	"github.com/firmint/firmint/internal/config"
)

// Client is the main entry point for the firmint library.
// The background worker starts automatically on creation.
//
// Access resources via struct fields:
//
//	client.Batches.Create(ctx, "api", names)
//	client.Batches.Get(ctx, id)
//	client.Tracking.ForBatch(ctx, id)
type Client struct {
	// Public resource fields (direct service access)
	Batches  *service.Batches
	Tasks    *service.Queue
	Tracking *service.Tracking

	// Stores
	batchStore  batch.Store
	taskStore   task.Store
	statusStore task.StatusStore

	// Enrichment engine
	enricher domainservice.Enricher

	// Application services (internal only)
	queue    *service.Queue
	worker   *service.Worker
	registry *service.Registry

	closers []io.Closer

	logger  *slog.Logger
	apiKeys []string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
// The background worker is started automatically.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	// Set up logger
	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	ctx := context.Background()

	// Build the completion provider chain
	generator, providerCloser, err := buildTextGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if providerCloser != nil {
		cfg.closers = append(cfg.closers, providerCloser)
	}

	// Create stores
	batchStore := memstore.NewBatchStore()
	taskStore := memstore.NewTaskStore()
	statusStore := memstore.NewStatusStore()

	// Create application services
	registry := service.NewRegistry()
	queue := service.NewQueue(taskStore, logger)

	// Create tracker factory for progress reporting.
	// Wrap reporters in cooldowns to limit store writes and log output to at
	// most once per second per status ID during high-frequency updates.
	storeCooldown := tracking.NewCooldown(tracking.NewStoreReporter(statusStore, logger), time.Second)
	logCooldown := tracking.NewCooldown(tracking.NewLoggingReporter(logger), time.Second)
	reporters := []tracking.Reporter{storeCooldown, logCooldown}
	trackerFactory := &trackerFactoryImpl{
		statuses:  statusStore,
		reporters: reporters,
		logger:    logger,
	}
	worker := service.NewWorker(taskStore, registry, &workerTrackerAdapter{trackerFactory}, logger)
	if cfg.workerPollPeriod > 0 {
		worker.WithPollPeriod(cfg.workerPollPeriod)
	}

	// Create the enrichment engine
	engineOpts := []enricher.Option{enricher.WithLogger(logger)}
	if cfg.maxTokens > 0 {
		engineOpts = append(engineOpts, enricher.WithMaxTokens(cfg.maxTokens))
	}
	if cfg.temperature >= 0 {
		engineOpts = append(engineOpts, enricher.WithTemperature(cfg.temperature))
	}
	if cfg.requestRate > 0 {
		engineOpts = append(engineOpts, enricher.WithRequestRate(cfg.requestRate))
	}
	engine := enricher.NewCompanyEnricher(generator, engineOpts...)

	// Register cooldowns for cleanup on close so pending statuses are flushed.
	cfg.closers = append(cfg.closers, storeCooldown, logCooldown)

	client := &Client{
		batchStore:  batchStore,
		taskStore:   taskStore,
		statusStore: statusStore,
		enricher:    engine,
		queue:       queue,
		worker:      worker,
		registry:    registry,
		closers:     cfg.closers,
		logger:      logger,
		apiKeys:     cfg.apiKeys,
	}

	// Initialize service fields directly
	client.Batches = service.NewBatches(batchStore, statusStore, queue, engine, logger)
	client.Tasks = queue
	client.Tracking = service.NewTracking(statusStore, logger)

	// Register task handlers
	if err := client.registerHandlers(trackerFactory); err != nil {
		return nil, err
	}

	// Start the background worker
	worker.Start(ctx)

	return client, nil
}

// buildTextGenerator assembles the completion provider from the configured
// endpoints. With both Groq and Gemini configured, Groq is primary and Gemini
// the fallback. Returns ErrNoProvider when nothing is configured.
func buildTextGenerator(ctx context.Context, cfg *clientConfig, logger *slog.Logger) (provider.TextGenerator, io.Closer, error) {
	if cfg.textGenerator != nil {
		return cfg.textGenerator, nil, nil
	}

	var groq, gemini provider.TextProvider

	if cfg.groq != nil {
		p, err := provider.NewOpenAIProviderFromConfig(*cfg.groq)
		if err != nil {
			return nil, nil, err
		}
		groq = p
	}
	if cfg.gemini != nil {
		p, err := provider.NewGeminiProviderFromConfig(ctx, *cfg.gemini)
		if err != nil {
			if groq != nil {
				_ = groq.Close()
			}
			return nil, nil, err
		}
		gemini = p
	}

	switch {
	case groq != nil && gemini != nil:
		f := provider.NewFailover(groq, gemini, logger)
		logger.Info("completion providers configured",
			slog.String("primary", groq.Name()),
			slog.String("fallback", gemini.Name()),
		)
		return f, f, nil
	case groq != nil:
		logger.Info("completion provider configured", slog.String("provider", groq.Name()))
		return groq, groq, nil
	case gemini != nil:
		logger.Info("completion provider configured", slog.String("provider", gemini.Name()))
		return gemini, gemini, nil
	default:
		return nil, nil, ErrNoProvider
	}
}

// Close releases all resources and stops the background worker.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stop the worker; waits for the in-flight task to finish.
	c.worker.Stop()

	// Close registered resources (providers, cooldown reporters)
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	c.logger.Info("firmint client closed")
	return nil
}

// Enrich runs the enrichment engine synchronously, without creating a batch.
// Results are returned in input order and are not persisted.
func (c *Client) Enrich(ctx context.Context, names []string, opts ...domainservice.EnrichOption) ([]enrichment.Record, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.enricher.Enrich(ctx, names, opts...)
}

// WorkerIdle reports whether the background worker has no queued or
// in-flight tasks.
func (c *Client) WorkerIdle() bool {
	return !c.worker.Busy()
}

// APIKeys returns the keys configured for HTTP API write protection.
func (c *Client) APIKeys() []string {
	return c.apiKeys
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}
