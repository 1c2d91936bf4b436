package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/infrastructure/api"
	"github.com/firmint/firmint/internal/config"
	"github.com/firmint/firmint/internal/log"
)

// shutdownTimeout bounds how long in-flight requests may run after SIGTERM.
const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                    Server host to bind to (default: 0.0.0.0)
  PORT                    Server port to listen on (default: 8080)
  LOG_LEVEL               Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT              Log format: pretty, json (default: pretty)
  API_KEYS                Comma-separated API keys; when set, mutating
                          endpoints require a valid X-API-KEY header
  CORS_ORIGINS            Comma-separated list of allowed CORS origins

  GROQ_API_KEY            Groq API key (primary completion provider)
  GROQ_MODEL              Groq model (default: llama3-8b-8192)
  GROQ_BASE_URL           OpenAI-compatible base URL
                          (default: https://api.groq.com/openai/v1)
  GROQ_TIMEOUT            Request timeout in seconds (default: 30)

  GEMINI_API_KEY          Google Gemini API key (fallback provider)
  GEMINI_MODEL            Gemini model (default: gemini-1.5-flash)
  GEMINI_TIMEOUT          Request timeout in seconds (default: 30)

  ENRICHER_MAX_TOKENS     Completion token cap per company (default: 1000)
  ENRICHER_TEMPERATURE    Sampling temperature (default: 0.3)
  ENRICHER_REQUEST_RATE   Provider calls per second (default: 2)

At least one of GROQ_API_KEY or GEMINI_API_KEY must be set. With both, Groq
is primary and Gemini takes over per company when Groq fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	// Load configuration
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Apply command line overrides (flags take precedence over env vars)
	cfg = applyServeOverrides(cfg, host, port)

	addr := cfg.Addr()

	// Setup logger
	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	// Build firmint client options
	opts := append(clientOptions(cfg), firmint.WithLogger(slogger))
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, firmint.WithAPIKeys(keys...))
	}

	// Create firmint client and log settings
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting firmint", attrs...)

	client, err := firmint.New(opts...)
	if err != nil {
		return fmt.Errorf("create firmint client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close firmint client", slog.Any("error", err))
		}
	}()

	// Create API server with the client's services
	apiServer := api.NewAPIServer(client, cfg.APIKeys(), cfg.CORSOrigins())
	router := apiServer.Router()
	apiServer.MountRoutes()

	// Health check endpoints
	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)

	// Root endpoint with API info
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"firmint","version":"%s","docs":"/docs"}`, version)
	})

	// Documentation routes
	docsRouter := apiServer.DocsRouter("/docs/openapi.yaml")
	router.Mount("/docs", docsRouter.Routes())

	// Create standalone server for custom router; the server applies the
	// request ID, recoverer, logging, and CORS middleware.
	server := api.NewServer(addr, cfg.CORSOrigins(), slogger)
	server.Router().Mount("/", router)

	// Run until SIGINT/SIGTERM; shut the server down gracefully, then let the
	// deferred client.Close stop the background worker.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slogger.Info("starting server", slog.String("addr", addr))
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
