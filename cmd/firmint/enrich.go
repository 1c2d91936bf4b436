package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/enrichment"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/infrastructure/csvio"
	"github.com/firmint/firmint/internal/log"
)

func enrichCmd() *cobra.Command {
	var (
		envFile string
		input   string
		output  string
		sample  bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich a CSV of company names from the command line",
		Long: `Enrich a CSV of company names from the command line.

Reads the company_name column from the input CSV, asks the configured
completion provider about each company, and writes the enriched records
(website, industry, company_size, hq_location) to the output CSV. Companies
the provider cannot resolve are written with a failed status and an error
message; one bad company never aborts the run.

Provider configuration comes from the environment (see 'firmint serve --help'
for the full list): set GROQ_API_KEY and/or GEMINI_API_KEY.

With --sample, a sample input CSV is created at the --input path when no
file exists there yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(envFile, input, output, sample)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&input, "input", "sample_companies.csv", "Input CSV file with a company_name column")
	cmd.Flags().StringVar(&output, "output", "enriched_companies.csv", "Output CSV file for enriched records")
	cmd.Flags().BoolVar(&sample, "sample", false, "Create a sample input CSV at the --input path if missing")

	return cmd
}

func runEnrich(envFile, input, output string, sample bool) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	if sample {
		if err := ensureSampleCSV(input, slogger); err != nil {
			return err
		}
	}

	names, err := readCompanyNames(input)
	if err != nil {
		return err
	}
	slogger.Info("input loaded",
		slog.String("file", input),
		slog.Int("companies", len(names)),
	)

	opts := append(clientOptions(cfg), firmint.WithLogger(slogger))
	client, err := firmint.New(opts...)
	if err != nil {
		return fmt.Errorf("create firmint client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close firmint client", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	records, err := client.Enrich(ctx, names,
		domainservice.WithEnrichProgress(func(completed, total int) {
			slogger.Info("company processed",
				slog.Int("completed", completed),
				slog.Int("total", total),
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	if err := writeRecords(output, records); err != nil {
		return err
	}

	stats := service.StatsForRecords(records)
	slogger.Info("enrichment finished",
		slog.Int("total", stats.Total),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.String("success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate())),
		slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
		slog.String("output", output),
	)
	return nil
}

// ensureSampleCSV writes the embedded sample input to path unless a file is
// already there.
func ensureSampleCSV(path string, logger *slog.Logger) error {
	if _, err := os.Stat(path); err == nil {
		logger.Info("sample input already exists", slog.String("file", path))
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sample directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(csvio.SampleCSV()), 0o644); err != nil {
		return fmt.Errorf("write sample csv: %w", err)
	}
	logger.Info("sample input created", slog.String("file", path))
	return nil
}

func readCompanyNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	names, err := csvio.ReadCompanyNames(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}

func writeRecords(path string, records []enrichment.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := csvio.WriteRecords(f, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
