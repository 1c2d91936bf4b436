package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/internal/log"
	"github.com/firmint/firmint/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This allows AI assistants to enrich companies and inspect batches through
the enrich_company and get_batch tools. Configuration is loaded from
environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Log to stderr; stdout carries the MCP protocol stream.
	logger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
	slogger := logger.Slog()

	slogger.Info("starting MCP server", slog.String("version", version))

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

	mcpServer := mcp.NewServer(client, version, slogger)

	return mcpServer.ServeStdio()
}
