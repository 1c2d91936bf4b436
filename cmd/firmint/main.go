// Package main is the entry point for the firmint CLI.
//
//	@title						Firmint API
//	@version					1.0
//	@description				Company lead enrichment with LLM-guessed firmographics
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-KEY
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firmint/firmint/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmint",
		Short: "Firmint company enrichment server",
		Long:  `Firmint takes plain company names and enriches them into structured lead records (website, industry, company size, HQ location) using AI completion providers.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(enrichCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
