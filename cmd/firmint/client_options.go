package main

import (
	"github.com/firmint/firmint"
	"github.com/firmint/firmint/infrastructure/provider"
	"github.com/firmint/firmint/internal/config"
)

// clientOptions returns the firmint.Option slice derived from the shared
// parts of AppConfig: completion providers and engine tuning. Callers append
// entrypoint-specific options (logger, API keys) before passing the full
// slice to firmint.New.
func clientOptions(cfg config.AppConfig) []firmint.Option {
	var opts []firmint.Option

	opts = append(opts, providerOptions(cfg)...)
	opts = append(opts, engineOptions(cfg)...)

	return opts
}

// providerOptions returns the options for each configured completion
// endpoint. With both configured, Groq is primary and Gemini the fallback.
func providerOptions(cfg config.AppConfig) []firmint.Option {
	var opts []firmint.Option

	if groq := cfg.Groq(); groq.IsConfigured() {
		opts = append(opts, firmint.WithGroqConfig(provider.OpenAIConfig{
			APIKey:  groq.APIKey(),
			BaseURL: groq.BaseURL(),
			Model:   groq.Model(),
			Timeout: groq.Timeout(),
		}))
	}

	if gemini := cfg.Gemini(); gemini.IsConfigured() {
		opts = append(opts, firmint.WithGeminiConfig(provider.GeminiConfig{
			APIKey:  gemini.APIKey(),
			BaseURL: gemini.BaseURL(),
			Model:   gemini.Model(),
			Timeout: gemini.Timeout(),
		}))
	}

	return opts
}

// engineOptions returns the enrichment engine tuning options.
func engineOptions(cfg config.AppConfig) []firmint.Option {
	return []firmint.Option{
		firmint.WithMaxTokens(cfg.MaxTokens()),
		firmint.WithTemperature(cfg.Temperature()),
		firmint.WithRequestRate(cfg.RequestRate()),
		firmint.WithWorkerPollPeriod(cfg.WorkerPollPeriod()),
	}
}
