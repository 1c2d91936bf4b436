package firmint

import (
	"io"
	"log/slog"
	"time"

	"github.com/firmint/firmint/infrastructure/provider"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	groq             *provider.OpenAIConfig
	gemini           *provider.GeminiConfig
	textGenerator    provider.TextGenerator
	logger           *slog.Logger
	apiKeys          []string
	maxTokens        int
	temperature      float64
	requestRate      float64
	workerPollPeriod time.Duration
	closers          []io.Closer
}

// newClientConfig creates a clientConfig with defaults. Engine tuning values
// are left unset so the enrichment engine's own defaults apply.
func newClientConfig() *clientConfig {
	return &clientConfig{
		temperature: -1,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithGroq sets Groq as the primary completion provider.
func WithGroq(apiKey string) Option {
	return func(c *clientConfig) {
		c.groq = &provider.OpenAIConfig{APIKey: apiKey}
	}
}

// WithGroqConfig sets Groq (or any OpenAI-compatible gateway) with custom
// configuration.
func WithGroqConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.groq = &cfg
	}
}

// WithGemini sets Google Gemini as a completion provider. When Groq is also
// configured, Gemini serves as the fallback.
func WithGemini(apiKey string) Option {
	return func(c *clientConfig) {
		c.gemini = &provider.GeminiConfig{APIKey: apiKey}
	}
}

// WithGeminiConfig sets Google Gemini with custom configuration.
func WithGeminiConfig(cfg provider.GeminiConfig) Option {
	return func(c *clientConfig) {
		c.gemini = &cfg
	}
}

// WithTextGenerator sets a custom completion provider, bypassing the
// Groq/Gemini chain. Intended for tests and embedders with their own client.
func WithTextGenerator(g provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textGenerator = g
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithMaxTokens bounds the completion length requested per company.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature for completions.
func WithTemperature(t float64) Option {
	return func(c *clientConfig) {
		if t >= 0 {
			c.temperature = t
		}
	}
}

// WithRequestRate caps provider calls per second. Values <= 0 are ignored.
func WithRequestRate(perSecond float64) Option {
	return func(c *clientConfig) {
		if perSecond > 0 {
			c.requestRate = perSecond
		}
	}
}

// WithWorkerPollPeriod sets how often the background worker checks for new
// tasks. Defaults to 1 second. Lower values speed up task processing at the
// cost of more frequent polling — useful in tests.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.workerPollPeriod = d
	}
}

// WithAPIKeys sets the API keys for HTTP API write protection.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
