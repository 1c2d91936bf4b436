package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., GROQ_API_KEY).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// CORSOrigins is a comma-separated list of allowed CORS origins.
	// Env: CORS_ORIGINS
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Groq configures the Groq completion endpoint.
	Groq EndpointEnv `envconfig:"GROQ"`

	// Gemini configures the Gemini fallback endpoint.
	Gemini EndpointEnv `envconfig:"GEMINI"`

	// Enricher configures enrichment behaviour.
	Enricher EnricherEnv `envconfig:"ENRICHER"`
}

// EndpointEnv holds environment configuration for an LLM endpoint.
type EndpointEnv struct {
	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the model identifier.
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`
}

// EnricherEnv holds environment configuration for the enrichment engine.
type EnricherEnv struct {
	// MaxTokens caps a single completion response.
	// Env: ENRICHER_MAX_TOKENS (default: 1000)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"1000"`

	// Temperature is the completion sampling temperature.
	// Env: ENRICHER_TEMPERATURE (default: 0.3)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.3"`

	// RequestRate is the completion request budget in requests per second.
	// Env: ENRICHER_REQUEST_RATE (default: 2)
	RequestRate float64 `envconfig:"REQUEST_RATE" default:"2"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "FIRMINT" would require FIRMINT_GROQ_API_KEY
// instead of GROQ_API_KEY.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = cfg.Apply(WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.CORSOrigins != "" {
		cfg = cfg.Apply(WithCORSOrigins(splitCommaList(e.CORSOrigins)))
	}

	cfg = cfg.Apply(
		WithGroqEndpoint(e.Groq.ToEndpoint(DefaultGroqBaseURL, DefaultGroqModel)),
		WithGeminiEndpoint(e.Gemini.ToEndpoint("", DefaultGeminiModel)),
	)

	if e.Enricher.MaxTokens > 0 {
		cfg = cfg.Apply(WithMaxTokens(e.Enricher.MaxTokens))
	}
	if e.Enricher.Temperature >= 0 {
		cfg = cfg.Apply(WithTemperature(e.Enricher.Temperature))
	}
	if e.Enricher.RequestRate > 0 {
		cfg = cfg.Apply(WithRequestRate(e.Enricher.RequestRate))
	}

	return cfg
}

// IsConfigured returns true if the endpoint has an API key.
func (e EndpointEnv) IsConfigured() bool {
	return e.APIKey != ""
}

// ToEndpoint converts EndpointEnv to Endpoint, falling back to the given
// defaults for unset base URL and model.
func (e EndpointEnv) ToEndpoint(defaultBaseURL, defaultModel string) Endpoint {
	baseURL := e.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := e.Model
	if model == "" {
		model = defaultModel
	}

	opts := []EndpointOption{
		WithBaseURL(baseURL),
		WithModel(model),
		WithTimeout(time.Duration(e.Timeout * float64(time.Second))),
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch s {
	case "json", "JSON":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
