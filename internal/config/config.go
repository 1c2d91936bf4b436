// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 8080
	DefaultLogLevel = "INFO"

	// DefaultGroqBaseURL is Groq's OpenAI-compatible API root.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama3-8b-8192"
	DefaultGeminiModel = "gemini-1.5-flash"

	DefaultEndpointTimeout = 30 * time.Second

	// DefaultMaxTokens caps a single completion response.
	DefaultMaxTokens = 1000
	// DefaultTemperature keeps completions close to deterministic.
	DefaultTemperature = 0.3
	// DefaultRequestRate is the completion request budget in requests
	// per second, applied across a whole batch.
	DefaultRequestRate = 2.0

	DefaultWorkerPollPeriod = time.Second
	DefaultListLimit        = 20
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures a connection to an LLM completion API.
type Endpoint struct {
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) {
		e.baseURL = url
	}
}

// WithModel sets the model identifier.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) {
		e.model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) {
		e.apiKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) {
		e.timeout = d
	}
}

// NewEndpointWithOptions creates an Endpoint with the given options applied
// on top of defaults.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := Endpoint{
		timeout: DefaultEndpointTimeout,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// BaseURL returns the API base URL.
func (e Endpoint) BaseURL() string {
	return e.baseURL
}

// Model returns the model identifier.
func (e Endpoint) Model() string {
	return e.model
}

// APIKey returns the API key.
func (e Endpoint) APIKey() string {
	return e.apiKey
}

// Timeout returns the per-request timeout.
func (e Endpoint) Timeout() time.Duration {
	return e.timeout
}

// IsConfigured returns true if the endpoint has an API key.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != ""
}

// AppConfig is the main application configuration.
type AppConfig struct {
	host             string
	port             int
	logLevel         string
	logFormat        LogFormat
	apiKeys          []string
	corsOrigins      []string
	groq             Endpoint
	gemini           Endpoint
	maxTokens        int
	temperature      float64
	requestRate      float64
	workerPollPeriod time.Duration
	listLimit        int
}

// NewAppConfig creates a new AppConfig with default values.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:             DefaultHost,
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		logFormat:        LogFormatPretty,
		corsOrigins:      []string{"*"},
		groq:             NewEndpointWithOptions(WithBaseURL(DefaultGroqBaseURL), WithModel(DefaultGroqModel)),
		gemini:           NewEndpointWithOptions(WithModel(DefaultGeminiModel)),
		maxTokens:        DefaultMaxTokens,
		temperature:      DefaultTemperature,
		requestRate:      DefaultRequestRate,
		workerPollPeriod: DefaultWorkerPollPeriod,
		listLimit:        DefaultListLimit,
	}
}

// AppConfigOption configures an AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) {
		c.host = host
	}
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) {
		c.port = port
	}
}

// WithLogLevel sets the log verbosity level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) {
		c.logLevel = level
	}
}

// WithLogFormat sets the log output format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) {
		c.logFormat = format
	}
}

// WithAPIKeys sets the API keys accepted for write operations.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = keys
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = origins
	}
}

// WithGroqEndpoint sets the Groq endpoint configuration.
func WithGroqEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) {
		c.groq = e
	}
}

// WithGeminiEndpoint sets the Gemini endpoint configuration.
func WithGeminiEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) {
		c.gemini = e
	}
}

// WithMaxTokens sets the completion token cap.
func WithMaxTokens(n int) AppConfigOption {
	return func(c *AppConfig) {
		c.maxTokens = n
	}
}

// WithTemperature sets the completion sampling temperature.
func WithTemperature(t float64) AppConfigOption {
	return func(c *AppConfig) {
		c.temperature = t
	}
}

// WithRequestRate sets the completion request rate in requests per second.
func WithRequestRate(rate float64) AppConfigOption {
	return func(c *AppConfig) {
		c.requestRate = rate
	}
}

// WithWorkerPollPeriod sets how often the background worker polls the queue.
func WithWorkerPollPeriod(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		c.workerPollPeriod = d
	}
}

// WithListLimit sets the default page size for list endpoints.
func WithListLimit(limit int) AppConfigOption {
	return func(c *AppConfig) {
		c.listLimit = limit
	}
}

// NewAppConfigWithOptions creates an AppConfig with options applied on top
// of defaults.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of the config with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Host returns the server host.
func (c AppConfig) Host() string {
	return c.host
}

// Port returns the server port.
func (c AppConfig) Port() int {
	return c.port
}

// Addr returns the host:port address to bind to.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string {
	return c.logLevel
}

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat {
	return c.logFormat
}

// APIKeys returns the API keys accepted for write operations.
func (c AppConfig) APIKeys() []string {
	return c.apiKeys
}

// CORSOrigins returns the allowed CORS origins.
func (c AppConfig) CORSOrigins() []string {
	return c.corsOrigins
}

// Groq returns the Groq endpoint configuration.
func (c AppConfig) Groq() Endpoint {
	return c.groq
}

// Gemini returns the Gemini endpoint configuration.
func (c AppConfig) Gemini() Endpoint {
	return c.gemini
}

// MaxTokens returns the completion token cap.
func (c AppConfig) MaxTokens() int {
	return c.maxTokens
}

// Temperature returns the completion sampling temperature.
func (c AppConfig) Temperature() float64 {
	return c.temperature
}

// RequestRate returns the completion request rate in requests per second.
func (c AppConfig) RequestRate() float64 {
	return c.requestRate
}

// WorkerPollPeriod returns how often the background worker polls the queue.
func (c AppConfig) WorkerPollPeriod() time.Duration {
	return c.workerPollPeriod
}

// ListLimit returns the default page size for list endpoints.
func (c AppConfig) ListLimit() int {
	return c.listLimit
}

// LogAttrs returns structured log attributes describing the configuration.
// Secrets are reported by presence only, never by value.
func (c AppConfig) LogAttrs() []slog.Attr {
	groqModel := "(not configured)"
	if c.groq.IsConfigured() {
		groqModel = c.groq.Model()
	}
	geminiModel := "(not configured)"
	if c.gemini.IsConfigured() {
		geminiModel = c.gemini.Model()
	}

	return []slog.Attr{
		slog.String("host", c.host),
		slog.Int("port", c.port),
		slog.String("log_level", c.logLevel),
		slog.String("log_format", string(c.logFormat)),
		slog.String("groq_model", groqModel),
		slog.String("gemini_model", geminiModel),
		slog.Int("api_keys", len(c.apiKeys)),
		slog.Int("max_tokens", c.maxTokens),
		slog.Float64("temperature", c.temperature),
		slog.Float64("request_rate", c.requestRate),
	}
}

// ParseAPIKeys splits a comma-separated API key list, trimming whitespace
// and dropping empty entries.
func ParseAPIKeys(s string) []string {
	return splitCommaList(s)
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DefaultLogger returns the process default slog logger. Services use it
// when no logger is injected.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}
