package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Groq defaults. Groq exposes an OpenAI-compatible chat completion API, so
// the same client works against api.groq.com, api.openai.com, or any other
// compatible gateway.
const (
	defaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	defaultOpenAIModel   = "llama3-8b-8192"
	defaultOpenAITimeout = 30 * time.Second
)

// OpenAIProvider implements text generation against an OpenAI-compatible
// chat completion API. The zero configuration targets Groq.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
}

// OpenAIConfig holds configuration for OpenAIProvider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Name identifies the provider in errors and logs. Defaults to "groq".
	Name string

	// HTTPClient overrides the HTTP client, primarily for tests.
	HTTPClient *http.Client
}

// OpenAIOption is a functional option for OpenAIProvider.
type OpenAIOption func(*OpenAIConfig)

// WithOpenAIModel sets the chat completion model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAIConfig) { c.Model = model }
}

// WithOpenAIBaseURL sets the base URL (for other gateways or tests).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAIConfig) { c.BaseURL = url }
}

// WithOpenAITimeout sets the HTTP timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIConfig) { c.Timeout = d }
}

// WithOpenAIName sets the provider name used in errors and logs.
func WithOpenAIName(name string) OpenAIOption {
	return func(c *OpenAIConfig) { c.Name = name }
}

// NewOpenAIProvider creates a provider for the given API key with options
// applied on top of Groq defaults.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	cfg := OpenAIConfig{APIKey: apiKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewOpenAIProviderFromConfig(cfg)
}

// NewOpenAIProviderFromConfig creates a provider from configuration.
func NewOpenAIProviderFromConfig(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)

	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = defaultOpenAIBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultOpenAITimeout
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	name := cfg.Name
	if name == "" {
		name = "groq"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		name:   name,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Close is a no-op for the OpenAI provider.
func (p *OpenAIProvider) Close() error {
	return nil
}

// ChatCompletion generates a chat completion in a single attempt.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages()))
	for i, m := range req.Messages() {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role(),
			Content: m.Content(),
		}
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}

	if req.MaxTokens() > 0 {
		openaiReq.MaxTokens = req.MaxTokens()
	}
	if req.Temperature() > 0 {
		openaiReq.Temperature = float32(req.Temperature())
	}

	resp, err := p.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return ChatCompletionResponse{}, p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return ChatCompletionResponse{}, NewProviderError(
			p.name, 0, "no choices in response", ErrEmptyCompletion,
		)
	}

	usage := NewUsage(
		resp.Usage.PromptTokens,
		resp.Usage.CompletionTokens,
		resp.Usage.TotalTokens,
	)

	return NewChatCompletionResponse(
		resp.Choices[0].Message.Content,
		string(resp.Choices[0].FinishReason),
		usage,
	), nil
}

// wrapError wraps an OpenAI client error into a ProviderError. Context
// cancellation passes through unwrapped so callers can tell an aborted
// batch from a failed item.
func (p *OpenAIProvider) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(p.name, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(p.name, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(p.name, 0, err.Error(), err)
}

// Ensure OpenAIProvider implements the interfaces.
var (
	_ TextProvider  = (*OpenAIProvider)(nil)
	_ TextGenerator = (*OpenAIProvider)(nil)
)
