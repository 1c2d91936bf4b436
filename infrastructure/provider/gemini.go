package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultGeminiTimeout = 30 * time.Second
)

// GeminiProvider implements text generation using the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	name   string
	model  string
}

// GeminiConfig holds configuration for GeminiProvider.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// BaseURL overrides the Gemini API base URL, for proxies or tests.
	BaseURL string
}

// GeminiOption is a functional option for GeminiProvider.
type GeminiOption func(*GeminiConfig)

// WithGeminiModel sets the Gemini model.
func WithGeminiModel(model string) GeminiOption {
	return func(c *GeminiConfig) { c.Model = model }
}

// WithGeminiBaseURL sets the base URL (for proxies or tests).
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *GeminiConfig) { c.BaseURL = url }
}

// WithGeminiTimeout sets the HTTP timeout.
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(c *GeminiConfig) { c.Timeout = d }
}

// NewGeminiProvider creates a provider for the given API key with options
// applied on top of defaults.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiProvider, error) {
	cfg := GeminiConfig{APIKey: apiKey}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewGeminiProviderFromConfig(ctx, cfg)
}

// NewGeminiProviderFromConfig creates a provider from configuration.
func NewGeminiProviderFromConfig(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultGeminiTimeout
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, NewProviderError("gemini", 0, "failed to create client", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		name:   "gemini",
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return p.name
}

// Close is a no-op for the Gemini provider.
func (p *GeminiProvider) Close() error {
	return nil
}

// ChatCompletion generates a chat completion in a single attempt. System
// messages map to the Gemini system instruction; remaining messages are
// joined into the user prompt.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var system string
	var userParts []string
	for _, m := range req.Messages() {
		if m.Role() == "system" {
			system = m.Content()
			continue
		}
		userParts = append(userParts, m.Content())
	}

	if len(userParts) == 0 {
		return ChatCompletionResponse{}, NewProviderError(p.name, 0, "no user message provided", nil)
	}

	genCfg := &genai.GenerateContentConfig{
		CandidateCount: 1,
	}
	if req.MaxTokens() > 0 {
		genCfg.MaxOutputTokens = int32(req.MaxTokens())
	}
	if req.Temperature() > 0 {
		genCfg.Temperature = genai.Ptr(float32(req.Temperature()))
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(
		ctx,
		p.model,
		genai.Text(strings.Join(userParts, "\n\n")),
		genCfg,
	)
	if err != nil {
		return ChatCompletionResponse{}, p.wrapError(err)
	}

	text := resp.Text()
	if text == "" {
		return ChatCompletionResponse{}, NewProviderError(
			p.name, 0, "no candidates in response", ErrEmptyCompletion,
		)
	}

	var finishReason string
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		finishReason = string(resp.Candidates[0].FinishReason)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = NewUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}

	return NewChatCompletionResponse(text, finishReason, usage), nil
}

// wrapError wraps a genai client error into a ProviderError. Context
// cancellation passes through unwrapped.
func (p *GeminiProvider) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(p.name, apiErr.Code, apiErr.Message, err)
	}

	return NewProviderError(p.name, 0, err.Error(), err)
}

// Ensure GeminiProvider implements the interfaces.
var (
	_ TextProvider  = (*GeminiProvider)(nil)
	_ TextGenerator = (*GeminiProvider)(nil)
)
