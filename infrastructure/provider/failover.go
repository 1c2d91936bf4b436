package provider

import (
	"context"
	"errors"
	"log/slog"
)

// Failover chains a primary TextProvider with a fallback. Each provider gets
// a single attempt per request; the fallback is consulted only when the
// primary fails. Context cancellation aborts immediately without touching
// the fallback.
type Failover struct {
	primary  TextProvider
	fallback TextProvider
	logger   *slog.Logger
}

// NewFailover creates a failover chain over primary and fallback.
func NewFailover(primary, fallback TextProvider, logger *slog.Logger) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Name returns the names of both chained providers.
func (f *Failover) Name() string {
	return f.primary.Name() + "+" + f.fallback.Name()
}

// Close closes both providers.
func (f *Failover) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}

// ChatCompletion tries the primary provider, then the fallback. If both
// fail, the returned error carries both failures.
func (f *Failover) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	resp, primaryErr := f.primary.ChatCompletion(ctx, req)
	if primaryErr == nil {
		return resp, nil
	}

	if ctx.Err() != nil {
		return ChatCompletionResponse{}, primaryErr
	}

	f.logger.Warn("primary provider failed, trying fallback",
		slog.String("primary", f.primary.Name()),
		slog.String("fallback", f.fallback.Name()),
		slog.String("error", primaryErr.Error()),
	)

	resp, fallbackErr := f.fallback.ChatCompletion(ctx, req)
	if fallbackErr != nil {
		return ChatCompletionResponse{}, errors.Join(primaryErr, fallbackErr)
	}

	return resp, nil
}

// Ensure Failover implements the interfaces.
var (
	_ TextProvider  = (*Failover)(nil)
	_ TextGenerator = (*Failover)(nil)
)
