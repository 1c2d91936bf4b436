package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubProvider is a TextProvider returning a canned response or error.
type stubProvider struct {
	name   string
	resp   ChatCompletionResponse
	err    error
	calls  int
	closed bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Close() error {
	s.closed = true
	return nil
}

func (s *stubProvider) ChatCompletion(_ context.Context, _ ChatCompletionRequest) (ChatCompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return ChatCompletionResponse{}, s.err
	}
	return s.resp, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFailover_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{
		name: "groq",
		resp: NewChatCompletionResponse("from primary", "stop", Usage{}),
	}
	fallback := &stubProvider{name: "gemini"}

	f := NewFailover(primary, fallback, discardLogger())

	resp, err := f.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.NoError(t, err)
	require.Equal(t, "from primary", resp.Content())
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 0, fallback.calls, "fallback must not be consulted on success")
}

func TestFailover_FallsBackOnPrimaryError(t *testing.T) {
	primary := &stubProvider{
		name: "groq",
		err:  NewProviderError("groq", http.StatusTooManyRequests, "rate limited", nil),
	}
	fallback := &stubProvider{
		name: "gemini",
		resp: NewChatCompletionResponse("from fallback", "stop", Usage{}),
	}

	f := NewFailover(primary, fallback, discardLogger())

	resp, err := f.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.NoError(t, err)
	require.Equal(t, "from fallback", resp.Content())
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestFailover_BothFail(t *testing.T) {
	primaryErr := NewProviderError("groq", http.StatusTooManyRequests, "rate limited", nil)
	fallbackErr := NewProviderError("gemini", http.StatusServiceUnavailable, "overloaded", nil)
	primary := &stubProvider{name: "groq", err: primaryErr}
	fallback := &stubProvider{name: "gemini", err: fallbackErr}

	f := NewFailover(primary, fallback, discardLogger())

	_, err := f.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)
	require.ErrorIs(t, err, primaryErr)
	require.ErrorIs(t, err, fallbackErr)
}

func TestFailover_CancelledContextSkipsFallback(t *testing.T) {
	primary := &stubProvider{name: "groq", err: context.Canceled}
	fallback := &stubProvider{name: "gemini"}

	f := NewFailover(primary, fallback, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ChatCompletion(ctx, NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)
	require.Equal(t, 0, fallback.calls, "fallback must not run after cancellation")
}

func TestFailover_Name(t *testing.T) {
	f := NewFailover(&stubProvider{name: "groq"}, &stubProvider{name: "gemini"}, discardLogger())
	require.Equal(t, "groq+gemini", f.Name())
}

func TestFailover_CloseClosesBoth(t *testing.T) {
	primary := &stubProvider{name: "groq"}
	fallback := &stubProvider{name: "gemini"}

	f := NewFailover(primary, fallback, discardLogger())
	require.NoError(t, f.Close())
	require.True(t, primary.closed)
	require.True(t, fallback.closed)
}
