// Package log provides structured logging built on log/slog.
//
// Two output formats are supported: a human-friendly terminal format with
// colour-coded levels (the default) and line-delimited JSON for machine
// consumption. Request and batch identifiers stored in a context.Context
// are attached automatically by the *Context logging methods.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/firmint/firmint/internal/config"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for logging.
const (
	RequestIDKey ContextKey = "request_id"
	BatchIDKey   ContextKey = "batch_id"
)

// Logger wraps slog.Logger with convenience methods.
type Logger struct {
	handler slog.Handler
	logger  *slog.Logger
}

// NewLogger creates a new Logger based on configuration.
func NewLogger(cfg config.AppConfig) *Logger {
	return NewLoggerWithWriter(os.Stdout, cfg.LogFormat(), cfg.LogLevel())
}

// NewLoggerWithWriter creates a Logger that writes to the specified writer.
func NewLoggerWithWriter(w io.Writer, format config.LogFormat, level string) *Logger {
	lvl := parseLevel(level)

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = newTerminalHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return &Logger{
		handler: handler,
		logger:  slog.New(handler),
	}
}

// parseLevel converts a level string to slog.Level. Unknown values
// default to INFO.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// With returns a Logger with the given attributes attached to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		handler: l.handler,
		logger:  l.logger.With(args...),
	}
}

// WithContext returns a Logger carrying any request or batch IDs found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	logger := l

	if requestID := RequestID(ctx); requestID != "" {
		logger = logger.With(string(RequestIDKey), requestID)
	}
	if batchID := BatchID(ctx); batchID != 0 {
		logger = logger.With(string(BatchIDKey), batchID)
	}

	return logger
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// DebugContext logs at debug level with context values attached.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with context values attached.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with context values attached.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with context values attached.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).logger.ErrorContext(ctx, msg, args...)
}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID extracts the request ID from ctx, or "" if not set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithBatchID returns a context carrying the given batch ID.
func WithBatchID(ctx context.Context, batchID int64) context.Context {
	return context.WithValue(ctx, BatchIDKey, batchID)
}

// BatchID extracts the batch ID from ctx, or 0 if not set.
func BatchID(ctx context.Context) int64 {
	if v, ok := ctx.Value(BatchIDKey).(int64); ok {
		return v
	}
	return 0
}

var defaultLogger = NewLoggerWithWriter(os.Stdout, config.LogFormatPretty, "INFO")

// Default returns the process-wide default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
	slog.SetDefault(logger.logger)
}

// Configure creates a logger from cfg and installs it as the default.
func Configure(cfg config.AppConfig) *Logger {
	logger := NewLogger(cfg)
	SetDefault(logger)
	return logger
}
