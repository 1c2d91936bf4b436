package tracking

import (
	"context"
	"log/slog"

	"github.com/firmint/firmint/domain/task"
)

// LoggingReporter implements Reporter by logging status changes.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	return &LoggingReporter{logger: logger}
}

// OnChange logs the status change. Failures log at error level with the
// diagnostic; everything else logs at info level.
func (r *LoggingReporter) OnChange(_ context.Context, status task.Status) error {
	state := status.State()

	if state == task.ReportingStateFailed {
		r.logger.Error(status.Operation().String(),
			slog.String("state", string(state)),
			slog.Int64("batch_id", status.BatchID()),
			slog.Float64("completion_percent", status.CompletionPercent()),
			slog.String("error", status.Error()),
		)
		return nil
	}

	r.logger.Info(status.Operation().String(),
		slog.String("state", string(state)),
		slog.Int64("batch_id", status.BatchID()),
		slog.Float64("completion_percent", status.CompletionPercent()),
	)
	return nil
}

// Ensure LoggingReporter implements Reporter.
var _ Reporter = (*LoggingReporter)(nil)
