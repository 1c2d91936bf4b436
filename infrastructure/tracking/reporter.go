// Package tracking reports batch progress to subscribers while an
// enrichment runs.
package tracking

import (
	"context"

	"github.com/firmint/firmint/domain/task"
)

// Reporter receives status change notifications.
type Reporter interface {
	// OnChange is called when a batch status changes.
	OnChange(ctx context.Context, status task.Status) error
}
