package tracking

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/firmint/firmint/domain/task"
)

// Cooldown wraps a Reporter and bounds how often updates are delivered per
// status ID. A batch emits one update per company, which would otherwise
// write the store and the log on every single completion.
//
// Terminal states (completed, failed, skipped) always pass through
// immediately. Non-terminal updates are delivered at most once per interval;
// while throttled, the latest status is held and flushed when the interval
// elapses, when a terminal state arrives, or on Close.
type Cooldown struct {
	inner    Reporter
	interval time.Duration

	mu      sync.Mutex
	entries map[string]*cooldownEntry
}

type cooldownEntry struct {
	lastDelivery time.Time
	pending      *task.Status
	timer        *time.Timer
}

// NewCooldown creates a Cooldown delivering at most one non-terminal update
// per interval for each status ID.
func NewCooldown(inner Reporter, interval time.Duration) *Cooldown {
	return &Cooldown{
		inner:    inner,
		interval: interval,
		entries:  make(map[string]*cooldownEntry),
	}
}

// OnChange receives a status update and either delivers it, or holds it as
// the pending update for its ID.
func (c *Cooldown) OnChange(ctx context.Context, status task.Status) error {
	id := status.ID()
	c.mu.Lock()

	if status.State().IsTerminal() {
		c.dropEntryLocked(id)
		c.mu.Unlock()
		return c.inner.OnChange(ctx, status)
	}

	entry, ok := c.entries[id]
	if !ok {
		entry = &cooldownEntry{}
		c.entries[id] = entry
	}

	elapsed := time.Since(entry.lastDelivery)
	if elapsed >= c.interval {
		if entry.timer != nil {
			entry.timer.Stop()
			entry.timer = nil
		}
		entry.pending = nil
		entry.lastDelivery = time.Now()
		c.mu.Unlock()
		return c.inner.OnChange(ctx, status)
	}

	// Throttled: remember only the newest status and make sure a flush is
	// scheduled for when the interval ends.
	pending := status
	entry.pending = &pending
	if entry.timer == nil {
		entry.timer = time.AfterFunc(c.interval-elapsed, func() {
			c.flush(id)
		})
	}

	c.mu.Unlock()
	return nil
}

// Close flushes all pending statuses and stops all timers.
func (c *Cooldown) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*cooldownEntry)
	c.mu.Unlock()

	for _, entry := range entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		if entry.pending != nil {
			_ = c.inner.OnChange(context.Background(), *entry.pending)
		}
	}
	return nil
}

// flush delivers the pending status for an ID after its interval elapsed.
func (c *Cooldown) flush(id string) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if !ok || entry.pending == nil {
		if ok {
			entry.timer = nil
		}
		c.mu.Unlock()
		return
	}

	status := *entry.pending
	entry.pending = nil
	entry.lastDelivery = time.Now()
	entry.timer = nil
	c.mu.Unlock()

	_ = c.inner.OnChange(context.Background(), status)
}

// dropEntryLocked stops and forgets the entry for an ID. Callers hold c.mu.
func (c *Cooldown) dropEntryLocked(id string) {
	if entry, ok := c.entries[id]; ok {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(c.entries, id)
	}
}

// Ensure Cooldown implements both Reporter and io.Closer.
var (
	_ Reporter  = (*Cooldown)(nil)
	_ io.Closer = (*Cooldown)(nil)
)
