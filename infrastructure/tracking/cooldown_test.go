package tracking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/tracking"
)

// fakeReporter records all statuses delivered to it.
type fakeReporter struct {
	mu       sync.Mutex
	statuses []task.Status
}

func (f *fakeReporter) OnChange(_ context.Context, status task.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeReporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statuses)
}

func (f *fakeReporter) last() task.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[len(f.statuses)-1]
}

func TestCooldown_FirstUpdatePassesThrough(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Second)
	defer func() { _ = cooldown.Close() }()

	status := task.NewStatus(task.OperationEnrichBatch, 1).SetTotal(10)

	require.NoError(t, cooldown.OnChange(context.Background(), status))
	assert.Equal(t, 1, fake.count())
}

func TestCooldown_ThrottlesRapidUpdates(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, 500*time.Millisecond)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	// First update passes through immediately.
	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "company 1"))

	// Rapid subsequent updates should be throttled.
	for i := 2; i <= 20; i++ {
		_ = cooldown.OnChange(ctx, status.SetCurrent(i, "company"))
	}

	assert.Equal(t, 1, fake.count(), "only the first update may pass during the throttle window")

	// Wait for the cooldown timer to flush the pending status.
	time.Sleep(700 * time.Millisecond)

	require.Equal(t, 2, fake.count())
	assert.Equal(t, 20, fake.last().Current(), "flush must carry the latest progress")
}

func TestCooldown_TerminalStateAlwaysFlushes(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Hour) // very long interval
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "company 1"))

	// This would normally be throttled, but terminal states bypass.
	_ = cooldown.OnChange(ctx, status.Complete())

	require.Equal(t, 2, fake.count())
	assert.Equal(t, task.ReportingStateCompleted, fake.last().State())
}

func TestCooldown_FailedStateFlushesImmediately(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Hour)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "company 1"))
	_ = cooldown.OnChange(ctx, status.Fail("something broke"))

	require.Equal(t, 2, fake.count())
	assert.Equal(t, task.ReportingStateFailed, fake.last().State())
}

func TestCooldown_SkippedStateFlushesImmediately(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Hour)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "company 1"))
	_ = cooldown.OnChange(ctx, status.Skip("not needed"))

	require.Equal(t, 2, fake.count())
	assert.Equal(t, task.ReportingStateSkipped, fake.last().State())
}

func TestCooldown_IndependentStatusIDsNotAffected(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Hour)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()

	// Two different status IDs (different batches).
	status1 := task.NewStatus(task.OperationEnrichBatch, 1)
	status2 := task.NewStatus(task.OperationEnrichBatch, 2)

	// Both first updates should pass through.
	_ = cooldown.OnChange(ctx, status1.SetCurrent(1, "batch 1"))
	_ = cooldown.OnChange(ctx, status2.SetCurrent(1, "batch 2"))

	assert.Equal(t, 2, fake.count())
}

func TestCooldown_ConcurrentUpdates(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, 200*time.Millisecond)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = cooldown.OnChange(ctx, status.SetCurrent(n, "concurrent"))
		}(i)
	}
	wg.Wait()

	// Complete to flush everything.
	_ = cooldown.OnChange(ctx, status.Complete())

	// Far fewer than 50 deliveries should have happened, plus the
	// terminal delivery at the end.
	assert.Less(t, fake.count(), 50, "throttling must reduce deliveries")
	assert.Equal(t, task.ReportingStateCompleted, fake.last().State())
}

func TestCooldown_CloseFlushesPending(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, time.Hour) // long interval

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	// First passes through; the second is throttled and held.
	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "company 1"))
	_ = cooldown.OnChange(ctx, status.SetCurrent(5, "company 5"))

	require.Equal(t, 1, fake.count())

	require.NoError(t, cooldown.Close())

	require.Equal(t, 2, fake.count())
	assert.Equal(t, 5, fake.last().Current())
}

func TestCooldown_AllowsUpdateAfterIntervalPasses(t *testing.T) {
	fake := &fakeReporter{}
	cooldown := tracking.NewCooldown(fake, 100*time.Millisecond)
	defer func() { _ = cooldown.Close() }()

	ctx := context.Background()
	status := task.NewStatus(task.OperationEnrichBatch, 1)

	_ = cooldown.OnChange(ctx, status.SetCurrent(1, "first"))
	require.Equal(t, 1, fake.count())

	time.Sleep(150 * time.Millisecond)

	_ = cooldown.OnChange(ctx, status.SetCurrent(2, "second"))
	assert.Equal(t, 2, fake.count())
}
