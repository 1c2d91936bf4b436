package firmint_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/domain/enrichment"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/provider"
)

// holdQueue is a poll period long enough that the worker never picks up a
// task within a test, keeping queue contents observable.
const holdQueue = time.Hour

// waitForTasks waits until no pending tasks remain or the timeout is
// reached. Tasks leave the queue when dequeued, so a single empty poll does
// not guarantee the work is finished; we require the worker to also be idle.
func waitForTasks(ctx context.Context, t *testing.T, client *firmint.Client, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		tasks, err := client.Tasks.List(ctx, nil)
		require.NoError(t, err)

		if len(tasks) == 0 && client.WorkerIdle() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	tasks, _ := client.Tasks.List(ctx, nil)
	t.Fatalf("timeout waiting for tasks to complete, %d remaining", len(tasks))
}

func TestIntegration_CreateBatchQueuesTask(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeGenerator{}, firmint.WithWorkerPollPeriod(holdQueue))
	ctx := context.Background()

	b, err := client.Batches.Create(ctx, "test", []string{"OpenAI", "Zoho"})
	require.NoError(t, err)
	assert.Greater(t, b.ID(), int64(0), "batch should have an ID")
	assert.Equal(t, batch.StatePending, b.State())

	tasks, err := client.Tasks.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.OperationEnrichBatch, tasks[0].Operation())
}

func TestIntegration_FullEnrichmentWorkflow(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{script: []fakeCall{
		{content: "website: https://openai.com\nindustry: Artificial Intelligence\ncompany_size: 501-1000\nhq_location: San Francisco, California, United States"},
		{err: provider.NewProviderError("groq", 429, "rate limited", nil)},
	}}
	client := newTestClient(t, gen)
	ctx := context.Background()

	created, err := client.Batches.Create(ctx, "test", []string{"OpenAI", "Zoho"})
	require.NoError(t, err)

	waitForTasks(ctx, t, client, 5*time.Second)

	// The batch reaches a terminal state with one record per company, in
	// input order.
	got, err := client.Batches.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateCompleted, got.State())

	records := got.Records()
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "OpenAI", first.CompanyName())
	assert.Equal(t, "https://openai.com", first.Website())
	assert.Equal(t, "Artificial Intelligence", first.Industry())
	assert.Equal(t, "501-1000", first.CompanySize())
	assert.Equal(t, "San Francisco, California, United States", first.HQLocation())
	assert.Equal(t, enrichment.StatusOk, first.Status())

	second := records[1]
	assert.Equal(t, "Zoho", second.CompanyName())
	assert.Equal(t, enrichment.StatusFailed, second.Status())
	assert.Empty(t, second.Website())
	assert.NotEmpty(t, second.ErrorMessage())

	// Progress tracking saw the batch through to completion.
	status, found, err := client.Tracking.EnrichmentStatus(ctx, created.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, task.ReportingStateCompleted, status.State())
	assert.Equal(t, 2, status.Total())
	assert.Equal(t, 2, status.Current())

	// CSV export round trip.
	data, err := client.Batches.ExportCSV(ctx, created.ID())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "company_name,website,industry,company_size,hq_location,status,error_message", lines[0])
	assert.Contains(t, lines[1], "OpenAI")
	assert.Contains(t, lines[2], "Zoho")

	// Stats reflect the mixed outcome.
	stats, err := client.Batches.Stats(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
}

func TestIntegration_ExportBeforeTerminalState(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeGenerator{}, firmint.WithWorkerPollPeriod(holdQueue))
	ctx := context.Background()

	b, err := client.Batches.Create(ctx, "test", []string{"OpenAI"})
	require.NoError(t, err)

	_, err = client.Batches.ExportCSV(ctx, b.ID())
	assert.ErrorIs(t, err, service.ErrBatchNotReady)
}

func TestIntegration_DeleteDrainsQueue(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeGenerator{}, firmint.WithWorkerPollPeriod(holdQueue))
	ctx := context.Background()

	b, err := client.Batches.Create(ctx, "test", []string{"OpenAI"})
	require.NoError(t, err)

	require.NoError(t, client.Batches.Delete(ctx, b.ID()))

	_, err = client.Batches.Get(ctx, b.ID())
	assert.ErrorIs(t, err, batch.ErrNotFound)

	tasks, err := client.Tasks.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks, "pending enrichment task should be drained")
}

func TestIntegration_DuplicateCreateDeduplicatesTasks(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &fakeGenerator{}, firmint.WithWorkerPollPeriod(holdQueue))
	ctx := context.Background()

	b1, err := client.Batches.Create(ctx, "test", []string{"OpenAI"})
	require.NoError(t, err)
	b2, err := client.Batches.Create(ctx, "test", []string{"Zoho"})
	require.NoError(t, err)
	require.NotEqual(t, b1.ID(), b2.ID())

	// Distinct batches queue distinct tasks; the dedup key includes the
	// batch ID.
	tasks, err := client.Tasks.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
