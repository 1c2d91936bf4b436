package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/domain/enrichment"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/csvio"
	"github.com/firmint/firmint/infrastructure/memstore"
)

// fakeEnricher implements the domain Enricher with scripted results. When no
// script is set, every name yields an ok record with a canned website.
type fakeEnricher struct {
	records  []enrichment.Record
	err      error
	gotNames []string
}

func (f *fakeEnricher) Enrich(_ context.Context, names []string, opts ...domainservice.EnrichOption) ([]enrichment.Record, error) {
	f.gotNames = names
	if f.err != nil {
		return nil, f.err
	}

	records := f.records
	if records == nil {
		records = make([]enrichment.Record, 0, len(names))
		for _, name := range names {
			fields := enrichment.NewFields("https://example.com", "", "", "")
			records = append(records, enrichment.NewRecord(name, fields))
		}
	}

	cfg := domainservice.NewEnrichConfig(opts...)
	if cfg.Progress() != nil {
		for i := range records {
			cfg.Progress()(i+1, len(records))
		}
	}
	return records, nil
}

type batchesFixture struct {
	svc         *Batches
	store       *memstore.BatchStore
	taskStore   *memstore.TaskStore
	statusStore *memstore.StatusStore
	enricher    *fakeEnricher
}

func newBatchesFixture() *batchesFixture {
	store := memstore.NewBatchStore()
	taskStore := memstore.NewTaskStore()
	statusStore := memstore.NewStatusStore()
	enricher := &fakeEnricher{}
	queue := NewQueue(taskStore, discardLogger())
	return &batchesFixture{
		svc:         NewBatches(store, statusStore, queue, enricher, discardLogger()),
		store:       store,
		taskStore:   taskStore,
		statusStore: statusStore,
		enricher:    enricher,
	}
}

func TestBatches_Create_SavesPendingBatchAndQueuesTask(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI", "Zoho"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID())
	assert.Equal(t, "companies.csv", created.Source())
	assert.Equal(t, batch.StatePending, created.State())
	assert.Equal(t, []string{"OpenAI", "Zoho"}, created.Names())

	next, found, err := fx.taskStore.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, found)
	batchID, ok := next.BatchID()
	require.True(t, ok)
	assert.Equal(t, created.ID(), batchID)
}

func TestBatches_Create_FiltersBlankNames(t *testing.T) {
	fx := newBatchesFixture()

	created, err := fx.svc.Create(context.Background(), "api", []string{"  OpenAI  ", "", "   ", "Zoho"})
	require.NoError(t, err)
	assert.Equal(t, []string{"OpenAI", "Zoho"}, created.Names())
}

func TestBatches_Create_NoUsableNames(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, "api", []string{"", "   "})
	require.ErrorIs(t, err, domainservice.ErrNoInput)

	// Rejected input must not leave anything behind.
	count, err := fx.taskStore.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, total, err := fx.store.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBatches_CreateFromCSV(t *testing.T) {
	fx := newBatchesFixture()

	input := "company_name,notes\nOpenAI,ai lab\nZoho,\n"
	created, err := fx.svc.CreateFromCSV(context.Background(), "upload.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "upload.csv", created.Source())
	assert.Equal(t, []string{"OpenAI", "Zoho"}, created.Names())
}

func TestBatches_CreateFromCSV_MissingColumn(t *testing.T) {
	fx := newBatchesFixture()

	_, err := fx.svc.CreateFromCSV(context.Background(), "bad.csv", strings.NewReader("name\nOpenAI\n"))
	require.ErrorIs(t, err, csvio.ErrNoCompanyColumn)
}

func TestBatches_Run_SavesRecordsInOrder(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI", "Zoho", "Stripe"})
	require.NoError(t, err)

	done, err := fx.svc.Run(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateCompleted, done.State())
	assert.Equal(t, []string{"OpenAI", "Zoho", "Stripe"}, fx.enricher.gotNames)

	records := done.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "OpenAI", records[0].CompanyName())
	assert.Equal(t, "Zoho", records[1].CompanyName())
	assert.Equal(t, "Stripe", records[2].CompanyName())

	// The stored copy reflects the run too.
	stored, err := fx.svc.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateCompleted, stored.State())
	assert.Len(t, stored.Records(), 3)
}

func TestBatches_Run_ReportsProgress(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI", "Zoho"})
	require.NoError(t, err)

	var seen []int
	_, err = fx.svc.Run(ctx, created.ID(), domainservice.WithEnrichProgress(func(completed, total int) {
		seen = append(seen, completed)
		assert.Equal(t, 2, total)
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestBatches_Run_EngineErrorMarksBatchFailed(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI"})
	require.NoError(t, err)

	fx.enricher.err = context.Canceled
	_, err = fx.svc.Run(ctx, created.ID())
	require.ErrorIs(t, err, context.Canceled)

	stored, err := fx.svc.Get(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateFailed, stored.State())
	assert.Contains(t, stored.ErrorMessage(), "context canceled")
}

func TestBatches_Run_UnknownBatch(t *testing.T) {
	fx := newBatchesFixture()

	_, err := fx.svc.Run(context.Background(), 404)
	require.ErrorIs(t, err, batch.ErrNotFound)
}

func TestBatches_Delete_DrainsPendingTaskAndStatuses(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI"})
	require.NoError(t, err)

	_, err = fx.statusStore.Save(ctx, task.NewStatus(task.OperationEnrichBatch, created.ID()))
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, created.ID()))

	_, err = fx.svc.Get(ctx, created.ID())
	require.ErrorIs(t, err, batch.ErrNotFound)

	count, err := fx.taskStore.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	statuses, err := fx.statusStore.FindByBatch(ctx, created.ID())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestBatches_Delete_UnknownBatch(t *testing.T) {
	fx := newBatchesFixture()

	err := fx.svc.Delete(context.Background(), 404)
	require.ErrorIs(t, err, batch.ErrNotFound)
}

func TestBatches_ExportCSV_NotReadyUntilTerminal(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI"})
	require.NoError(t, err)

	_, err = fx.svc.ExportCSV(ctx, created.ID())
	require.ErrorIs(t, err, ErrBatchNotReady)
}

func TestBatches_ExportCSV_CompletedBatch(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	fx.enricher.records = []enrichment.Record{
		enrichment.NewRecord("OpenAI", enrichment.NewFields("https://openai.com", "Artificial Intelligence", "1001-5000", "San Francisco, California, United States")),
		enrichment.NewFailedRecord("Hooli", "service unavailable"),
	}

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI", "Hooli"})
	require.NoError(t, err)
	_, err = fx.svc.Run(ctx, created.ID())
	require.NoError(t, err)

	data, err := fx.svc.ExportCSV(ctx, created.ID())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "company_name,website,industry,company_size,hq_location,status,error_message", lines[0])
	assert.Equal(t, "OpenAI,https://openai.com,Artificial Intelligence,1001-5000,\"San Francisco, California, United States\",ok,", lines[1])
	assert.Equal(t, "Hooli,,,,,failed,service unavailable", lines[2])
}

func TestBatches_Stats(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	fx.enricher.records = []enrichment.Record{
		enrichment.NewRecord("OpenAI", enrichment.NewFields("https://openai.com", "", "", "")),
		enrichment.NewRecord("Zoho", enrichment.NewFields("https://zoho.com", "", "", "")),
		enrichment.NewRecord("Stripe", enrichment.NewFields("https://stripe.com", "", "", "")),
		enrichment.NewFailedRecord("Hooli", "rate limited"),
	}

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"OpenAI", "Zoho", "Stripe", "Hooli"})
	require.NoError(t, err)
	_, err = fx.svc.Run(ctx, created.ID())
	require.NoError(t, err)

	stats, err := fx.svc.Stats(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, BatchStats{Total: 4, Succeeded: 3, Failed: 1}, stats)
	assert.InDelta(t, 75.0, stats.SuccessRate(), 0.001)
}

func TestBatchStats_SuccessRate_Empty(t *testing.T) {
	assert.Zero(t, BatchStats{}.SuccessRate())
}

func TestStatsForRecords(t *testing.T) {
	records := []enrichment.Record{
		enrichment.NewRecord("OpenAI", enrichment.NewFields("https://openai.com", "", "", "")),
		enrichment.NewFailedRecord("Hooli", "boom"),
	}

	stats := StatsForRecords(records)
	assert.Equal(t, BatchStats{Total: 2, Succeeded: 1, Failed: 1}, stats)
	assert.InDelta(t, 50.0, stats.SuccessRate(), 0.001)
}

func TestBatches_Run_FailureRecordsDoNotFailBatch(t *testing.T) {
	fx := newBatchesFixture()
	ctx := context.Background()

	fx.enricher.records = []enrichment.Record{
		enrichment.NewFailedRecord("Hooli", "provider error"),
	}

	created, err := fx.svc.Create(ctx, "companies.csv", []string{"Hooli"})
	require.NoError(t, err)

	done, err := fx.svc.Run(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateCompleted, done.State())

	succeeded, failed := done.RecordCounts()
	assert.Zero(t, succeeded)
	assert.Equal(t, 1, failed)
}
