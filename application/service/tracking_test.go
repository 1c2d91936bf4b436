package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/memstore"
)

func TestTracking_ForBatch(t *testing.T) {
	store := memstore.NewStatusStore()
	svc := NewTracking(store, discardLogger())
	ctx := context.Background()

	_, err := store.Save(ctx, task.NewStatus(task.OperationEnrichBatch, 1))
	require.NoError(t, err)
	_, err = store.Save(ctx, task.NewStatus(task.OperationEnrichBatch, 2))
	require.NoError(t, err)

	statuses, err := svc.ForBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, int64(1), statuses[0].BatchID())
}

func TestTracking_EnrichmentStatus(t *testing.T) {
	store := memstore.NewStatusStore()
	svc := NewTracking(store, discardLogger())
	ctx := context.Background()

	status := task.NewStatus(task.OperationEnrichBatch, 7).SetTotal(4).SetCurrent(2, "halfway")
	_, err := store.Save(ctx, status)
	require.NoError(t, err)

	got, found, err := svc.EnrichmentStatus(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, task.ReportingStateInProgress, got.State())
	assert.InDelta(t, 50.0, got.CompletionPercent(), 0.001)
}

func TestTracking_EnrichmentStatus_NotStarted(t *testing.T) {
	svc := NewTracking(memstore.NewStatusStore(), discardLogger())

	_, found, err := svc.EnrichmentStatus(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, found)
}
