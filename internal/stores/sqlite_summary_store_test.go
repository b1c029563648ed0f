package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"traffic-rollup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStoreForTest(t *testing.T) *SQLiteSummaryStore {
	t.Helper()
	store, err := NewSQLiteSummaryStore(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSummaryStore_RunLifecycle(t *testing.T) {
	t.Parallel()

	store := newSQLiteStoreForTest(t)
	ctx := context.Background()

	manifest := newTestManifest("run-001")
	require.NoError(t, store.CreateRun(ctx, manifest))

	summaries := newTestSummaries()
	require.NoError(t, store.SaveSummaries(ctx, "run-001", summaries))
	require.NoError(t, store.SaveSamples(ctx, "run-001", []models.WindowSample{newTestSample()}))

	completedAt := testRunStart.Add(time.Hour)
	manifest.Status = models.RunStatusCompleted
	manifest.CompletedAt = &completedAt
	require.NoError(t, store.CompleteRun(ctx, manifest))

	got, err := store.GetRun(ctx, "run-001")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, completedAt.Equal(*got.CompletedAt))

	all, err := store.ListSummaries(ctx, "run-001", "")
	require.NoError(t, err)
	assert.Equal(t, summaries, all)

	minutes, err := store.ListSummaries(ctx, "run-001", models.ResolutionMinute)
	require.NoError(t, err)
	assert.Equal(t, summaries[1:], minutes)

	samples, err := store.ListSamples(ctx, "run-001")
	require.NoError(t, err)
	assert.Equal(t, []models.WindowSample{newTestSample()}, samples)
}

func TestSQLiteSummaryStore_ListSummaries_Ordered(t *testing.T) {
	t.Parallel()

	store := newSQLiteStoreForTest(t)
	ctx := context.Background()
	require.NoError(t, store.CreateRun(ctx, newTestManifest("run-002")))

	summaries := newTestSummaries()
	shuffled := []models.WindowSummary{summaries[2], summaries[0], summaries[1]}
	require.NoError(t, store.SaveSummaries(ctx, "run-002", shuffled))

	all, err := store.ListSummaries(ctx, "run-002", "")
	require.NoError(t, err)
	assert.Equal(t, summaries, all)
}

func TestSQLiteSummaryStore_SaveSummaries_Replaces(t *testing.T) {
	t.Parallel()

	store := newSQLiteStoreForTest(t)
	ctx := context.Background()
	require.NoError(t, store.CreateRun(ctx, newTestManifest("run-003")))

	first := newTestSummary(models.ResolutionMinute, testRunStart, 10)
	second := newTestSummary(models.ResolutionMinute, testRunStart, 20)
	require.NoError(t, store.SaveSummaries(ctx, "run-003", []models.WindowSummary{first}))
	require.NoError(t, store.SaveSummaries(ctx, "run-003", []models.WindowSummary{second}))

	got, err := store.ListSummaries(ctx, "run-003", models.ResolutionMinute)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(20), got[0].TotalRequests)
}

func TestSQLiteSummaryStore_Errors(t *testing.T) {
	t.Parallel()

	store := newSQLiteStoreForTest(t)
	ctx := context.Background()

	require.NoError(t, store.CreateRun(ctx, newTestManifest("run-dup")))
	assert.ErrorIs(t, store.CreateRun(ctx, newTestManifest("run-dup")), ErrRunAlreadyExists)
	assert.ErrorIs(t, store.CreateRun(ctx, newTestManifest("../x")), ErrInvalidRunID)

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = store.ListSummaries(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = store.ListSamples(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, store.CompleteRun(ctx, newTestManifest("missing")), ErrRunNotFound)
}

func TestSQLiteSummaryStore_ListSamples_NoneSaved(t *testing.T) {
	t.Parallel()

	store := newSQLiteStoreForTest(t)
	ctx := context.Background()
	require.NoError(t, store.CreateRun(ctx, newTestManifest("quiet")))

	samples, err := store.ListSamples(ctx, "quiet")
	require.NoError(t, err)
	assert.Equal(t, []models.WindowSample{}, samples)
}
