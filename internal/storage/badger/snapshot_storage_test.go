package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/common"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestSnapshotRoundTrip(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	ctx := context.Background()

	snapshot := &models.MarketSnapshot{
		ID:        "snap-1",
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Source:    "http://test.local/page",
		Records: []models.MergedRecord{
			{Ticker: "AAA", Sector: "Tech", MarketCapMUSD: 1500, ReturnPct: 0.025, Category: models.CategoryMildPositive},
		},
		Chart: &models.ChartSpec{
			Type:   "treemap",
			Labels: []string{"root"},
			IDs:    []string{"root"},
		},
		Summary: models.Summary{Total: 1, Positive: 1},
	}

	require.NoError(t, storage.Put(ctx, snapshot))

	loaded, err := storage.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, loaded.ID)
	assert.Equal(t, snapshot.Records, loaded.Records)
	assert.Equal(t, snapshot.Chart.Labels, loaded.Chart.Labels)
	assert.Equal(t, snapshot.Summary, loaded.Summary)
}

func TestLatestEmpty(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()

	_, err := storage.Latest(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrSnapshotNotFound)
}

func TestPutReplacesPrevious(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	ctx := context.Background()

	require.NoError(t, storage.Put(ctx, &models.MarketSnapshot{ID: "first", FetchedAt: time.Now().UTC()}))
	require.NoError(t, storage.Put(ctx, &models.MarketSnapshot{ID: "second", FetchedAt: time.Now().UTC()}))

	loaded, err := storage.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.ID)
}

func TestPutNil(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	assert.Error(t, storage.Put(context.Background(), nil))
}
