package snapshot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/models"
)

// mockPipeline counts runs and serves canned results
type mockPipeline struct {
	mu      sync.Mutex
	runs    int
	result  *models.MarketSnapshot
	err     error
	perCall func(run int) (*models.MarketSnapshot, error)
}

func (m *mockPipeline) Run(ctx context.Context) (*models.MarketSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	if m.perCall != nil {
		return m.perCall(m.runs)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockPipeline) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// memStorage is an in-memory SnapshotStorage
type memStorage struct {
	mu     sync.Mutex
	latest *models.MarketSnapshot
	puts   int
}

func (s *memStorage) Put(ctx context.Context, snapshot *models.MarketSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snapshot
	s.puts++
	return nil
}

func (s *memStorage) Latest(ctx context.Context) (*models.MarketSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, interfaces.ErrSnapshotNotFound
	}
	return s.latest, nil
}

func newSnapshot(id string, age time.Duration) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		ID:        id,
		FetchedAt: time.Now().UTC().Add(-age),
		Records:   []models.MergedRecord{{Ticker: "AAA", Sector: "Tech", MarketCapMUSD: 100, ReturnPct: 0.01}},
	}
}

func TestCurrentRunsPipelineWhenEmpty(t *testing.T) {
	pipeline := &mockPipeline{result: newSnapshot("fresh", 0)}
	storage := &memStorage{}
	service := NewService(pipeline, storage, nil, arbor.NewLogger())

	got, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.ID)
	assert.Equal(t, 1, pipeline.runCount())
	assert.Equal(t, 1, storage.puts)
}

func TestCurrentReusesFreshSnapshot(t *testing.T) {
	pipeline := &mockPipeline{result: newSnapshot("fresh", 0)}
	service := NewService(pipeline, &memStorage{}, nil, arbor.NewLogger())

	_, err := service.Current(context.Background())
	require.NoError(t, err)
	_, err = service.Current(context.Background())
	require.NoError(t, err)

	// Second call hits the memoized copy
	assert.Equal(t, 1, pipeline.runCount())
}

func TestCurrentAdoptsStoredSnapshot(t *testing.T) {
	stored := newSnapshot("stored", time.Minute)
	storage := &memStorage{latest: stored}
	pipeline := &mockPipeline{result: newSnapshot("new", 0)}
	service := NewService(pipeline, storage, nil, arbor.NewLogger())

	got, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored", got.ID)
	assert.Equal(t, 0, pipeline.runCount())
}

func TestCurrentRefreshesWhenStored_Stale(t *testing.T) {
	storage := &memStorage{latest: newSnapshot("stale", 2*time.Hour)}
	pipeline := &mockPipeline{result: newSnapshot("new", 0)}
	service := NewService(pipeline, storage, nil, arbor.NewLogger())

	got, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, 1, pipeline.runCount())
}

func TestCurrentServesStaleOnRefreshFailure(t *testing.T) {
	pipeline := &mockPipeline{perCall: func(run int) (*models.MarketSnapshot, error) {
		if run == 1 {
			return newSnapshot("old", 0), nil
		}
		return nil, fmt.Errorf("upstream down")
	}}
	service := NewService(pipeline, &memStorage{}, nil, arbor.NewLogger()).WithTTL(50 * time.Millisecond)

	first, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", first.ID)

	// Let the snapshot age past the TTL, then fail the refresh
	time.Sleep(60 * time.Millisecond)

	got, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", got.ID, "stale snapshot should be served when refresh fails")
}

func TestRefreshReportsFailure(t *testing.T) {
	pipeline := &mockPipeline{err: fmt.Errorf("upstream down")}
	service := NewService(pipeline, &memStorage{}, nil, arbor.NewLogger())

	_, err := service.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestRefreshPublishesEvent(t *testing.T) {
	pipeline := &mockPipeline{result: newSnapshot("fresh", 0)}
	eventService := &captureEvents{}
	service := NewService(pipeline, &memStorage{}, eventService, arbor.NewLogger())

	_, err := service.Refresh(context.Background())
	require.NoError(t, err)

	events := eventService.published()
	require.Len(t, events, 1)
	assert.Equal(t, interfaces.EventSnapshotRefreshed, events[0].Type)
}

func TestConcurrentRefreshRunsPipelineOnce(t *testing.T) {
	pipeline := &mockPipeline{perCall: func(run int) (*models.MarketSnapshot, error) {
		time.Sleep(100 * time.Millisecond)
		return newSnapshot(fmt.Sprintf("run-%d", run), 0), nil
	}}
	service := NewService(pipeline, &memStorage{}, nil, arbor.NewLogger())

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	// Waiters adopt the result that landed while they queued
	assert.Equal(t, 1, pipeline.runCount())
}

// captureEvents records published events
type captureEvents struct {
	mu     sync.Mutex
	events []interfaces.Event
}

func (c *captureEvents) Subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) error {
	return nil
}

func (c *captureEvents) Publish(ctx context.Context, event interfaces.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEvents) published() []interfaces.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interfaces.Event(nil), c.events...)
}
