// Package snapshot memoizes the latest pipeline result within a
// freshness window and coordinates forced refreshes. It is the caching
// collaborator around the pure pipeline: TTL-based reuse, persistence of
// the single latest snapshot, and a refresh event for connected clients.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/models"
)

// DefaultTTL is the freshness window when none is configured.
const DefaultTTL = time.Hour

// Service implements interfaces.SnapshotService.
type Service struct {
	pipeline     interfaces.PipelineRunner
	storage      interfaces.SnapshotStorage
	eventService interfaces.EventService
	logger       arbor.ILogger
	ttl          time.Duration

	mu      sync.RWMutex // guards latest
	refresh sync.Mutex   // serializes pipeline runs
	latest  *models.MarketSnapshot
}

// NewService creates the snapshot service.
func NewService(pipeline interfaces.PipelineRunner, storage interfaces.SnapshotStorage, eventService interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		pipeline:     pipeline,
		storage:      storage,
		eventService: eventService,
		logger:       logger,
		ttl:          DefaultTTL,
	}
}

// WithTTL sets a custom freshness window.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// TTL returns the configured freshness window.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Current returns a snapshot no older than the TTL: the in-memory copy
// when fresh, the stored copy when that is fresh, otherwise a full
// refresh. When the refresh fails but an earlier snapshot exists, the
// stale snapshot is served with a warning rather than blanking the page;
// callers that need the failure surfaced use Refresh directly.
func (s *Service) Current(ctx context.Context) (*models.MarketSnapshot, error) {
	s.mu.RLock()
	cached := s.latest
	s.mu.RUnlock()

	if cached.IsFresh(s.ttl) {
		return cached, nil
	}

	if stored := s.loadStored(ctx); stored.IsFresh(s.ttl) {
		s.logger.Debug().
			Str("snapshot_id", stored.ID).
			Str("fetched_at", stored.FetchedAt.Format(time.RFC3339)).
			Msg("Adopting stored snapshot")
		s.adopt(stored)
		return stored, nil
	}

	refreshed, err := s.Refresh(ctx)
	if err == nil {
		return refreshed, nil
	}

	s.mu.RLock()
	stale := s.latest
	s.mu.RUnlock()
	if stale != nil {
		s.logger.Warn().
			Err(err).
			Str("snapshot_id", stale.ID).
			Msg("Refresh failed, serving stale snapshot")
		return stale, nil
	}

	return nil, err
}

// Refresh runs the pipeline unconditionally, persists the result and
// publishes a refresh event. Concurrent callers are serialized; the
// second caller reuses a result that landed while it waited rather than
// hitting the source page twice.
func (s *Service) Refresh(ctx context.Context) (*models.MarketSnapshot, error) {
	waitStart := time.Now()
	s.refresh.Lock()
	defer s.refresh.Unlock()

	// Another caller may have refreshed while this one waited on the lock
	s.mu.RLock()
	cached := s.latest
	s.mu.RUnlock()
	if cached != nil && cached.FetchedAt.After(waitStart) {
		return cached, nil
	}

	snapshot, err := s.pipeline.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Snapshot refresh failed")
		s.publish(ctx, interfaces.Event{
			Type:    interfaces.EventRefreshFailed,
			Payload: map[string]string{"error": err.Error()},
		})
		return nil, err
	}

	if storeErr := s.storage.Put(ctx, snapshot); storeErr != nil {
		s.logger.Warn().Err(storeErr).Msg("Failed to persist snapshot")
	}

	s.adopt(snapshot)

	s.publish(ctx, interfaces.Event{
		Type: interfaces.EventSnapshotRefreshed,
		Payload: map[string]interface{}{
			"snapshot_id": snapshot.ID,
			"fetched_at":  snapshot.FetchedAt.Format(time.RFC3339),
			"records":     len(snapshot.Records),
		},
	})

	return snapshot, nil
}

func (s *Service) adopt(snapshot *models.MarketSnapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()
}

func (s *Service) loadStored(ctx context.Context) *models.MarketSnapshot {
	if s.storage == nil {
		return nil
	}
	stored, err := s.storage.Latest(ctx)
	if err != nil {
		if !errors.Is(err, interfaces.ErrSnapshotNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to load stored snapshot")
		}
		return nil
	}
	return stored
}

func (s *Service) publish(ctx context.Context, event interfaces.Event) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to publish event")
	}
}
