package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/mercatus/internal/models"
)

// PipelineRunner produces a fresh market snapshot from the live page.
// A run is pure: same page content, same snapshot records and chart.
type PipelineRunner interface {
	Run(ctx context.Context) (*models.MarketSnapshot, error)
}

// SnapshotService serves memoized snapshots within a freshness window and
// supports forced refresh. Current may fall back to a stale snapshot when
// a refresh fails; Refresh always reports the failure.
type SnapshotService interface {
	Current(ctx context.Context) (*models.MarketSnapshot, error)
	Refresh(ctx context.Context) (*models.MarketSnapshot, error)
	TTL() time.Duration
}
