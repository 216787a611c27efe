package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// latestKey is the single key the snapshot store writes. Only the most
// recent snapshot is kept; history is explicitly not stored.
const latestKey = "snapshot:latest"

// SnapshotStorage implements interfaces.SnapshotStorage for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// Put replaces the stored snapshot with the given one
func (s *SnapshotStorage) Put(ctx context.Context, snapshot *models.MarketSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("cannot store nil snapshot")
	}

	if err := s.db.Store().Upsert(latestKey, snapshot); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Debug().
		Str("snapshot_id", snapshot.ID).
		Str("fetched_at", snapshot.FetchedAt.Format(time.RFC3339)).
		Int("records", len(snapshot.Records)).
		Msg("Snapshot stored")

	return nil
}

// Latest returns the stored snapshot, or ErrSnapshotNotFound when
// nothing has been stored yet
func (s *SnapshotStorage) Latest(ctx context.Context) (*models.MarketSnapshot, error) {
	var snapshot models.MarketSnapshot
	err := s.db.Store().Get(latestKey, &snapshot)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return &snapshot, nil
}
