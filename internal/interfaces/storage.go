// -----------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 9:42:11 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/mercatus/internal/models"
)

// ErrSnapshotNotFound is returned when no snapshot has been stored yet
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStorage persists the latest market snapshot. Only one snapshot
// is ever kept; Put replaces it.
type SnapshotStorage interface {
	Put(ctx context.Context, snapshot *models.MarketSnapshot) error
	Latest(ctx context.Context) (*models.MarketSnapshot, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	Close() error
}
