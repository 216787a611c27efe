package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/htmltable"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/isyatirim"
	"github.com/ternarybob/mercatus/internal/models"
)

// MarketHandler serves the snapshot data the page consumes: the merged
// record set with its summary, the chart specification, and a forced
// refresh endpoint.
type MarketHandler struct {
	snapshots interfaces.SnapshotService
	logger    arbor.ILogger
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(snapshots interfaces.SnapshotService, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		snapshots: snapshots,
		logger:    logger,
	}
}

// marketResponse is the GET /api/market payload
type marketResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	FetchedAt  time.Time             `json:"fetched_at"`
	Source     string                `json:"source"`
	Stale      bool                  `json:"stale"`
	Summary    models.Summary        `json:"summary"`
	Records    []models.MergedRecord `json:"records"`
}

// GetMarketHandler handles GET /api/market
func (h *MarketHandler) GetMarketHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snapshot, err := h.snapshots.Current(r.Context())
	if err != nil {
		h.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, marketResponse{
		SnapshotID: snapshot.ID,
		FetchedAt:  snapshot.FetchedAt,
		Source:     snapshot.Source,
		Stale:      !snapshot.IsFresh(h.snapshots.TTL()),
		Summary:    snapshot.Summary,
		Records:    snapshot.Records,
	})
}

// GetChartHandler handles GET /api/market/chart
func (h *MarketHandler) GetChartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snapshot, err := h.snapshots.Current(r.Context())
	if err != nil {
		h.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snapshot.Chart)
}

// RefreshHandler handles POST /api/market/refresh. Unlike Current, a
// forced refresh reports failure even when a stale snapshot exists.
func (h *MarketHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	snapshot, err := h.snapshots.Refresh(r.Context())
	if err != nil {
		h.writeSnapshotError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "refreshed",
		"snapshot_id": snapshot.ID,
		"fetched_at":  snapshot.FetchedAt,
		"records":     len(snapshot.Records),
	})
}

// writeSnapshotError maps pipeline failures onto tagged HTTP errors.
// Upstream problems (unreachable page, changed layout) are 502: the
// service itself is healthy, the source is not.
func (h *MarketHandler) writeSnapshotError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("Snapshot request failed")

	var fetchErr *isyatirim.FetchError
	var layoutErr *htmltable.LayoutError
	var extractErr *htmltable.ExtractError

	switch {
	case errors.As(err, &fetchErr):
		WriteTaggedError(w, http.StatusBadGateway, "fetch", err.Error())
	case errors.As(err, &layoutErr):
		WriteTaggedError(w, http.StatusBadGateway, "layout", err.Error())
	case errors.As(err, &extractErr):
		WriteTaggedError(w, http.StatusBadGateway, "extract", err.Error())
	default:
		WriteTaggedError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
