// Package pipeline runs the core market snapshot pipeline: fetch the
// source page, extract its tables, build sector and return datasets,
// merge them on ticker, classify each return and construct the treemap
// specification. A run is pure with respect to page content; all state
// is built fresh per invocation.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/htmltable"
	"github.com/ternarybob/mercatus/internal/models"
	"github.com/ternarybob/mercatus/internal/services/treemap"
)

// PageFetcher retrieves the raw HTML of the source page.
type PageFetcher interface {
	FetchPage(ctx context.Context) (string, error)
	URL() string
}

// Service implements interfaces.PipelineRunner.
type Service struct {
	fetcher     PageFetcher
	treemap     *treemap.Builder
	sectorIndex int
	returnIndex int
	logger      arbor.ILogger
}

// NewService creates the pipeline service. sectorIndex and returnIndex
// pin the positions of the two tables on the source page.
func NewService(fetcher PageFetcher, treemapBuilder *treemap.Builder, sectorIndex, returnIndex int, logger arbor.ILogger) *Service {
	return &Service{
		fetcher:     fetcher,
		treemap:     treemapBuilder,
		sectorIndex: sectorIndex,
		returnIndex: returnIndex,
		logger:      logger,
	}
}

// Run executes one full pipeline pass and returns a complete snapshot.
// Any fatal stage failure returns (nil, err); Run never returns a
// snapshot built from partial data.
func (s *Service) Run(ctx context.Context) (*models.MarketSnapshot, error) {
	start := time.Now()

	html, err := s.fetcher.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.runOnHTML(html)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("records", len(snapshot.Records)).
		Int("positive", snapshot.Summary.Positive).
		Int("negative", snapshot.Summary.Negative).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")

	return snapshot, nil
}

// runOnHTML is the fetch-free remainder of the pipeline, split out so
// tests can drive it with fixture HTML.
func (s *Service) runOnHTML(html string) (*models.MarketSnapshot, error) {
	tables, err := htmltable.Extract(html)
	if err != nil {
		return nil, err
	}

	sectorTable, err := htmltable.At(tables, s.sectorIndex)
	if err != nil {
		return nil, err
	}
	returnTable, err := htmltable.At(tables, s.returnIndex)
	if err != nil {
		return nil, err
	}

	sectorRecords, err := s.buildSectorRecords(sectorTable)
	if err != nil {
		return nil, err
	}
	returnRecords, err := s.buildReturnRecords(returnTable)
	if err != nil {
		return nil, err
	}

	merged := mergeRecords(sectorRecords, returnRecords)

	return &models.MarketSnapshot{
		ID:        uuid.New().String(),
		FetchedAt: time.Now().UTC(),
		Source:    s.fetcher.URL(),
		Records:   merged,
		Chart:     s.treemap.Build(merged),
		Summary:   models.NewSummary(merged),
	}, nil
}
