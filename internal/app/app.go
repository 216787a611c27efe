// Package app wires the application together: configuration, storage,
// the pipeline and its collaborators, and the HTTP handlers.
package app

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/common"
	"github.com/ternarybob/mercatus/internal/handlers"
	"github.com/ternarybob/mercatus/internal/interfaces"
	"github.com/ternarybob/mercatus/internal/isyatirim"
	"github.com/ternarybob/mercatus/internal/services/events"
	"github.com/ternarybob/mercatus/internal/services/pipeline"
	"github.com/ternarybob/mercatus/internal/services/scheduler"
	"github.com/ternarybob/mercatus/internal/services/snapshot"
	"github.com/ternarybob/mercatus/internal/services/treemap"
	"github.com/ternarybob/mercatus/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core pipeline and its collaborators
	PageClient       *isyatirim.Client
	PipelineService  *pipeline.Service
	EventService     *events.Service
	SnapshotService  *snapshot.Service
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	MarketHandler *handlers.MarketHandler
	PageHandler   *handlers.PageHandler
	WSHandler     *handlers.WebSocketHandler
}

// New creates and wires the application
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}

	pageClient := isyatirim.NewClient(config.Fetch.URL,
		isyatirim.WithUserAgent(config.Fetch.UserAgent),
		isyatirim.WithTimeout(config.Fetch.TimeoutDuration()),
		isyatirim.WithRateLimit(config.Fetch.RateLimit),
		isyatirim.WithMaxBodySize(int64(config.Fetch.MaxBodySize)),
		isyatirim.WithLogger(logger),
	)

	pipelineService := pipeline.NewService(
		pageClient,
		treemap.NewBuilder(logger),
		config.Tables.SectorIndex,
		config.Tables.ReturnIndex,
		logger,
	)

	eventService := events.NewService(logger)

	snapshotService := snapshot.NewService(
		pipelineService,
		storageManager.SnapshotStorage(),
		eventService,
		logger,
	).WithTTL(config.Cache.TTLDuration())

	schedulerService := scheduler.NewService(snapshotService, logger)

	app := &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		PageClient:       pageClient,
		PipelineService:  pipelineService,
		EventService:     eventService,
		SnapshotService:  snapshotService,
		SchedulerService: schedulerService,
		APIHandler:       handlers.NewAPIHandler(),
		MarketHandler:    handlers.NewMarketHandler(snapshotService, logger),
		PageHandler:      handlers.NewPageHandler(logger),
		WSHandler:        handlers.NewWebSocketHandler(eventService, logger),
	}

	if config.Cache.RefreshEnabled {
		if err := schedulerService.Start(config.Cache.RefreshSchedule); err != nil {
			logger.Warn().Err(err).Msg("Failed to start refresh scheduler")
		}
	} else {
		logger.Info().Msg("Background refresh disabled")
	}

	logger.Info().
		Str("source", pageClient.URL()).
		Str("cache_ttl", config.Cache.TTL).
		Msg("Application initialized")

	return app, nil
}

// Close shuts down application components in reverse dependency order
func (a *App) Close() {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.EventService != nil {
		a.EventService.Close()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}

	a.Logger.Info().Msg("Application closed")
}
