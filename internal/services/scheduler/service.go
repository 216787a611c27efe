// Package scheduler runs the background snapshot refresh on a cron
// schedule, retrying transient fetch failures with exponential backoff.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mercatus/internal/htmltable"
	"github.com/ternarybob/mercatus/internal/interfaces"
)

// DefaultSchedule refreshes at the top of every hour. The cron format
// carries a seconds field.
const DefaultSchedule = "0 0 * * * *"

// maxRetryElapsed bounds one scheduled refresh including all retries.
const maxRetryElapsed = 5 * time.Minute

// Service drives periodic snapshot refreshes.
type Service struct {
	snapshots interfaces.SnapshotService
	cron      *cron.Cron
	logger    arbor.ILogger

	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastErr string
}

// NewService creates the refresh scheduler.
func NewService(snapshots interfaces.SnapshotService, logger arbor.ILogger) *Service {
	return &Service{
		snapshots: snapshots,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Service) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.runRefresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Snapshot refresh scheduler started")

	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Snapshot refresh scheduler stopped")
	return nil
}

// IsRunning reports whether the cron loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the last run time and last error, if any.
func (s *Service) Status() (lastRun *time.Time, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// runRefresh performs one scheduled refresh with retries. Fetch failures
// are transient and retried; extraction and layout failures mean the
// page itself changed, so retrying cannot help and the attempt is
// abandoned immediately.
func (s *Service) runRefresh() {
	ctx := context.Background()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++

		_, refreshErr := s.snapshots.Refresh(ctx)
		if refreshErr == nil {
			return nil
		}

		var layoutErr *htmltable.LayoutError
		var extractErr *htmltable.ExtractError
		if errors.As(refreshErr, &layoutErr) || errors.As(refreshErr, &extractErr) {
			return backoff.Permanent(refreshErr)
		}

		s.logger.Warn().
			Err(refreshErr).
			Int("attempt", attempt).
			Msg("Scheduled refresh failed, will retry")
		return refreshErr
	}, policy)

	now := time.Now()
	s.mu.Lock()
	s.lastRun = &now
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Int("attempts", attempt).
			Msg("Scheduled refresh gave up")
		return
	}

	s.logger.Debug().Int("attempts", attempt).Msg("Scheduled refresh complete")
}
