package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Loop runs the worker jobs on timers instead of Pub/Sub messages.
// Used when no event stream is configured, typically in small
// deployments or local development.
type Loop struct {
	config       LoopConfig
	cleanupJob   *CleanupJob
	occupancyJob *OccupancyJob
	logger       zerolog.Logger
}

// NewLoop creates the fallback loop runner.
func NewLoop(cfg LoopConfig, cleanupJob *CleanupJob, occupancyJob *OccupancyJob, logger zerolog.Logger) *Loop {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultLoopConfig().CleanupInterval
	}
	if cfg.OccupancyInterval <= 0 {
		cfg.OccupancyInterval = DefaultLoopConfig().OccupancyInterval
	}

	return &Loop{
		config:       cfg,
		cleanupJob:   cleanupJob,
		occupancyJob: occupancyJob,
		logger:       logger,
	}
}

// Run blocks until the context is cancelled, firing each job on its
// interval. The occupancy sweep runs once at startup so a restarted
// worker converges immediately.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().
		Dur("cleanup_interval", l.config.CleanupInterval).
		Dur("occupancy_interval", l.config.OccupancyInterval).
		Msg("starting worker loop")

	if err := l.occupancyJob.SyncAll(ctx, 0); err != nil {
		l.logger.Error().Err(err).Msg("initial occupancy sweep failed")
	}

	cleanupTicker := time.NewTicker(l.config.CleanupInterval)
	defer cleanupTicker.Stop()
	occupancyTicker := time.NewTicker(l.config.OccupancyInterval)
	defer occupancyTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("worker loop stopping")
			return ctx.Err()
		case <-occupancyTicker.C:
			if err := l.occupancyJob.SyncAll(ctx, 0); err != nil {
				l.logger.Error().Err(err).Msg("occupancy sweep failed")
			}
		case <-cleanupTicker.C:
			l.cleanupJob.Run(ctx)
		}
	}
}
