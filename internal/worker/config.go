// Package worker provides background job processing for TripDesk.
package worker

import (
	"time"
)

// CleanupConfig holds configuration for the media cleanup job.
type CleanupConfig struct {
	// PageSize is how many trips are loaded per repository call while
	// scanning for referenced images. Default: 200.
	PageSize int

	// Timeout is the timeout for one full cleanup run.
	// Default: 5 minutes.
	Timeout time.Duration

	// DryRun logs orphaned objects without deleting them.
	DryRun bool
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		PageSize: 200,
		Timeout:  5 * time.Minute,
	}
}

// LoopConfig holds configuration for the synchronous fallback loop
// used when Pub/Sub is not configured.
type LoopConfig struct {
	// CleanupInterval is how often the media cleanup job runs.
	// Default: 24 hours.
	CleanupInterval time.Duration

	// OccupancyInterval is how often every trip's term occupancy is
	// re-derived from its reservations. Default: 15 minutes.
	OccupancyInterval time.Duration
}

// DefaultLoopConfig returns the default loop configuration.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		CleanupInterval:   24 * time.Hour,
		OccupancyInterval: 15 * time.Minute,
	}
}
