package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/extrafields"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/trip"
)

// CleanupJob removes stored images that no trip or content page
// references anymore. Deleting a trip does not delete its images
// synchronously; this job sweeps them up afterwards.
type CleanupJob struct {
	config CleanupConfig
	logger zerolog.Logger

	trips *trip.Service
	pages *content.Service
	media *media.Service

	metrics *CleanupMetrics
}

// CleanupMetrics tracks cleanup job statistics.
type CleanupMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	ScannedObjects int64
	DeletedObjects int64
	FailedDeletes  int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// CleanupJobConfig holds configuration for creating a CleanupJob.
type CleanupJobConfig struct {
	Config       CleanupConfig
	Logger       zerolog.Logger
	TripService  *trip.Service
	PageService  *content.Service
	MediaService *media.Service
}

// NewCleanupJob creates a new cleanup job processor.
func NewCleanupJob(cfg CleanupJobConfig) *CleanupJob {
	config := cfg.Config
	if config.PageSize <= 0 {
		config.PageSize = DefaultCleanupConfig().PageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultCleanupConfig().Timeout
	}

	return &CleanupJob{
		config:  config,
		logger:  cfg.Logger,
		trips:   cfg.TripService,
		pages:   cfg.PageService,
		media:   cfg.MediaService,
		metrics: &CleanupMetrics{},
	}
}

// CleanupResult contains the result of a cleanup run.
type CleanupResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Scanned    int
	Referenced int
	Deleted    int
	Failed     int
	Errors     []CleanupError
}

// CleanupError represents one object that could not be deleted.
type CleanupError struct {
	Key   string
	Error string
}

// Run executes one cleanup sweep.
func (j *CleanupJob) Run(ctx context.Context) *CleanupResult {
	startTime := time.Now()
	result := &CleanupResult{StartTime: startTime}

	runCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.logger.Info().Bool("dry_run", j.config.DryRun).Msg("starting media cleanup job")

	referenced, err := j.collectReferencedKeys(runCtx)
	if err != nil {
		j.logger.Error().Err(err).Msg("collecting referenced keys failed")
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}
	result.Referenced = len(referenced)

	stored, err := j.media.ListKeys(runCtx)
	if err != nil {
		j.logger.Error().Err(err).Msg("listing stored objects failed")
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}
	result.Scanned = len(stored)

	for _, key := range stored {
		if referenced[key] {
			continue
		}
		if j.config.DryRun {
			j.logger.Info().Str("key", key).Msg("orphaned object (dry run)")
			continue
		}
		if err := j.media.Delete(runCtx, key); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, CleanupError{Key: key, Error: err.Error()})
			continue
		}
		result.Deleted++
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("scanned", result.Scanned).
		Int("referenced", result.Referenced).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Msg("media cleanup job completed")

	return result
}

// collectReferencedKeys walks every trip and content page and gathers
// the storage keys of all images they still use.
func (j *CleanupJob) collectReferencedKeys(ctx context.Context) (map[string]bool, error) {
	referenced := make(map[string]bool)

	cursor := ""
	for {
		page, err := j.trips.List(ctx, trip.ListOptions{Limit: j.config.PageSize, Cursor: cursor})
		if err != nil {
			return nil, err
		}
		for _, t := range page.Items {
			j.collectTripKeys(t, referenced)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if j.pages != nil {
		pages, err := j.pages.List(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, p := range pages {
			collectNodeKeys(p.ExtraFields, referenced)
		}
	}

	return referenced, nil
}

func (j *CleanupJob) collectTripKeys(t *trip.Trip, referenced map[string]bool) {
	markURL(referenced, t.MainImageURL)
	for _, url := range t.GalleryImageURLs {
		markURL(referenced, url)
	}
	for _, day := range t.ItineraryDays {
		markURL(referenced, day.ImageURL)
	}

	if len(t.ExtraFields) > 0 {
		var nodes []extrafields.Node
		if err := json.Unmarshal(t.ExtraFields, &nodes); err != nil {
			j.logger.Warn().Str("trip_id", t.ID).Err(err).Msg("unreadable extra fields, keeping all images")
			return
		}
		collectNodeKeys(nodes, referenced)
	}
}

func collectNodeKeys(nodes []extrafields.Node, referenced map[string]bool) {
	for _, n := range nodes {
		if n.Type == extrafields.TypeImage && n.ImageValue != nil {
			markURL(referenced, *n.ImageValue)
		}
		if n.Type == extrafields.TypeRepeater {
			for _, row := range n.Rows {
				collectNodeKeys(row, referenced)
			}
		}
	}
}

// markURL resolves a stored image URL back to its storage key and
// marks it referenced together with its thumbnail.
func markURL(referenced map[string]bool, url string) {
	if url == "" {
		return
	}
	key := strings.TrimPrefix(url, "/v1/files/")
	if idx := strings.Index(key, "media/"); idx > 0 {
		key = key[idx:]
	}
	if !strings.HasPrefix(key, "media/") {
		return
	}
	referenced[key] = true
	if thumb := media.ThumbnailKey(key); thumb != "" {
		referenced[thumb] = true
	}
}

func (j *CleanupJob) updateMetrics(result *CleanupResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.ScannedObjects += int64(result.Scanned)
	j.metrics.DeletedObjects += int64(result.Deleted)
	j.metrics.FailedDeletes += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *CleanupJob) GetMetrics() CleanupMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return CleanupMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		ScannedObjects:  j.metrics.ScannedObjects,
		DeletedObjects:  j.metrics.DeletedObjects,
		FailedDeletes:   j.metrics.FailedDeletes,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *CleanupJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"scanned_objects":   m.ScannedObjects,
		"deleted_objects":   m.DeletedObjects,
		"failed_deletes":    m.FailedDeletes,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
	}
}
