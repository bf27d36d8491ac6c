package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/reservation"
	"github.com/tripdesk/tripdesk/internal/trip"
)

// OccupancyJob re-derives a trip's per-term reserved counts from its
// reservations. Approvals and cancellations publish an event naming
// the trip; this job folds the change back into the stored terms so
// the editor shows live availability without recounting on every read.
type OccupancyJob struct {
	trips        *trip.Service
	reservations *reservation.Service
	logger       zerolog.Logger
}

// NewOccupancyJob creates a new occupancy sync job.
func NewOccupancyJob(trips *trip.Service, reservations *reservation.Service, logger zerolog.Logger) *OccupancyJob {
	return &OccupancyJob{
		trips:        trips,
		reservations: reservations,
		logger:       logger,
	}
}

// SyncTrip recomputes and persists term occupancy for one trip.
func (j *OccupancyJob) SyncTrip(ctx context.Context, tripID string) error {
	occupancy, err := j.reservations.Occupancy(ctx, tripID)
	if err != nil {
		return fmt.Errorf("computing occupancy for %s: %w", tripID, err)
	}

	t, err := j.trips.Get(ctx, tripID)
	if err != nil {
		if trip.IsNotFound(err) {
			// The trip may have been deleted after the event was
			// published; nothing to sync.
			j.logger.Debug().Str("trip_id", tripID).Msg("trip gone, skipping occupancy sync")
			return nil
		}
		return fmt.Errorf("loading trip %s: %w", tripID, err)
	}

	changed := false
	for i := range t.Terms {
		term := &t.Terms[i]
		switch {
		case term.Group != nil:
			occ := occupancy[term.Group.ID]
			if term.Group.ReservedPaid != occ.ReservedPaid || term.Group.ReservedFree != occ.ReservedFree {
				term.Group.ReservedPaid = occ.ReservedPaid
				term.Group.ReservedFree = occ.ReservedFree
				changed = true
			}
		case term.Individual != nil:
			occ := occupancy[term.Individual.ID]
			reserved := occ.ReservedPaid + occ.ReservedFree
			if term.Individual.Reserved != reserved {
				term.Individual.Reserved = reserved
				changed = true
			}
		}
	}

	if !changed {
		return nil
	}

	if _, err := j.trips.Update(ctx, tripID, *t); err != nil {
		return fmt.Errorf("persisting occupancy for %s: %w", tripID, err)
	}

	j.logger.Info().Str("trip_id", tripID).Msg("term occupancy synced")
	return nil
}

// SyncAll recomputes occupancy for every trip, page by page. Used by
// the fallback loop when no event stream is configured.
func (j *OccupancyJob) SyncAll(ctx context.Context, pageSize int) error {
	if pageSize <= 0 {
		pageSize = DefaultCleanupConfig().PageSize
	}

	cursor := ""
	for {
		page, err := j.trips.List(ctx, trip.ListOptions{Limit: pageSize, Cursor: cursor})
		if err != nil {
			return err
		}
		for _, t := range page.Items {
			if err := j.SyncTrip(ctx, t.ID); err != nil {
				j.logger.Error().Err(err).Str("trip_id", t.ID).Msg("occupancy sync failed")
			}
		}
		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}
