package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	cleanupJob       *CleanupJob
	occupancyJob     *OccupancyJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	CleanupJob       *CleanupJob
	OccupancyJob     *OccupancyJob
	Logger           zerolog.Logger
}

// JobMessage represents a worker job message. Reservation lifecycle
// events carry the trip whose occupancy must be re-derived.
type JobMessage struct {
	JobType       string `json:"job_type"`
	TripID        string `json:"trip_id,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
	Status        string `json:"status,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
}

// Job type values accepted by the worker.
const (
	JobReservationCreated   = "reservation.created"
	JobReservationApproved  = "reservation.approved"
	JobReservationCancelled = "reservation.cancelled"
	JobMediaCleanup         = "media.cleanup"
)

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		cleanupJob:       cfg.CleanupJob,
		occupancyJob:     cfg.OccupancyJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Data, &jobMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch jobMsg.JobType {
	case JobReservationCreated, JobReservationApproved, JobReservationCancelled:
		err = h.handleReservationChanged(ctx, jobMsg)
	case JobMediaCleanup:
		err = h.handleMediaCleanup(ctx, jobMsg)
	default:
		logger.Warn().Str("job_type", jobMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", jobMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleReservationChanged(ctx context.Context, msg JobMessage) error {
	if msg.TripID == "" {
		// Nothing to sync against; treat as handled.
		h.logger.Warn().Str("reservation_id", msg.ReservationID).Msg("reservation event without trip")
		return nil
	}

	h.logger.Info().
		Str("trip_id", msg.TripID).
		Str("reservation_id", msg.ReservationID).
		Str("status", msg.Status).
		Msg("syncing occupancy after reservation change")

	return h.occupancyJob.SyncTrip(ctx, msg.TripID)
}

func (h *PubSubHandler) handleMediaCleanup(ctx context.Context, msg JobMessage) error {
	job := h.cleanupJob
	if msg.DryRun {
		cfg := job.config
		cfg.DryRun = true
		job = NewCleanupJob(CleanupJobConfig{
			Config:       cfg,
			Logger:       h.logger,
			TripService:  job.trips,
			PageService:  job.pages,
			MediaService: job.media,
		})
	}

	result := job.Run(ctx)
	if result.Failed > result.Deleted {
		return fmt.Errorf("too many delete failures: %d/%d", result.Failed, result.Scanned)
	}
	return nil
}
