package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"

	"github.com/tripdesk/tripdesk/internal/reservation"
)

// PubSubPublisher publishes reservation lifecycle events to the worker
// topic. It implements reservation.Publisher for the API process.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// NewPubSubPublisher creates a publisher for the given topic.
func NewPubSubPublisher(ctx context.Context, projectID, topicName string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(topicName),
	}, nil
}

// ReservationChanged publishes one lifecycle event. The job type
// follows the reservation's new status.
func (p *PubSubPublisher) ReservationChanged(ctx context.Context, r *reservation.Reservation) error {
	msg := JobMessage{
		JobType:       jobTypeFor(r.Status),
		TripID:        r.TripID,
		ReservationID: r.ID,
		Status:        string(r.Status),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding reservation event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing reservation event: %w", err)
	}
	return nil
}

// Close stops the publisher and releases the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

func jobTypeFor(status reservation.Status) string {
	switch status {
	case reservation.StatusConfirmed:
		return JobReservationApproved
	case reservation.StatusCancelled:
		return JobReservationCancelled
	default:
		return JobReservationCreated
	}
}
