package trip

import "context"

// ListOptions contains filters and pagination for listing trips.
type ListOptions struct {
	Status   Status
	TripType TripType
	Query    string
	Limit    int
	Cursor   string
}

// ListResult contains one page of trips.
type ListResult struct {
	Items      []*Trip
	NextCursor string
}

// Repository defines the interface for trip persistence.
type Repository interface {
	// Get retrieves a trip by ID. Returns ErrTripNotFound if absent.
	Get(ctx context.Context, id string) (*Trip, error)

	// List retrieves trips with filtering and pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create persists a new trip.
	Create(ctx context.Context, t *Trip) error

	// Update replaces an existing trip.
	Update(ctx context.Context, t *Trip) error

	// Delete removes a trip by ID.
	Delete(ctx context.Context, id string) error
}
