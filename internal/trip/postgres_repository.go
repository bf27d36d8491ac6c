package trip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Indexed columns carry the list filters; everything nested (terms,
// itinerary, departure options, addons, extra fields) lives in one
// JSONB document per trip.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a trip by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Trip, error) {
	query := `
		SELECT document
		FROM trips
		WHERE id = $1
	`

	var doc []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	var t Trip
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("decoding trip document: %w", err)
	}
	return &t, nil
}

// List retrieves trips with filtering and pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	// Keyset pagination: the cursor is the last trip ID of the previous
	// page, resolved to its (created_at, id) sort key. A cursor whose
	// trip was deleted in the meantime yields an empty page.
	query := `
		SELECT document
		FROM trips
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR trip_type = $2)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR (created_at, id) < (SELECT created_at, id FROM trips WHERE id = $4))
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`

	rows, err := r.pool.Query(ctx, query,
		string(opts.Status), string(opts.TripType), opts.Query, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t Trip
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decoding trip document: %w", err)
		}
		trips = append(trips, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: trips}
	if len(trips) > limit {
		result.Items = trips[:limit]
		result.NextCursor = trips[limit-1].ID
	}
	return result, nil
}

// Create persists a new trip.
func (r *PostgresRepository) Create(ctx context.Context, t *Trip) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding trip document: %w", err)
	}

	query := `
		INSERT INTO trips (
			id, name, status, trip_type, category_id, featured,
			document, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		t.ID, t.Name, string(t.Status), string(t.TripType), t.CategoryID,
		t.Featured, doc, t.CreatedAt, t.UpdatedAt)
	return err
}

// Update replaces an existing trip.
func (r *PostgresRepository) Update(ctx context.Context, t *Trip) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding trip document: %w", err)
	}

	query := `
		UPDATE trips
		SET name = $2, status = $3, category_id = $4, featured = $5,
		    document = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.Name, string(t.Status), t.CategoryID, t.Featured, doc, t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

// Delete removes a trip by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}
