package reservation

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL reservation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reservationColumns = `id, trip_id, term_id, status, institution_name, email,
	phone_number, start_address, voivodeship, total_participants, paid_participants,
	unpaid_participants, base_price_per_person, total_price_per_person,
	grand_total_price, selected_addons, created_at, last_modified_at, last_modified_by`

// Get retrieves a reservation by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListByTrip returns every reservation for a trip, newest first.
func (r *PostgresRepository) ListByTrip(ctx context.Context, tripID string) ([]*Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE trip_id = $1
		ORDER BY created_at DESC`

	return r.queryMany(ctx, query, tripID)
}

// ListByStatus returns one page of reservations in a given state,
// newest first. The cursor is the last reservation ID of the previous
// page, resolved to its (created_at, id) sort key.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status, limit int, cursor string) ([]*Reservation, string, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1
		  AND ($2 = '' OR (created_at, id) < (SELECT created_at, id FROM reservations WHERE id = $2))
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	out, err := r.queryMany(ctx, query, string(status), cursor, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

// Create stores a new reservation.
func (r *PostgresRepository) Create(ctx context.Context, res *Reservation) error {
	addons, err := json.Marshal(res.SelectedAddons)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reservations (id, trip_id, term_id, status, institution_name, email,
			phone_number, start_address, voivodeship, total_participants, paid_participants,
			unpaid_participants, base_price_per_person, total_price_per_person,
			grand_total_price, selected_addons, created_at, last_modified_at, last_modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = r.pool.Exec(ctx, query,
		res.ID,
		res.TripID,
		res.TermID,
		string(res.Status),
		res.InstitutionName,
		res.Email,
		res.PhoneNumber,
		res.StartAddress,
		res.Voivodeship,
		res.TotalParticipantsCount,
		res.PaidParticipantsCount,
		res.UnpaidParticipantsCount,
		res.BasePricePerPerson,
		res.TotalPricePerPerson,
		res.GrandTotalPrice,
		addons,
		res.CreatedAt,
		res.LastModifiedAt,
		res.LastModifiedBy,
	)
	return err
}

// Update replaces a stored reservation.
func (r *PostgresRepository) Update(ctx context.Context, res *Reservation) error {
	addons, err := json.Marshal(res.SelectedAddons)
	if err != nil {
		return err
	}

	query := `
		UPDATE reservations
		SET status = $1, institution_name = $2, email = $3, phone_number = $4,
			start_address = $5, voivodeship = $6, total_participants = $7,
			paid_participants = $8, unpaid_participants = $9, base_price_per_person = $10,
			total_price_per_person = $11, grand_total_price = $12, selected_addons = $13,
			last_modified_at = $14, last_modified_by = $15
		WHERE id = $16
	`

	tag, err := r.pool.Exec(ctx, query,
		string(res.Status),
		res.InstitutionName,
		res.Email,
		res.PhoneNumber,
		res.StartAddress,
		res.Voivodeship,
		res.TotalParticipantsCount,
		res.PaidParticipantsCount,
		res.UnpaidParticipantsCount,
		res.BasePricePerPerson,
		res.TotalPricePerPerson,
		res.GrandTotalPrice,
		addons,
		res.LastModifiedAt,
		res.LastModifiedBy,
		res.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	var status string
	var addons []byte

	err := row.Scan(
		&res.ID,
		&res.TripID,
		&res.TermID,
		&status,
		&res.InstitutionName,
		&res.Email,
		&res.PhoneNumber,
		&res.StartAddress,
		&res.Voivodeship,
		&res.TotalParticipantsCount,
		&res.PaidParticipantsCount,
		&res.UnpaidParticipantsCount,
		&res.BasePricePerPerson,
		&res.TotalPricePerPerson,
		&res.GrandTotalPrice,
		&addons,
		&res.CreatedAt,
		&res.LastModifiedAt,
		&res.LastModifiedBy,
	)
	if err != nil {
		return nil, err
	}

	res.Status = Status(status)
	if len(addons) > 0 {
		if err := json.Unmarshal(addons, &res.SelectedAddons); err != nil {
			return nil, err
		}
	}
	return &res, nil
}
