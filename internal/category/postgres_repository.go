package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdesk/tripdesk/internal/trip"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL category repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const categoryColumns = `id, name, slug, trip_type, description, image_url, icon_url,
	parent_id, meta_title, meta_description, sort_order, created_at, updated_at`

// Get retrieves a category by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all categories, optionally filtered by trip type.
func (r *PostgresRepository) List(ctx context.Context, tripType trip.TripType) ([]*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []any{}
	if tripType != "" {
		query += ` WHERE trip_type = $1`
		args = append(args, string(tripType))
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create stores a new category and fills in its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug, trip_type, description, image_url, icon_url,
			parent_id, meta_title, meta_description, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		c.Name,
		c.Slug,
		string(c.TripType),
		c.Description,
		c.ImageURL,
		c.IconURL,
		c.ParentID,
		c.MetaTitle,
		c.MetaDescription,
		c.Order,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
}

// Update replaces a stored category.
func (r *PostgresRepository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = $1, slug = $2, trip_type = $3, description = $4, image_url = $5,
			icon_url = $6, parent_id = $7, meta_title = $8, meta_description = $9,
			sort_order = $10, updated_at = $11
		WHERE id = $12
	`

	tag, err := r.pool.Exec(ctx, query,
		c.Name,
		c.Slug,
		string(c.TripType),
		c.Description,
		c.ImageURL,
		c.IconURL,
		c.ParentID,
		c.MetaTitle,
		c.MetaDescription,
		c.Order,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// CountChildren reports how many categories name id as parent.
func (r *PostgresRepository) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&n)
	return n, err
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	var tripType string
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&tripType,
		&c.Description,
		&c.ImageURL,
		&c.IconURL,
		&c.ParentID,
		&c.MetaTitle,
		&c.MetaDescription,
		&c.Order,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TripType = trip.TripType(tripType)
	return &c, nil
}
