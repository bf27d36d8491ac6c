package tag

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL tag repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a tag by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE id = $1`

	var t Tag
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByName finds a tag by name, case-insensitively.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE LOWER(name) = LOWER($1)`

	var t Tag
	err := r.pool.QueryRow(ctx, query, name).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Search returns tags whose name contains the query.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]*Tag, error) {
	sql := `
		SELECT id, name, created_at
		FROM tags
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Create stores a new tag and fills in its generated ID.
func (r *PostgresRepository) Create(ctx context.Context, t *Tag) error {
	query := `INSERT INTO tags (name, created_at) VALUES ($1, $2) RETURNING id`
	return r.pool.QueryRow(ctx, query, t.Name, t.CreatedAt).Scan(&t.ID)
}

// Update replaces a stored tag.
func (r *PostgresRepository) Update(ctx context.Context, t *Tag) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tags SET name = $2 WHERE id = $1`, t.ID, t.Name)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

// Delete removes a tag by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}
