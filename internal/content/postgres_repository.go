package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdesk/tripdesk/internal/extrafields"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// The extra-field tree is stored as a JSONB column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL page repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const pageColumns = `id, title, slug, type, status, content, sort_order,
	meta_title, meta_description, extra_fields, created_at, updated_at`

// Get retrieves a page by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM content_pages WHERE id = $1`

	p, err := scanPage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns pages ordered by (sortOrder, title).
func (r *PostgresRepository) List(ctx context.Context, status Status) ([]*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM content_pages`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY sort_order, title`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create stores a new page.
func (r *PostgresRepository) Create(ctx context.Context, p *Page) error {
	extra, err := json.Marshal(p.ExtraFields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO content_pages (id, title, slug, type, status, content, sort_order,
			meta_title, meta_description, extra_fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Slug,
		string(p.Type),
		string(p.Status),
		p.Content,
		p.SortOrder,
		p.MetaTitle,
		p.MetaDescription,
		extra,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update replaces a stored page.
func (r *PostgresRepository) Update(ctx context.Context, p *Page) error {
	extra, err := json.Marshal(p.ExtraFields)
	if err != nil {
		return err
	}

	query := `
		UPDATE content_pages
		SET title = $1, slug = $2, type = $3, status = $4, content = $5, sort_order = $6,
			meta_title = $7, meta_description = $8, extra_fields = $9, updated_at = $10
		WHERE id = $11
	`

	tag, err := r.pool.Exec(ctx, query,
		p.Title,
		p.Slug,
		string(p.Type),
		string(p.Status),
		p.Content,
		p.SortOrder,
		p.MetaTitle,
		p.MetaDescription,
		extra,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPageNotFound
	}
	return nil
}

// Delete removes a page by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM content_pages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPageNotFound
	}
	return nil
}

func scanPage(row pgx.Row) (*Page, error) {
	var p Page
	var pageType, status string
	var extra []byte

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&pageType,
		&status,
		&p.Content,
		&p.SortOrder,
		&p.MetaTitle,
		&p.MetaDescription,
		&extra,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Type = Type(pageType)
	p.Status = Status(status)
	if len(extra) > 0 {
		var nodes []extrafields.Node
		if err := json.Unmarshal(extra, &nodes); err != nil {
			return nil, err
		}
		p.ExtraFields = nodes
	}
	return &p, nil
}
