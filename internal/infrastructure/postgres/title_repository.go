package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/catalog"
)

var titleConstraints = map[string]*apperr.Error{
	"titles_publisher_name_key": domain.ErrDuplicateTitle,
	"titles_publisher_id_fkey":  domain.ErrPublisherNotFound,
	"issues_title_id_fkey":      domain.ErrTitleHasIssues,
}

const titleSelect = `
SELECT t.id, t.publisher_id, p.name, t.name, COALESCE(t.description, ''),
       COALESCE(t.cover_image_url, ''), COALESCE(t.genre, ''),
       (SELECT COUNT(*) FROM issues i WHERE i.title_id = t.id),
       t.created_at, t.updated_at
FROM titles t
JOIN publishers p ON p.id = t.publisher_id`

// TitleRepository persists titles in PostgreSQL.
type TitleRepository struct {
	pool *pgxpool.Pool
}

var _ domain.TitleRepository = (*TitleRepository)(nil)

// NewTitleRepository constructs a repository.
func NewTitleRepository(pool *pgxpool.Pool) *TitleRepository {
	return &TitleRepository{pool: pool}
}

// Create inserts a title and sets its id.
func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) error {
	const query = `
INSERT INTO titles (publisher_id, name, description, cover_image_url, genre, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
RETURNING id
`
	err := r.pool.QueryRow(ctx, query,
		t.PublisherID, t.Name, t.Description, t.CoverImageURL, t.Genre, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	return translate(err, titleConstraints)
}

// GetByID fetches a title with its publisher name.
func (r *TitleRepository) GetByID(ctx context.Context, id int64) (*domain.Title, error) {
	t, err := scanTitle(r.pool.QueryRow(ctx, titleSelect+` WHERE t.id = $1`, id))
	return t, notFoundAs(err, domain.ErrTitleNotFound)
}

// GetByName fetches a title by name within one publisher.
func (r *TitleRepository) GetByName(ctx context.Context, publisherID int64, name string) (*domain.Title, error) {
	t, err := scanTitle(r.pool.QueryRow(ctx, titleSelect+` WHERE t.publisher_id = $1 AND t.name = $2`, publisherID, name))
	return t, notFoundAs(err, domain.ErrTitleNotFound)
}

// List returns titles ordered by name, optionally restricted to a publisher.
func (r *TitleRepository) List(ctx context.Context, publisherID int64) ([]*domain.Title, error) {
	rows, err := r.pool.Query(ctx, titleSelect+` WHERE ($1::bigint = 0 OR t.publisher_id = $1) ORDER BY t.name`, publisherID)
	if err != nil {
		return nil, translate(err, nil)
	}
	defer rows.Close()

	items := []*domain.Title{}
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, translate(rows.Err(), nil)
}

// Update persists title changes.
func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) error {
	const query = `
UPDATE titles
SET publisher_id = $2, name = $3, description = NULLIF($4, ''), cover_image_url = NULLIF($5, ''),
    genre = NULLIF($6, ''), updated_at = $7
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, query, t.ID, t.PublisherID, t.Name, t.Description, t.CoverImageURL, t.Genre, t.UpdatedAt)
	if err != nil {
		return translate(err, titleConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

// Delete removes a title. Issues still referencing it block the delete.
func (r *TitleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return translate(err, titleConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

// CountIssues counts the issues of a title.
func (r *TitleRepository) CountIssues(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE title_id = $1`, id).Scan(&count)
	return count, translate(err, nil)
}

func scanTitle(row pgx.Row) (*domain.Title, error) {
	var t domain.Title
	if err := row.Scan(
		&t.ID,
		&t.PublisherID,
		&t.PublisherName,
		&t.Name,
		&t.Description,
		&t.CoverImageURL,
		&t.Genre,
		&t.IssueCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
