package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/catalog"
)

var publisherConstraints = map[string]*apperr.Error{
	"publishers_name_key":      domain.ErrDuplicatePublisher,
	"titles_publisher_id_fkey": domain.ErrPublisherHasTitles,
}

const publisherSelect = `
SELECT p.id, p.name, COALESCE(p.description, ''), COALESCE(p.logo_url, ''),
       (SELECT COUNT(*) FROM titles t WHERE t.publisher_id = p.id),
       p.created_at, p.updated_at
FROM publishers p`

// PublisherRepository persists publishers in PostgreSQL.
type PublisherRepository struct {
	pool *pgxpool.Pool
}

var _ domain.PublisherRepository = (*PublisherRepository)(nil)

// NewPublisherRepository constructs a repository.
func NewPublisherRepository(pool *pgxpool.Pool) *PublisherRepository {
	return &PublisherRepository{pool: pool}
}

// Create inserts a publisher and sets its id.
func (r *PublisherRepository) Create(ctx context.Context, p *domain.Publisher) error {
	const query = `
INSERT INTO publishers (name, description, logo_url, created_at, updated_at)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
RETURNING id
`
	err := r.pool.QueryRow(ctx, query, p.Name, p.Description, p.LogoURL, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	return translate(err, publisherConstraints)
}

// GetByID fetches a publisher.
func (r *PublisherRepository) GetByID(ctx context.Context, id int64) (*domain.Publisher, error) {
	return r.getOne(ctx, publisherSelect+` WHERE p.id = $1`, id)
}

// GetByName fetches a publisher by exact name.
func (r *PublisherRepository) GetByName(ctx context.Context, name string) (*domain.Publisher, error) {
	return r.getOne(ctx, publisherSelect+` WHERE p.name = $1`, name)
}

func (r *PublisherRepository) getOne(ctx context.Context, query string, arg any) (*domain.Publisher, error) {
	p, err := scanPublisher(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPublisherNotFound
		}
		return nil, translate(err, nil)
	}
	return p, nil
}

// List returns all publishers ordered by name.
func (r *PublisherRepository) List(ctx context.Context) ([]*domain.Publisher, error) {
	rows, err := r.pool.Query(ctx, publisherSelect+` ORDER BY p.name`)
	if err != nil {
		return nil, translate(err, nil)
	}
	defer rows.Close()

	items := []*domain.Publisher{}
	for rows.Next() {
		p, err := scanPublisher(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, translate(rows.Err(), nil)
}

// Update persists publisher changes.
func (r *PublisherRepository) Update(ctx context.Context, p *domain.Publisher) error {
	const query = `
UPDATE publishers
SET name = $2, description = NULLIF($3, ''), logo_url = NULLIF($4, ''), updated_at = $5
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Description, p.LogoURL, p.UpdatedAt)
	if err != nil {
		return translate(err, publisherConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPublisherNotFound
	}
	return nil
}

// Delete removes a publisher. Titles still referencing it block the delete.
func (r *PublisherRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return translate(err, publisherConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPublisherNotFound
	}
	return nil
}

// CountTitles counts the titles owned by a publisher.
func (r *PublisherRepository) CountTitles(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM titles WHERE publisher_id = $1`, id).Scan(&count)
	return count, translate(err, nil)
}

// Stats aggregates titles, issues, ratings and publication years.
func (r *PublisherRepository) Stats(ctx context.Context, id int64) (*domain.PublisherStats, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM titles WHERE publisher_id = $1),
    COUNT(DISTINCT i.id),
    COALESCE(ROUND(AVG(r.value)::numeric, 2), 0)::float8,
    MIN(i.publication_year),
    MAX(i.publication_year)
FROM titles t
LEFT JOIN issues i ON i.title_id = t.id
LEFT JOIN ratings r ON r.issue_id = i.id
WHERE t.publisher_id = $1
`
	stats := domain.PublisherStats{PublisherID: id}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&stats.TitleCount,
		&stats.IssueCount,
		&stats.AverageRating,
		&stats.FirstYear,
		&stats.LatestYear,
	)
	if err != nil {
		return nil, translate(err, nil)
	}
	return &stats, nil
}

func scanPublisher(row pgx.Row) (*domain.Publisher, error) {
	var p domain.Publisher
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.LogoURL,
		&p.TitleCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
