package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/catalog"
)

var issueConstraints = map[string]*apperr.Error{
	"issues_title_number_key": domain.ErrDuplicateIssue,
	"issues_title_id_fkey":    domain.ErrTitleNotFound,
}

const issueColumns = `
SELECT i.id, i.title_id, i.issue_number, i.publication_year, COALESCE(i.description, ''),
       i.cover_image_url, i.pdf_file_url, i.page_count, COALESCE(i.author, ''), COALESCE(i.artist, ''),
       t.name, COALESCE(t.genre, ''), p.id, p.name,
       COALESCE(rs.average, 0)::float8, COALESCE(rs.total, 0),
       i.created_at, i.updated_at`

const issueFrom = `
FROM issues i
JOIN titles t ON t.id = i.title_id
JOIN publishers p ON p.id = t.publisher_id
LEFT JOIN (
    SELECT issue_id, ROUND(AVG(value)::numeric, 2) AS average, COUNT(*) AS total
    FROM ratings
    GROUP BY issue_id
) rs ON rs.issue_id = i.id`

const issueSelect = issueColumns + issueFrom

const issueFilterClause = `
WHERE ($1::bigint = 0 OR i.title_id = $1)
  AND ($2::int = 0 OR i.publication_year = $2)`

// IssueRepository persists issues in PostgreSQL.
type IssueRepository struct {
	pool *pgxpool.Pool
}

var _ domain.IssueRepository = (*IssueRepository)(nil)

// NewIssueRepository constructs a repository.
func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

// Create inserts an issue and sets its id.
func (r *IssueRepository) Create(ctx context.Context, i *domain.Issue) error {
	const query = `
INSERT INTO issues (title_id, issue_number, publication_year, description, cover_image_url,
                    pdf_file_url, page_count, author, artist, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)
RETURNING id
`
	err := r.pool.QueryRow(ctx, query,
		i.TitleID, string(i.IssueNumber), i.PublicationYear, i.Description, i.CoverImageURL,
		i.PDFFileURL, i.PageCount, i.Author, i.Artist, i.CreatedAt, i.UpdatedAt,
	).Scan(&i.ID)
	return translate(err, issueConstraints)
}

// GetByID fetches an issue enriched with title, publisher and rating data.
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	i, err := scanIssue(r.pool.QueryRow(ctx, issueSelect+` WHERE i.id = $1`, id))
	return i, notFoundAs(err, domain.ErrIssueNotFound)
}

// GetByNumber fetches an issue by its number within a title.
func (r *IssueRepository) GetByNumber(ctx context.Context, titleID int64, number domain.IssueNumber) (*domain.Issue, error) {
	i, err := scanIssue(r.pool.QueryRow(ctx,
		issueSelect+` WHERE i.title_id = $1 AND i.issue_number = $2`, titleID, string(number)))
	return i, notFoundAs(err, domain.ErrIssueNotFound)
}

// List returns one page of issues, newest publication year first, and the
// total number of matches.
func (r *IssueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]*domain.Issue, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues i`+issueFilterClause,
		filter.TitleID, filter.PublicationYear).Scan(&total)
	if err != nil {
		return nil, 0, translate(err, nil)
	}

	query := issueSelect + issueFilterClause + `
ORDER BY i.publication_year DESC, i.created_at DESC, i.id DESC
LIMIT $3 OFFSET $4`
	items, err := r.collect(ctx, query, filter.TitleID, filter.PublicationYear, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Search matches term case-insensitively against issue, title and publisher text.
func (r *IssueRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Issue, error) {
	query := issueSelect + `
WHERE t.name ILIKE $1
   OR p.name ILIKE $1
   OR i.issue_number ILIKE $1
   OR i.author ILIKE $1
   OR i.artist ILIKE $1
   OR i.description ILIKE $1
ORDER BY i.publication_year DESC, i.id DESC
LIMIT $2`
	return r.collect(ctx, query, "%"+escapeLike(term)+"%", limit)
}

// Similar returns issues of the same title or genre, excluding issue itself.
func (r *IssueRepository) Similar(ctx context.Context, issue *domain.Issue, limit int) ([]*domain.Issue, error) {
	query := issueSelect + `
WHERE i.id <> $1
  AND (i.title_id = $2 OR ($3 <> '' AND t.genre = $3))
ORDER BY (i.title_id = $2) DESC, COALESCE(rs.average, 0) DESC, i.id DESC
LIMIT $4`
	return r.collect(ctx, query, issue.ID, issue.TitleID, issue.Genre, limit)
}

// Update persists issue changes.
func (r *IssueRepository) Update(ctx context.Context, i *domain.Issue) error {
	const query = `
UPDATE issues
SET title_id = $2, issue_number = $3, publication_year = $4, description = NULLIF($5, ''),
    cover_image_url = $6, pdf_file_url = $7, page_count = $8, author = NULLIF($9, ''),
    artist = NULLIF($10, ''), updated_at = $11
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, query,
		i.ID, i.TitleID, string(i.IssueNumber), i.PublicationYear, i.Description,
		i.CoverImageURL, i.PDFFileURL, i.PageCount, i.Author, i.Artist, i.UpdatedAt,
	)
	if err != nil {
		return translate(err, issueConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

// Delete removes an issue together with its ratings, comments and favorites.
func (r *IssueRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) collect(ctx context.Context, query string, args ...any) ([]*domain.Issue, error) {
	return collectIssues(ctx, r.pool, query, args...)
}

func collectIssues(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]*domain.Issue, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, nil)
	}
	defer rows.Close()

	items := []*domain.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, translate(rows.Err(), nil)
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		i      domain.Issue
		number string
	)
	if err := row.Scan(
		&i.ID,
		&i.TitleID,
		&number,
		&i.PublicationYear,
		&i.Description,
		&i.CoverImageURL,
		&i.PDFFileURL,
		&i.PageCount,
		&i.Author,
		&i.Artist,
		&i.TitleName,
		&i.Genre,
		&i.PublisherID,
		&i.PublisherName,
		&i.AverageRating,
		&i.RatingCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		return nil, err
	}
	i.IssueNumber = domain.IssueNumber(number)
	return &i, nil
}
