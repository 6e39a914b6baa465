package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revista/backend/internal/apperr"
	"revista/backend/internal/domain/catalog"
	domain "revista/backend/internal/domain/engagement"
)

var (
	ratingConstraints = map[string]*apperr.Error{
		"ratings_issue_id_fkey": catalog.ErrIssueNotFound,
	}
	commentConstraints = map[string]*apperr.Error{
		"comments_issue_id_fkey": catalog.ErrIssueNotFound,
	}
	favoriteConstraints = map[string]*apperr.Error{
		"user_favorites_issue_id_fkey": catalog.ErrIssueNotFound,
	}
)

// RatingRepository persists ratings in PostgreSQL.
type RatingRepository struct {
	pool *pgxpool.Pool
}

var _ domain.RatingRepository = (*RatingRepository)(nil)

// NewRatingRepository constructs a repository.
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Upsert stores the rating, replacing the user's previous value for the issue.
func (r *RatingRepository) Upsert(ctx context.Context, rating *domain.Rating) error {
	const query = `
INSERT INTO ratings (user_id, issue_id, value, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, issue_id)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
RETURNING id, created_at
`
	err := r.pool.QueryRow(ctx, query,
		rating.UserID, rating.IssueID, rating.Value, rating.CreatedAt, rating.UpdatedAt,
	).Scan(&rating.ID, &rating.CreatedAt)
	return translate(err, ratingConstraints)
}

// ListByIssue returns an issue's ratings, most recent first.
func (r *RatingRepository) ListByIssue(ctx context.Context, issueID int64) ([]*domain.Rating, error) {
	const query = `
SELECT r.id, r.user_id, u.name, r.issue_id, r.value, r.created_at, r.updated_at
FROM ratings r
JOIN users u ON u.id = r.user_id
WHERE r.issue_id = $1
ORDER BY r.updated_at DESC, r.id DESC
`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, translate(err, nil)
	}
	defer rows.Close()

	items := []*domain.Rating{}
	for rows.Next() {
		var rating domain.Rating
		if err := rows.Scan(
			&rating.ID,
			&rating.UserID,
			&rating.UserName,
			&rating.IssueID,
			&rating.Value,
			&rating.CreatedAt,
			&rating.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, &rating)
	}
	return items, translate(rows.Err(), nil)
}

// CommentRepository persists comments in PostgreSQL.
type CommentRepository struct {
	pool *pgxpool.Pool
}

var _ domain.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository constructs a repository.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentSelect = `
SELECT c.id, c.user_id, u.name, c.issue_id, c.content, c.created_at
FROM comments c
JOIN users u ON u.id = c.user_id`

// Create inserts a comment and sets its id.
func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	const query = `
WITH inserted AS (
    INSERT INTO comments (user_id, issue_id, content, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $4)
    RETURNING id, user_id
)
SELECT inserted.id, u.name FROM inserted JOIN users u ON u.id = inserted.user_id
`
	err := r.pool.QueryRow(ctx, query, c.UserID, c.IssueID, c.Content, c.CreatedAt).Scan(&c.ID, &c.UserName)
	return translate(err, commentConstraints)
}

// GetByID fetches a comment.
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	return c, notFoundAs(err, domain.ErrCommentNotFound)
}

// ListByIssue returns one page of an issue's comments, newest first, and the total.
func (r *CommentRepository) ListByIssue(ctx context.Context, issueID int64, limit, offset int) ([]*domain.Comment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE issue_id = $1`, issueID).Scan(&total); err != nil {
		return nil, 0, translate(err, nil)
	}

	rows, err := r.pool.Query(ctx,
		commentSelect+` WHERE c.issue_id = $1 ORDER BY c.created_at DESC, c.id DESC LIMIT $2 OFFSET $3`,
		issueID, limit, offset)
	if err != nil {
		return nil, 0, translate(err, nil)
	}
	defer rows.Close()

	items := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, nil)
	}
	return items, total, nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.UserID, &c.UserName, &c.IssueID, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FavoriteRepository persists favorites in PostgreSQL.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

var _ domain.FavoriteRepository = (*FavoriteRepository)(nil)

// NewFavoriteRepository constructs a repository.
func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add marks an issue as a favorite. Adding twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, issueID int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO user_favorites (user_id, issue_id) VALUES ($1, $2)
ON CONFLICT (user_id, issue_id) DO NOTHING`, userID, issueID)
	return translate(err, favoriteConstraints)
}

// Remove unmarks a favorite.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, issueID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND issue_id = $2`, userID, issueID)
	if err != nil {
		return translate(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

// Exists reports whether the issue is among the user's favorites.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, issueID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND issue_id = $2)`,
		userID, issueID).Scan(&exists)
	return exists, translate(err, nil)
}

// List returns the user's favorite issues, most recently added first.
func (r *FavoriteRepository) List(ctx context.Context, userID int64) ([]*catalog.Issue, error) {
	query := issueColumns + issueFrom + `
JOIN user_favorites f ON f.issue_id = i.id
WHERE f.user_id = $1
ORDER BY f.created_at DESC, i.id DESC`
	return collectIssues(ctx, r.pool, query, userID)
}
