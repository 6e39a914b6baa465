package engagement

import (
	"context"

	"revista/backend/internal/domain/catalog"
)

// RatingRepository persists ratings.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *Rating) error
	ListByIssue(ctx context.Context, issueID int64) ([]*Rating, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByIssue(ctx context.Context, issueID int64, limit, offset int) ([]*Comment, int, error)
	Delete(ctx context.Context, id int64) error
}

// FavoriteRepository persists user favorites. Add is idempotent.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, issueID int64) error
	Remove(ctx context.Context, userID, issueID int64) error
	Exists(ctx context.Context, userID, issueID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]*catalog.Issue, error)
}
