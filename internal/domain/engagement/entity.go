package engagement

import (
	"time"

	"revista/backend/internal/apperr"
)

var (
	ErrCommentNotFound  = apperr.New(apperr.KindNotFound, "COMMENT_NOT_FOUND", "Comment not found")
	ErrFavoriteNotFound = apperr.New(apperr.KindNotFound, "FAVORITE_NOT_FOUND", "Issue is not in favorites")
)

// Rating is one user's score for an issue. A user holds at most one rating
// per issue; rating again overwrites it.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	IssueID   int64     `json:"issueId"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary aggregates the ratings of one issue.
type RatingSummary struct {
	IssueID       int64     `json:"issueId"`
	AverageRating float64   `json:"averageRating"`
	RatingCount   int       `json:"ratingCount"`
	Ratings       []*Rating `json:"ratings"`
}

// Comment is a user's remark on an issue.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	IssueID   int64     `json:"issueId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FavoriteStatus answers whether an issue is in a user's favorites.
type FavoriteStatus struct {
	IssueID    int64 `json:"issueId"`
	IsFavorite bool  `json:"isFavorite"`
}
