// Package engagement holds reader interactions with issues: ratings,
// comments and favorites.
package engagement

import (
	"context"
	"math"
	"strings"
	"time"

	"revista/backend/internal/access"
	"revista/backend/internal/domain/auth"
	"revista/backend/internal/domain/catalog"
	domain "revista/backend/internal/domain/engagement"
	"revista/backend/internal/pagination"
	"revista/backend/internal/validation"
)

// Service coordinates ratings, comments and favorites.
type Service struct {
	issues    catalog.IssueRepository
	ratings   domain.RatingRepository
	comments  domain.CommentRepository
	favorites domain.FavoriteRepository
	nowFunc   func() time.Time
}

// NewService constructs an engagement service.
func NewService(issues catalog.IssueRepository, ratings domain.RatingRepository, comments domain.CommentRepository, favorites domain.FavoriteRepository) *Service {
	return &Service{
		issues:    issues,
		ratings:   ratings,
		comments:  comments,
		favorites: favorites,
		nowFunc:   time.Now,
	}
}

// RateInput is a score from 1 to 5.
type RateInput struct {
	Value int `json:"value" validate:"required,gte=1,lte=5"`
}

// CommentInput is the body of a new comment.
type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// Rate records the caller's rating, replacing any earlier one.
func (s *Service) Rate(ctx context.Context, actor *auth.Claims, issueID int64, input RateInput) (*domain.Rating, error) {
	if err := access.Authorize(actor); err != nil {
		return nil, err
	}
	if err := validation.CheckID(issueID); err != nil {
		return nil, err
	}
	if err := validation.Validate(input); err != nil {
		return nil, err
	}
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	rating := &domain.Rating{
		UserID:    actor.UserID,
		IssueID:   issueID,
		Value:     input.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// Ratings lists the ratings of an issue with their average.
func (s *Service) Ratings(ctx context.Context, issueID int64) (*domain.RatingSummary, error) {
	if err := validation.CheckID(issueID); err != nil {
		return nil, err
	}
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	summary := &domain.RatingSummary{IssueID: issueID, Ratings: ratings, RatingCount: len(ratings)}
	if summary.Ratings == nil {
		summary.Ratings = []*domain.Rating{}
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Value
		}
		summary.AverageRating = math.Round(float64(sum)/float64(len(ratings))*100) / 100
	}
	return summary, nil
}

// AddComment stores a comment by the caller.
func (s *Service) AddComment(ctx context.Context, actor *auth.Claims, issueID int64, input CommentInput) (*domain.Comment, error) {
	if err := access.Authorize(actor); err != nil {
		return nil, err
	}
	if err := validation.CheckID(issueID); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validation.Validate(input); err != nil {
		return nil, err
	}
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		UserID:    actor.UserID,
		IssueID:   issueID,
		Content:   input.Content,
		CreatedAt: s.nowFunc().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Comments returns one page of an issue's comments, newest first.
func (s *Service) Comments(ctx context.Context, issueID int64, page pagination.Params) (pagination.Envelope[*domain.Comment], error) {
	var empty pagination.Envelope[*domain.Comment]
	if err := validation.CheckID(issueID); err != nil {
		return empty, err
	}
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return empty, err
	}
	items, total, err := s.comments.ListByIssue(ctx, issueID, page.Limit, page.Offset)
	if err != nil {
		return empty, err
	}
	return pagination.BuildEnvelope(items, page.Page, page.Limit, total), nil
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (s *Service) DeleteComment(ctx context.Context, actor *auth.Claims, commentID int64) error {
	if err := access.Authorize(actor); err != nil {
		return err
	}
	if err := validation.CheckID(commentID); err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !access.CanModify(actor, comment.UserID, auth.RoleAdmin) {
		return auth.ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}

// AddFavorite marks an issue as a favorite of the caller. Adding twice is a no-op.
func (s *Service) AddFavorite(ctx context.Context, actor *auth.Claims, issueID int64) error {
	if err := access.Authorize(actor); err != nil {
		return err
	}
	if err := validation.CheckID(issueID); err != nil {
		return err
	}
	if err := s.ensureIssue(ctx, issueID); err != nil {
		return err
	}
	return s.favorites.Add(ctx, actor.UserID, issueID)
}

// RemoveFavorite unmarks an issue.
func (s *Service) RemoveFavorite(ctx context.Context, actor *auth.Claims, issueID int64) error {
	if err := access.Authorize(actor); err != nil {
		return err
	}
	if err := validation.CheckID(issueID); err != nil {
		return err
	}
	return s.favorites.Remove(ctx, actor.UserID, issueID)
}

// Favorites lists the caller's favorite issues.
func (s *Service) Favorites(ctx context.Context, actor *auth.Claims) ([]*catalog.Issue, error) {
	if err := access.Authorize(actor); err != nil {
		return nil, err
	}
	items, err := s.favorites.List(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*catalog.Issue{}
	}
	return items, nil
}

// IsFavorite reports whether the issue is among the caller's favorites.
func (s *Service) IsFavorite(ctx context.Context, actor *auth.Claims, issueID int64) (*domain.FavoriteStatus, error) {
	if err := access.Authorize(actor); err != nil {
		return nil, err
	}
	if err := validation.CheckID(issueID); err != nil {
		return nil, err
	}
	ok, err := s.favorites.Exists(ctx, actor.UserID, issueID)
	if err != nil {
		return nil, err
	}
	return &domain.FavoriteStatus{IssueID: issueID, IsFavorite: ok}, nil
}

func (s *Service) ensureIssue(ctx context.Context, id int64) error {
	_, err := s.issues.GetByID(ctx, id)
	return err
}
