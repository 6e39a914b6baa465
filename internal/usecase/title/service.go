package title

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "revista/backend/internal/domain/catalog"
	"revista/backend/internal/validation"
)

// Service encapsulates title use cases.
type Service struct {
	titles     domain.TitleRepository
	publishers domain.PublisherRepository
	nowFunc    func() time.Time
}

// NewService constructs a title service.
func NewService(titles domain.TitleRepository, publishers domain.PublisherRepository) *Service {
	return &Service{
		titles:     titles,
		publishers: publishers,
		nowFunc:    time.Now,
	}
}

// CreateInput contains the payload required for title creation.
type CreateInput struct {
	PublisherID   int64  `json:"publisherId" validate:"required,gte=1"`
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Description   string `json:"description" validate:"max=5000"`
	CoverImageURL string `json:"coverImageUrl" validate:"omitempty,url,max=500"`
	Genre         string `json:"genre" validate:"max=100"`
}

// UpdateInput encapsulates partial title updates.
type UpdateInput struct {
	PublisherID   *int64  `json:"publisherId" validate:"omitempty,gte=1"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	CoverImageURL *string `json:"coverImageUrl" validate:"omitempty,url,max=500"`
	Genre         *string `json:"genre" validate:"omitempty,max=100"`
}

func (in UpdateInput) empty() bool {
	return in.PublisherID == nil && in.Name == nil && in.Description == nil &&
		in.CoverImageURL == nil && in.Genre == nil
}

// List retrieves titles, restricted to one publisher when publisherID is set.
func (s *Service) List(ctx context.Context, publisherID int64) ([]*domain.Title, error) {
	if publisherID != 0 {
		if err := s.ensurePublisher(ctx, publisherID); err != nil {
			return nil, err
		}
	}
	return s.titles.List(ctx, publisherID)
}

// Get fetches a title by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Title, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	return s.titles.GetByID(ctx, id)
}

// Create stores a new title under an existing publisher.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Title, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Genre = strings.TrimSpace(input.Genre)
	if err := validation.Validate(input); err != nil {
		return nil, err
	}
	if err := s.ensurePublisher(ctx, input.PublisherID); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, input.PublisherID, input.Name, 0); err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	t := &domain.Title{
		PublisherID:   input.PublisherID,
		Name:          input.Name,
		Description:   input.Description,
		CoverImageURL: input.CoverImageURL,
		Genre:         input.Genre,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.titles.GetByID(ctx, t.ID)
}

// Update applies partial updates. A move to another publisher or a rename
// re-checks uniqueness within the resulting publisher.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Title, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.empty() {
		return t, nil
	}

	publisherID, name := t.PublisherID, t.Name
	if input.PublisherID != nil {
		publisherID = *input.PublisherID
	}
	if input.Name != nil {
		name = *input.Name
	}
	if publisherID != t.PublisherID {
		if err := s.ensurePublisher(ctx, publisherID); err != nil {
			return nil, err
		}
	}
	if publisherID != t.PublisherID || name != t.Name {
		if err := s.ensureNameFree(ctx, publisherID, name, id); err != nil {
			return nil, err
		}
	}

	t.PublisherID = publisherID
	t.Name = name
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.CoverImageURL != nil {
		t.CoverImageURL = *input.CoverImageURL
	}
	if input.Genre != nil {
		t.Genre = strings.TrimSpace(*input.Genre)
	}
	t.UpdatedAt = s.nowFunc().UTC()

	if err := s.titles.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.titles.GetByID(ctx, id)
}

// Delete removes a title that has no issues.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	if _, err := s.titles.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.titles.CountIssues(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrTitleHasIssues
	}
	return s.titles.Delete(ctx, id)
}

func (s *Service) ensurePublisher(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	_, err := s.publishers.GetByID(ctx, id)
	return err
}

func (s *Service) ensureNameFree(ctx context.Context, publisherID int64, name string, excludeID int64) error {
	existing, err := s.titles.GetByName(ctx, publisherID, name)
	switch {
	case errors.Is(err, domain.ErrTitleNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != excludeID:
		return domain.ErrDuplicateTitle
	}
	return nil
}
