package publisher

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "revista/backend/internal/domain/catalog"
	"revista/backend/internal/validation"
)

// Service encapsulates publisher use cases.
type Service struct {
	repo    domain.PublisherRepository
	nowFunc func() time.Time
}

// NewService constructs a publisher service.
func NewService(repo domain.PublisherRepository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for publisher creation.
type CreateInput struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=5000"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url,max=500"`
}

// UpdateInput encapsulates partial publisher updates.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,url,max=500"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.LogoURL == nil
}

// List retrieves all publishers.
func (s *Service) List(ctx context.Context) ([]*domain.Publisher, error) {
	return s.repo.List(ctx)
}

// Get fetches a publisher by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Publisher, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Stats aggregates the catalog of one publisher.
func (s *Service) Stats(ctx context.Context, id int64) (*domain.PublisherStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, id)
}

// Create stores a new publisher after validation.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Publisher, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.LogoURL = strings.TrimSpace(input.LogoURL)
	if err := validation.Validate(input); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, input.Name, 0); err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	publisher := &domain.Publisher{
		Name:        input.Name,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, publisher); err != nil {
		return nil, err
	}
	return publisher, nil
}

// Update applies partial updates to a publisher.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Publisher, error) {
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

	publisher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.empty() {
		return publisher, nil
	}

	if input.Name != nil && *input.Name != publisher.Name {
		if err := s.ensureNameFree(ctx, *input.Name, id); err != nil {
			return nil, err
		}
		publisher.Name = *input.Name
	}
	if input.Description != nil {
		publisher.Description = *input.Description
	}
	if input.LogoURL != nil {
		publisher.LogoURL = strings.TrimSpace(*input.LogoURL)
	}
	publisher.UpdatedAt = s.nowFunc().UTC()

	if err := s.repo.Update(ctx, publisher); err != nil {
		return nil, err
	}
	return publisher, nil
}

// Delete removes a publisher that owns no titles.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountTitles(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrPublisherHasTitles
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureNameFree(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrPublisherNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != excludeID:
		return domain.ErrDuplicatePublisher
	}
	return nil
}
