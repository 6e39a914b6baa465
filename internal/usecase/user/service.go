package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/auth"
	"revista/backend/internal/pagination"
	authusecase "revista/backend/internal/usecase/auth"
	"revista/backend/internal/validation"
)

// Service provides user management use cases for administrative workflows.
type Service struct {
	repo    domain.UserRepository
	hasher  authusecase.PasswordHasher
	nowFunc func() time.Time
}

// NewService constructs a user service around the provided repository.
func NewService(repo domain.UserRepository, hasher authusecase.PasswordHasher) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		nowFunc: time.Now,
	}
}

// CreateInput defines the payload to create a user with an explicit role.
type CreateInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin editor reader"`
}

// UpdateInput defines a partial update. Absent fields are left untouched.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor reader"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Role == nil && (in.Password == nil || *in.Password == "")
}

// List returns one page of users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string, page pagination.Params) (pagination.Envelope[*domain.User], error) {
	filter := domain.UserFilter{Limit: page.Limit, Offset: page.Offset}
	if strings.TrimSpace(role) != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return pagination.Envelope[*domain.User]{}, err
		}
		filter.Role = parsed
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Envelope[*domain.User]{}, err
	}
	return pagination.BuildEnvelope(sanitizeUsers(users), page.Page, page.Limit, total), nil
}

// Get retrieves a single user by its identifier.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Create persists a new user with the provided role.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = domain.NormalizeEmail(input.Email)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, input.Email, 0); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		Role:         domain.Role(input.Role),
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Update modifies the persisted user. An update without fields returns the
// current record unchanged.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*domain.User, error) {
	if err := validation.CheckID(id); err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		input.Email = &email
	}
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		input.Role = &role
	}
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.empty() {
		return sanitizeUser(user), nil
	}

	// The repository writes the hash only when one is set.
	user.PasswordHash = ""
	if input.Password != nil && *input.Password != "" {
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.PasswordHash = hashed
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		user.Role = domain.Role(*input.Role)
	}

	user.UpdatedAt = s.nowFunc().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Delete removes the target user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validation.CheckID(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != excludeID:
		return domain.ErrEmailExists
	}
	return nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}

func sanitizeUsers(items []*domain.User) []*domain.User {
	out := make([]*domain.User, 0, len(items))
	for _, item := range items {
		out = append(out, sanitizeUser(item))
	}
	return out
}
