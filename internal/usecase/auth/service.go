package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/auth"
	"revista/backend/internal/validation"
)

// Service coordinates authentication workflows between domain and infrastructure.
type Service struct {
	users   domain.UserRepository
	tokens  TokenManager
	hasher  PasswordHasher
	nowFunc func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenManager, hasher PasswordHasher) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		nowFunc: time.Now,
	}
}

// RegisterInput is the public sign-up payload. A role in the request body
// is never read.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255,personname"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password"`
}

// ProfileInput lists the only fields a user may change on their own profile.
type ProfileInput struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=255,personname"`
}

// ChangePasswordInput requires proof of the current password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,password"`
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
}

// Register creates a reader account and returns it without the password hash.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = domain.NormalizeEmail(input.Email)
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
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
		Role:         domain.RoleReader,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Login validates credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*Session, error) {
	creds.Email = domain.NormalizeEmail(creds.Email)
	if err := validation.Validate(creds); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{
		User:      sanitizeUser(user),
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL() / time.Second),
	}, nil
}

// VerifyToken checks a bearer token and returns its claims. It does not
// touch storage.
func (s *Service) VerifyToken(token string) (*domain.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil, err
		}
		return nil, domain.ErrInvalidToken.Wrap(err)
	}
	return claims, nil
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, actor *domain.Claims) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// UpdateProfile applies the allow-listed profile fields. A request carrying
// none of them fails with NO_VALID_FIELDS.
func (s *Service) UpdateProfile(ctx context.Context, actor *domain.Claims, input ProfileInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if input.Name == nil {
		return nil, apperr.ErrNoValidField
	}
	name := strings.TrimSpace(*input.Name)
	input.Name = &name
	if err := validation.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.PasswordHash = ""
	user.UpdatedAt = s.nowFunc().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, actor *domain.Claims, input ChangePasswordInput) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if err := validation.Validate(input); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidPassword
	}

	hashed, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hashed)
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
