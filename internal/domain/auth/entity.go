package auth

import (
	"strings"
	"time"

	"revista/backend/internal/apperr"
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "INVALID_CREDENTIALS", "Invalid email or password")
	// ErrEmailExists signals that the email is already registered.
	ErrEmailExists = apperr.New(apperr.KindConflict, "EMAIL_EXISTS", "Email already registered")
	// ErrInvalidToken covers malformed, tampered and expired tokens alike.
	ErrInvalidToken = apperr.New(apperr.KindInvalidToken, "INVALID_TOKEN", "Invalid or expired token")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "User not found")
	// ErrInvalidRole signals a role outside the closed set.
	ErrInvalidRole = apperr.New(apperr.KindValidation, "INVALID_ROLE", "Role must be one of admin, editor, reader")
	// ErrInvalidPassword is returned when the current password does not match on change.
	ErrInvalidPassword = apperr.New(apperr.KindInvalidPassword, "INVALID_PASSWORD", "Current password is incorrect")
	// ErrUnauthenticated is returned when no credential was presented.
	ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "UNAUTHORIZED", "Authentication required")
	// ErrForbidden is returned when the caller's role is outside the allowed set.
	ErrForbidden = apperr.New(apperr.KindForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
)

// Role is the closed set of user roles. There is no hierarchy between them.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleReader Role = "reader"
)

// ParseRole normalises raw and rejects anything outside the closed set.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleReader:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Claims is the identity carried by a bearer token. It is never persisted.
type Claims struct {
	UserID    int64
	Email     string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Credentials groups login details.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
