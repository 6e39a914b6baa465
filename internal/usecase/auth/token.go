package auth

import (
	"time"

	domain "revista/backend/internal/domain/auth"
)

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (*domain.Claims, error)
	TTL() time.Duration
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
