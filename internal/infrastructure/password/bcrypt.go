// Package password hashes credentials with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	usecase "revista/backend/internal/usecase/auth"
)

// MinCost is the lowest work factor accepted.
const MinCost = 10

// Hasher is a bcrypt PasswordHasher.
type Hasher struct {
	cost int
}

var _ usecase.PasswordHasher = (*Hasher)(nil)

// NewHasher returns a hasher using cost, which must lie in [MinCost, bcrypt.MaxCost].
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", MinCost, bcrypt.MaxCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
