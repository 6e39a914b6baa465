package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domain "revista/backend/internal/domain/auth"
	usecase "revista/backend/internal/usecase/auth"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

// ErrWeakSecret is returned by NewJWTManager for short secrets.
var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)

// JWTManager issues and validates HS256 tokens. It keeps no state besides
// its configuration.
type JWTManager struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	nowFunc func() time.Time
}

var _ usecase.TokenManager = (*JWTManager)(nil)

// NewJWTManager constructs a manager, refusing secrets shorter than MinSecretLength.
func NewJWTManager(secret string, ttl time.Duration, issuer string) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl == 0 {
		return nil, errors.New("jwt ttl must not be zero")
	}
	return &JWTManager{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		nowFunc: time.Now,
	}, nil
}

// Claims is the signed payload.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the user.
func (m *JWTManager) Issue(user *domain.User) (string, error) {
	if user == nil {
		return "", errors.New("token: nil user")
	}
	now := m.nowFunc().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates the token. Every failure (bad format, bad
// signature, wrong algorithm, expiry, unknown role) is reported as
// domain.ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, domain.ErrInvalidToken.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.UserID <= 0 {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.Claims{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    role,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
