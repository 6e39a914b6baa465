package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "revista/backend/internal/domain/auth"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
	writes int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	m.writes++
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) List(context.Context, domain.UserFilter) ([]*domain.User, int, error) {
	return nil, 0, errors.New("not used")
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	if cp.PasswordHash == "" {
		cp.PasswordHash = stored.PasswordHash
	}
	m.byID[u.ID] = &cp
	m.writes++
	return nil
}

func (m *memUsers) Delete(context.Context, int64) error { return errors.New("not used") }

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.writes++
	return nil
}

// plainHasher marks hashes with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, h string) bool      { return h == "hashed:"+p }

type stubTokens struct {
	issued []*domain.User
}

func (s *stubTokens) Issue(u *domain.User) (string, error) {
	s.issued = append(s.issued, u)
	return "token-for-" + u.Email, nil
}

func (s *stubTokens) Verify(tok string) (*domain.Claims, error) {
	email, ok := strings.CutPrefix(tok, "token-for-")
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Claims{UserID: 1, Email: email, Role: domain.RoleReader}, nil
}

func (s *stubTokens) TTL() time.Duration { return 7 * 24 * time.Hour }
