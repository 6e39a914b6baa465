package httpserver

import (
	"context"
	"errors"
	"sync"

	"revista/backend/internal/domain/auth"
	"revista/backend/internal/domain/catalog"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*auth.User{}}
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return auth.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) List(_ context.Context, f auth.UserFilter) ([]*auth.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*auth.User{}
	for _, u := range m.byID {
		if f.Role == "" || u.Role == f.Role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *memUsers) Update(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[u.ID]
	if !ok {
		return auth.ErrUserNotFound
	}
	cp := *u
	if cp.PasswordHash == "" {
		cp.PasswordHash = stored.PasswordHash
	}
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(context.Context, int64) error { return errors.New("not used") }

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// memPublishers keeps publishers in a slice. listErr, when set, fails List.
type memPublishers struct {
	mu      sync.Mutex
	items   []*catalog.Publisher
	listErr error
}

func (m *memPublishers) Create(_ context.Context, p *catalog.Publisher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.items) + 1)
	cp := *p
	m.items = append(m.items, &cp)
	return nil
}

func (m *memPublishers) GetByID(_ context.Context, id int64) (*catalog.Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, catalog.ErrPublisherNotFound
}

func (m *memPublishers) GetByName(_ context.Context, name string) (*catalog.Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, catalog.ErrPublisherNotFound
}

func (m *memPublishers) List(context.Context) ([]*catalog.Publisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*catalog.Publisher, 0, len(m.items))
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPublishers) Update(context.Context, *catalog.Publisher) error { return errors.New("not used") }
func (m *memPublishers) Delete(context.Context, int64) error              { return errors.New("not used") }
func (m *memPublishers) CountTitles(context.Context, int64) (int, error)  { return 0, nil }

func (m *memPublishers) Stats(_ context.Context, id int64) (*catalog.PublisherStats, error) {
	return &catalog.PublisherStats{PublisherID: id}, nil
}
