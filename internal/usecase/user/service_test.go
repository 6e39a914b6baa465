package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/auth"
	"revista/backend/internal/pagination"
)

type mockUserRepo struct {
	createFn         func(ctx context.Context, u *domain.User) error
	getByEmailFn     func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn        func(ctx context.Context, id int64) (*domain.User, error)
	listFn           func(ctx context.Context, f domain.UserFilter) ([]*domain.User, int, error)
	updateFn         func(ctx context.Context, u *domain.User) error
	deleteFn         func(ctx context.Context, id int64) error
	updatePasswordFn func(ctx context.Context, id int64, hash string) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error { return m.createFn(ctx, u) }
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockUserRepo) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
	return m.listFn(ctx, f)
}
func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error { return m.updateFn(ctx, u) }
func (m *mockUserRepo) Delete(ctx context.Context, id int64) error      { return m.deleteFn(ctx, id) }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.updatePasswordFn(ctx, id, hash)
}

type prefixHasher struct{}

func (prefixHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (prefixHasher) Verify(p, h string) bool      { return h == "h:"+p }

func newService(repo *mockUserRepo) *Service {
	svc := NewService(repo, prefixHasher{})
	svc.nowFunc = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreateWithRole(t *testing.T) {
	var stored *domain.User
	repo := &mockUserRepo{
		getByEmailFn: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
		createFn: func(_ context.Context, u *domain.User) error {
			u.ID = 5
			stored = u
			return nil
		},
	}

	user, err := newService(repo).Create(context.Background(), CreateInput{
		Name: "Eddie", Email: "Ed@X.com", Password: "whatever1", Role: "Editor",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, user.Role)
	assert.Equal(t, "ed@x.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "h:whatever1", stored.PasswordHash)
}

func TestCreateRejectsUnknownRoleAndDuplicates(t *testing.T) {
	repo := &mockUserRepo{
		getByEmailFn: func(context.Context, string) (*domain.User, error) { return &domain.User{ID: 1}, nil },
	}
	svc := newService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Eddie", Email: "ed@x.com", Password: "whatever1", Role: "owner"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Eddie", Email: "ed@x.com", Password: "whatever1", Role: "reader"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestUpdateEmptyDiffIsNoop(t *testing.T) {
	current := &domain.User{ID: 3, Name: "Ann", Email: "ann@x.com", Role: domain.RoleReader}
	repo := &mockUserRepo{
		getByIDFn: func(context.Context, int64) (*domain.User, error) { return current, nil },
		updateFn: func(context.Context, *domain.User) error {
			t.Fatal("update must not be called for an empty diff")
			return nil
		},
	}

	user, err := newService(repo).Update(context.Background(), 3, UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
}

func TestUpdateChecksEmailExcludingSelf(t *testing.T) {
	current := &domain.User{ID: 3, Name: "Ann", Email: "ann@x.com", Role: domain.RoleReader}
	repo := &mockUserRepo{
		getByIDFn: func(context.Context, int64) (*domain.User, error) { cp := *current; return &cp, nil },
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email == "taken@x.com" {
				return &domain.User{ID: 9}, nil
			}
			return nil, domain.ErrUserNotFound
		},
		updateFn:         func(context.Context, *domain.User) error { return nil },
		updatePasswordFn: func(context.Context, int64, string) error { return nil },
	}
	svc := newService(repo)

	_, err := svc.Update(context.Background(), 3, UpdateInput{Email: strPtr("TAKEN@x.com")})
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	user, err := svc.Update(context.Background(), 3, UpdateInput{Email: strPtr("new@x.com"), Role: strPtr("admin")})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestUpdatePasswordInSingleWrite(t *testing.T) {
	current := &domain.User{ID: 3, Name: "Ann", Email: "ann@x.com", Role: domain.RoleReader, PasswordHash: "h:old"}
	var written []*domain.User
	repo := &mockUserRepo{
		getByIDFn: func(context.Context, int64) (*domain.User, error) { cp := *current; return &cp, nil },
		updateFn: func(_ context.Context, u *domain.User) error {
			cp := *u
			written = append(written, &cp)
			return nil
		},
		updatePasswordFn: func(context.Context, int64, string) error {
			t.Fatal("password must be written together with the other fields")
			return nil
		},
	}
	svc := newService(repo)

	user, err := svc.Update(context.Background(), 3, UpdateInput{Name: strPtr("Annie"), Password: strPtr("fresh-pass1")})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Update(context.Background(), 3, UpdateInput{Name: strPtr("Annie")})
	require.NoError(t, err)

	require.Len(t, written, 2)
	assert.Equal(t, "Annie", written[0].Name)
	assert.Equal(t, "h:fresh-pass1", written[0].PasswordHash)
	assert.Empty(t, written[1].PasswordHash, "stored hash is left alone")
}

func TestUpdateMissingUser(t *testing.T) {
	repo := &mockUserRepo{
		getByIDFn: func(context.Context, int64) (*domain.User, error) { return nil, domain.ErrUserNotFound },
	}
	_, err := newService(repo).Update(context.Background(), 77, UpdateInput{Name: strPtr("Bob")})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = newService(repo).Update(context.Background(), 0, UpdateInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestListPaginates(t *testing.T) {
	var got domain.UserFilter
	repo := &mockUserRepo{
		listFn: func(_ context.Context, f domain.UserFilter) ([]*domain.User, int, error) {
			got = f
			return []*domain.User{{ID: 1, PasswordHash: "secret"}}, 41, nil
		},
	}

	env, err := newService(repo).List(context.Background(), "Editor", pagination.Normalize("2", "20"))
	require.NoError(t, err)
	assert.Equal(t, domain.UserFilter{Role: domain.RoleEditor, Limit: 20, Offset: 20}, got)
	assert.Equal(t, 3, env.Pagination.TotalPages)
	assert.Empty(t, env.Data[0].PasswordHash)

	_, err = newService(repo).List(context.Background(), "owner", pagination.Normalize("", ""))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
