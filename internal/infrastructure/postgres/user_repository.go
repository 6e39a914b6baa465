package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revista/backend/internal/apperr"
	domain "revista/backend/internal/domain/auth"
)

var userConstraints = map[string]*apperr.Error{
	"users_email_lower_key": domain.ErrEmailExists,
}

const userColumns = `id, name, email, role, password_hash, created_at, updated_at`

// UserRepository persists users in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user record and sets its id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
INSERT INTO users (name, email, role, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	return translate(err, userConstraints)
}

// GetByEmail fetches a user by email, ignoring case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, strings.TrimSpace(email))
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, translate(err, nil)
	}
	return user, nil
}

// List returns one page of users and the total matching the filter.
func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users WHERE ($1 = '' OR role = $1)`
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE ($1 = '' OR role = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, string(filter.Role)).Scan(&total); err != nil {
		return nil, 0, translate(err, nil)
	}

	rows, err := r.pool.Query(ctx, query, string(filter.Role), filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, translate(err, nil)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, nil)
	}
	return users, total, nil
}

// Update persists name, email and role in one statement. A non-empty
// PasswordHash is written in the same statement; an empty one keeps the stored hash.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
UPDATE users
SET name = $2, email = $3, role = $4, updated_at = $5,
    password_hash = COALESCE(NULLIF($6::text, ''), password_hash)
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.Role, user.UpdatedAt, user.PasswordHash)
	if err != nil {
		return translate(err, userConstraints)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return translate(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
