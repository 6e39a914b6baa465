package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"

	"revista/backend/internal/apperr"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeQueryCanceled       = "57014"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeForeignKeyViolation
}

func constraintName(err error) string {
	if pgErr, ok := pgError(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}

// translate maps driver failures onto the error taxonomy. Constraint
// violations become the same errors the services' pre-checks return, so a
// lost check-then-insert race looks identical to a caught duplicate.
func translate(err error, constraints map[string]*apperr.Error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) || isForeignKeyViolation(err) {
		if mapped, ok := constraints[constraintName(err)]; ok {
			return mapped.Wrap(err)
		}
	}
	if pgErr, ok := pgError(err); ok && pgErr.Code == codeQueryCanceled {
		return apperr.ErrUnavailable.Wrap(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, puddle.ErrClosedPool) {
		return apperr.ErrUnavailable.Wrap(err)
	}
	return err
}

// notFoundAs turns pgx.ErrNoRows into notFound and translates anything else.
func notFoundAs(err error, notFound *apperr.Error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return translate(err, nil)
}
