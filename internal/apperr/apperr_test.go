package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusBadRequest,
		KindInvalidID:          http.StatusBadRequest,
		KindUnauthenticated:    http.StatusUnauthorized,
		KindInvalidCredentials: http.StatusUnauthorized,
		KindInvalidPassword:    http.StatusUnauthorized,
		KindInvalidToken:       http.StatusUnauthorized,
		KindForbidden:          http.StatusForbidden,
		KindNotFound:           http.StatusNotFound,
		KindConflict:           http.StatusConflict,
		KindTooManyRequests:    http.StatusTooManyRequests,
		KindUnavailable:        http.StatusServiceUnavailable,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestIsMatchesCopies(t *testing.T) {
	wrapped := ErrInvalidID.Wrap(errors.New("strconv"))
	assert.ErrorIs(t, wrapped, ErrInvalidID)
	assert.NotErrorIs(t, wrapped, ErrValidation)

	detailed := Validation(FieldError{Field: "email", Message: "is required"})
	assert.ErrorIs(t, detailed, ErrValidation)
	require.Len(t, detailed.Details, 1)
	assert.Empty(t, ErrValidation.Details, "sentinel must not be mutated")

	outer := fmt.Errorf("loading: %w", wrapped)
	assert.ErrorIs(t, outer, ErrInvalidID)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	plain := From(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, "INTERNAL_ERROR", plain.Code)

	deadline := From(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, KindUnavailable, deadline.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, deadline.Status())

	structured := From(fmt.Errorf("outer: %w", ErrNoValidField))
	assert.Equal(t, "NO_VALID_FIELDS", structured.Code)
}
