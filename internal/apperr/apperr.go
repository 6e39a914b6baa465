// Package apperr defines the structured error used across the service layer.
// Services return *Error values (or wrap them) and the HTTP boundary renders
// them; nothing below the boundary formats HTTP responses.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidID
	KindUnauthenticated
	KindInvalidCredentials
	KindInvalidPassword
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindUnavailable
)

// Status returns the HTTP status code associated with the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidID:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredentials, KindInvalidPassword, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is the structured failure returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []FieldError
	Err     error
}

// New builds an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target carries the same code. Sentinels are compared by
// code so copies produced by Wrap and WithDetails still match them.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithDetails returns a copy of e carrying the field details.
func (e *Error) WithDetails(details ...FieldError) *Error {
	cp := *e
	cp.Details = append([]FieldError(nil), details...)
	return &cp
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

var (
	ErrValidation   = New(KindValidation, "VALIDATION_ERROR", "Validation failed")
	ErrInvalidID    = New(KindInvalidID, "INVALID_ID", "Invalid ID")
	ErrInternal     = New(KindInternal, "INTERNAL_ERROR", "Internal server error")
	ErrUnavailable  = New(KindUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
	ErrRateLimited  = New(KindTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, please try again later")
	ErrNoValidField = New(KindValidation, "NO_VALID_FIELDS", "No valid fields to update")
)

// Validation builds a VALIDATION_ERROR carrying details.
func Validation(details ...FieldError) *Error {
	return ErrValidation.WithDetails(details...)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// From extracts the structured error from err. Unknown errors become
// INTERNAL_ERROR, and context deadline or cancellation become SERVICE_UNAVAILABLE.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrUnavailable.Wrap(err)
	}
	return Internal(err)
}

// KindOf returns the kind of err, KindInternal when it is not structured.
func KindOf(err error) Kind {
	return From(err).Kind
}
