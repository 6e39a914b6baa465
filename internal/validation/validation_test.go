package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revista/backend/internal/apperr"
)

type signup struct {
	Name     string  `json:"name" validate:"required,min=2,max=255,personname"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128,password"`
	Bio      *string `json:"bio" validate:"omitempty,max=10"`
	Year     int     `json:"year" validate:"omitempty,gte=1900,lte=2100"`
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	out := map[string]string{}
	for _, d := range appErr.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestValidateAcceptsValidPayload(t *testing.T) {
	err := Validate(signup{Name: "Ann Lee", Email: "ann@x.com", Password: "Secret#123", Year: 1999})
	assert.NoError(t, err)
}

func TestValidateReportsFieldsByJSONName(t *testing.T) {
	long := "this bio is far too long"
	err := Validate(signup{Name: "A1", Email: "nope", Password: "short", Bio: &long, Year: 1800})
	got := fields(t, err)

	assert.Equal(t, "can only contain letters and spaces", got["name"])
	assert.Equal(t, "must be a valid email address", got["email"])
	assert.Equal(t, "must be at least 8 characters long", got["password"])
	assert.Equal(t, "must be at most 10 characters long", got["bio"])
	assert.Equal(t, "must be greater than or equal to 1900", got["year"])
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Secret#123": true,
		"secret#123": false,
		"SECRET#123": false,
		"Secret#abc": false,
		"Secret1234": false,
		"Sécret#123": true,
	}
	for pw, ok := range cases {
		err := Validate(signup{Name: "Ann", Email: "a@b.co", Password: pw})
		if ok {
			assert.NoError(t, err, pw)
			continue
		}
		assert.Contains(t, fields(t, err), "password", pw)
	}
}

func TestValidateRequired(t *testing.T) {
	got := fields(t, Validate(signup{}))
	assert.Equal(t, "is required", got["name"])
	assert.Equal(t, "is required", got["email"])
	assert.Equal(t, "is required", got["password"])
	assert.NotContains(t, got, "bio")
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc", "12abc", "1.5", "99999999999999999999"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, apperr.ErrInvalidID, raw)
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID("")
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = ParseOptionalID("x")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, CheckID(1))
	assert.ErrorIs(t, CheckID(0), apperr.ErrInvalidID)
}
