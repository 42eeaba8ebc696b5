package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrValidation, ErrForbidden, ErrUnavailable}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b, "sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestTypedErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "article not found",
			err:      NewNotFoundError("article", "hello-world"),
			sentinel: ErrNotFound,
			want:     `article "hello-world" not found`,
		},
		{
			name:     "not found without id",
			err:      NewNotFoundError("session", ""),
			sentinel: ErrNotFound,
			want:     "session not found",
		},
		{
			name:     "conflict",
			err:      NewConflictError("quiz", "submission in progress"),
			sentinel: ErrConflict,
			want:     "quiz conflict: submission in progress",
		},
		{
			name:     "conflict with details",
			err:      NewConflictErrorWithDetails("article", "duplicate slug", "b.md"),
			sentinel: ErrConflict,
			want:     "article conflict: duplicate slug (b.md)",
		},
		{
			name:     "validation with field",
			err:      NewValidationError("email", "is required"),
			sentinel: ErrValidation,
			want:     "validation failed for email: is required",
		},
		{
			name:     "validation without field",
			err:      NewValidationError("", "bad input"),
			sentinel: ErrValidation,
			want:     "validation failed: bad input",
		},
		{
			name:     "forbidden",
			err:      NewForbiddenError("edit", "read-only catalog"),
			sentinel: ErrForbidden,
			want:     `operation "edit" forbidden: read-only catalog`,
		},
		{
			name:     "unavailable",
			err:      NewUnavailableError("form-relay", "status 500"),
			sentinel: ErrUnavailable,
			want:     `service "form-relay" unavailable: status 500`,
		},
		{
			name:     "unavailable without reason",
			err:      NewUnavailableError("form-relay", ""),
			sentinel: ErrUnavailable,
			want:     `service "form-relay" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	var errs FieldErrors
	require.NoError(t, errs.OrNil())

	errs = append(errs,
		&ValidationError{Field: "last_name", Message: "is required"},
		&ValidationError{Field: "email", Message: "is required"},
	)

	err := errs.OrNil()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "validation failed: last_name: is required; email: is required", err.Error())

	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 2)
}

func TestIsHelpers_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewNotFoundError("article", "x"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsForbidden(wrapped))
	assert.False(t, IsUnavailable(wrapped))

	assert.True(t, IsUnavailable(fmt.Errorf("submit: %w", NewUnavailableError("relay", ""))))
	assert.False(t, IsNotFound(errors.New("plain")))
}
