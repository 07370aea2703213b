package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *AppError
		want int
	}{
		{NewAuthError("bad credentials", nil), http.StatusUnauthorized},
		{NewUnauthorizedError("no permission", nil), http.StatusForbidden},
		{NewValidationError("bad field", nil), http.StatusBadRequest},
		{NewBadRequestError("bad body", nil), http.StatusBadRequest},
		{NewNotFoundError("missing", nil), http.StatusNotFound},
		{NewConflictError("duplicate", nil), http.StatusConflict},
		{NewExternalServiceError("s3 down", nil), http.StatusBadGateway},
		{NewDatabaseError("db down", nil), http.StatusInternalServerError},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestToResponse(t *testing.T) {
	t.Parallel()

	appErr := NewValidationError("validation failed", nil).
		WithDetails("name is required", "email must be a valid email address")

	resp := appErr.ToResponse("/auth/register", http.MethodPost)

	assert.False(t, resp.Status)
	assert.Equal(t, "validation failed", resp.Message)
	assert.Equal(t, http.StatusBadRequest, resp.Error.Code)
	assert.Equal(t, "/auth/register", resp.Error.Path)
	assert.Equal(t, http.MethodPost, resp.Error.Method)
	assert.NotEmpty(t, resp.Error.Timestamp)
	assert.Equal(t, []string{"name is required", "email must be a valid email address"}, resp.Details)
}

func TestFromError(t *testing.T) {
	t.Parallel()

	appErr := NewNotFoundError("missing", nil)
	wrapped := errors.Join(errors.New("outer"), appErr)

	got, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, appErr, got)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	appErr := NewDatabaseError("query failed", cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "query failed")
}

func TestTypePredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(NewNotFoundError("x", nil)))
	assert.True(t, IsAuthError(NewAuthError("x", nil)))
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsConflictError(NewConflictError("x", nil)))
	assert.False(t, IsNotFound(NewConflictError("x", nil)))
	assert.False(t, IsAuthError(errors.New("plain")))
}
