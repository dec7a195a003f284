package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"conflict maps to 400", NewConflictError("duplicate", nil), http.StatusBadRequest},
		{"auth", NewAuthError("no token", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("admins only", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"database", NewDatabaseError("query failed", nil), http.StatusInternalServerError},
		{"storage", NewStorageError("upload failed", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := NewNotFoundError("Video not found", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Video not found: row not found", err.Error())

	bare := NewNotFoundError("Video not found", nil)
	assert.Equal(t, "Video not found", bare.Error())
}

func TestPredicates(t *testing.T) {
	var err error = NewNotFoundError("missing", nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAuthError(err))

	wrapped := errors.Join(errors.New("outer"), NewAuthError("token expired", nil))
	assert.True(t, IsAuthError(wrapped))
}

func TestToResponse(t *testing.T) {
	err := NewDatabaseError("failed to load video", errors.New("connection refused"))

	t.Run("production hides the cause", func(t *testing.T) {
		resp := err.ToResponse(false)
		assert.Equal(t, "failed to load video", resp.Message)
		assert.Empty(t, resp.Detail)
	})

	t.Run("development includes the cause", func(t *testing.T) {
		resp := err.ToResponse(true)
		assert.Equal(t, "failed to load video", resp.Message)
		assert.Contains(t, resp.Detail, "connection refused")
	})
}

func TestFromError(t *testing.T) {
	appErr := NewValidationError("bad input", nil)
	got, ok := FromError(appErr)
	require.True(t, ok)
	require.Same(t, appErr, got)

	_, ok = FromError(errors.New("something broke"))
	assert.False(t, ok)
}
