package users

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
)

func patchRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/auth/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	user := &auth.User{ID: "u1", Username: "alice", Role: auth.RoleUser}
	return req.WithContext(auth.WithUser(req.Context(), user))
}

func TestDecodeStrict(t *testing.T) {
	t.Run("known fields decode", func(t *testing.T) {
		var req UpdateProfileRequest
		err := decodeStrict(patchRequest(`{"username":"bob"}`), &req)
		require.NoError(t, err)
		require.NotNil(t, req.Username)
		assert.Equal(t, "bob", *req.Username)
		assert.Nil(t, req.Email)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		var req UpdateProfileRequest
		err := decodeStrict(patchRequest(`{"bio":"hello"}`), &req)
		require.Error(t, err)
		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		var req UpdateProfileRequest
		err := decodeStrict(patchRequest(`{"username":`), &req)
		assert.Error(t, err)
	})
}

func TestUpdateProfileRequestEmpty(t *testing.T) {
	assert.True(t, (&UpdateProfileRequest{}).Empty())

	name := "bob"
	assert.False(t, (&UpdateProfileRequest{Username: &name}).Empty())
}

// A PATCH carrying a field outside the updatable set fails before any
// service call, so a nil service is safe here.
func TestHandleUpdateProfileRejectsUnknownField(t *testing.T) {
	h := NewUserHandlers(nil)

	rec := httptest.NewRecorder()
	h.HandleUpdateProfile().ServeHTTP(rec, patchRequest(`{"bio":"new bio"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid updates")
}
