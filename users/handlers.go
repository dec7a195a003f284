package users

import (
	"encoding/json"
	"net/http"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
)

// UserHandlers exposes the profile endpoints.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// decodeStrict decodes a JSON body and rejects unknown fields, so a patch
// naming a field outside the permitted set is a 400 rather than a silent
// no-op.
func decodeStrict(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Invalid updates", err)
	}
	return nil
}

// HandleGetProfile godoc
// @Summary Get the current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.User
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/auth/profile [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), user.ID)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateProfile godoc
// @Summary Update the current user's profile
// @Description Accepts only username, email and profilePicture; any other
// @Description field is rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body users.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} users.ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse "Unknown field or duplicate value"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/auth/profile [patch]
func (h *UserHandlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}

		var req UpdateProfileRequest
		if err := decodeStrict(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		if req.Empty() {
			apperror.WriteError(w, apperror.NewValidationError("No fields provided for update", nil))
			return
		}

		updated, err := h.service.UpdateProfile(r.Context(), user.ID, &req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, ProfileResponse{
			Message: "Profile updated successfully",
			User:    updated,
		})
	}
}

// HandleListUsers godoc
// @Summary List all user accounts
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ListUsersResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse "Admin access required"
// @Router /api/auth/users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.service.ListUsers(r.Context())
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}
