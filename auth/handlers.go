package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/medaruler/unlocked-library/apperror"
)

// Handlers exposes the auth endpoints.
type Handlers struct {
	service  *AuthService
	validate *validator.Validate
}

// NewHandlers creates auth Handlers.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service, validate: validator.New()}
}

// decode unmarshals a JSON body and runs struct validation on it.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewValidationError("Invalid request body", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperror.NewValidationError("Invalid request: "+err.Error(), err)
	}
	return nil
}

// HandleRegister godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input or duplicate username/email"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.AuthResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleRefreshToken godoc
// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}

		pair, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, pair)
	}
}

// HandleChangePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body auth.ChangePasswordRequest true "Password change"
// @Success 200 {object} auth.MessageResponse
// @Failure 400 {object} apperror.ErrorResponse "Current password is incorrect"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/auth/change-password [post]
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
			return
		}

		var req ChangePasswordRequest
		if err := h.decode(r, &req); err != nil {
			apperror.WriteError(w, err)
			return
		}

		if err := h.service.ChangePassword(r.Context(), user.ID, req); err != nil {
			apperror.WriteError(w, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Tokens are stateless; logout is an acknowledgement the client
// @Description uses to discard its copy.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.MessageResponse
// @Router /api/auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
	}
}
