// HTTP middleware enforcing the authorization rules: a bearer token must
// resolve to a live user record before a protected handler runs, and
// admin-only routes additionally require the admin role.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/medaruler/unlocked-library/apperror"
)

// Authenticator is the subset of AuthService the middleware needs. Defined
// as an interface so the middleware can be exercised without a database.
type Authenticator interface {
	ValidateAccessToken(tokenString string) (*CustomClaims, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// resolveUser validates the token and loads the user it names. Any failure
// collapses to a single authentication error; a token naming a deleted user
// is as invalid as a malformed one.
func resolveUser(r *http.Request, a Authenticator) (*User, error) {
	tokenString, ok := bearerToken(r)
	if !ok {
		return nil, apperror.NewAuthError("Authentication required", nil)
	}
	claims, err := a.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, apperror.NewAuthError("Please authenticate", err)
	}
	user, err := a.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Please authenticate", err)
	}
	return user, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func RequireAuth(a Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, a)
			if err != nil {
				apperror.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth resolves an identity when a valid token is present but lets
// anonymous requests through. Listing and detail endpoints use it for the
// visibility rules.
func OptionalAuth(a Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := resolveUser(r, a); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must be mounted after RequireAuth. Non-admin users get a 403,
// distinct from the 401 of a failed authentication.
func RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				apperror.WriteError(w, apperror.NewAuthError("Authentication required", nil))
				return
			}
			if !user.IsAdmin() {
				apperror.WriteError(w, apperror.NewForbiddenError("Admin access required", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
