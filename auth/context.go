package auth

import "context"

// contextKey is a private type so context values set here cannot collide
// with other packages.
type contextKey string

const userContextKey contextKey = "auth_user"

// WithUser returns a child context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user, if any. Handlers behind
// RequireAuth can rely on the user being present; handlers behind
// OptionalAuth must check the second return value.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
