// Package users implements profile management on top of the auth user model.
package users

import "github.com/medaruler/unlocked-library/auth"

// UpdateProfileRequest is the typed partial update for a profile. Only the
// fields listed here can be patched; the strict decoder rejects anything
// else, so the permitted set is fixed at compile time rather than checked
// against a runtime whitelist.
type UpdateProfileRequest struct {
	Username       *string `json:"username,omitempty" example:"alice2"`
	Email          *string `json:"email,omitempty" example:"alice2@example.com"`
	ProfilePicture *string `json:"profilePicture,omitempty" example:"avatars/alice.png"`
}

// Empty reports whether the patch carries no fields at all.
func (r *UpdateProfileRequest) Empty() bool {
	return r.Username == nil && r.Email == nil && r.ProfilePicture == nil
}

// ProfileResponse wraps an updated profile.
type ProfileResponse struct {
	Message string     `json:"message,omitempty"`
	User    *auth.User `json:"user"`
}

// ListUsersResponse is the admin user listing.
type ListUsersResponse struct {
	Users      []auth.User `json:"users"`
	TotalUsers int64       `json:"totalUsers"`
}
