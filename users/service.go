package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/auth"
)

// UserService provides profile reads and updates.
type UserService struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserService creates a UserService.
func NewUserService(db *pgxpool.Pool, logger zerolog.Logger) *UserService {
	return &UserService{db: db, logger: logger.With().Str("component", "users").Logger()}
}

const userColumns = `id, username, email, profile_picture, role, created_at, updated_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.ProfilePicture, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile loads a profile (without the password hash).
func (s *UserService) GetProfile(ctx context.Context, userID string) (*auth.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update built from the patch's non-nil
// fields. Duplicate usernames and emails surface as 400s, like at
// registration.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*auth.User, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if req.Username != nil {
		appendSet("username", *req.Username)
	}
	if req.Email != nil {
		appendSet("email", strings.ToLower(*req.Email))
	}
	if req.ProfilePicture != nil {
		appendSet("profile_picture", *req.ProfilePicture)
	}

	if len(setClauses) == 0 {
		return s.GetProfile(ctx, userID)
	}
	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, userID)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argID,
	)

	user, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperror.NewConflictError("Username or email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update profile", err)
	}
	return user, nil
}

// ListUsers returns every account. Admin-only; the one place the API
// acknowledges accounts other than the caller's.
func (s *UserService) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	users := make([]auth.User, 0)
	for rows.Next() {
		var u auth.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.ProfilePicture, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return &ListUsersResponse{Users: users, TotalUsers: int64(len(users))}, nil
}
