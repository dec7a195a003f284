package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	// PostgreSQL unique violation error code.
	pgUniqueViolation = "23505"
)

// AuthService implements registration, login and token handling.
type AuthService struct {
	db     *pgxpool.Pool
	cfg    config.AuthConfig
	logger zerolog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(db *pgxpool.Pool, cfg config.AuthConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{db: db, cfg: cfg, logger: logger.With().Str("component", "auth").Logger()}
}

// CustomClaims is the JWT payload: the subject's id and role plus the token
// type, so a refresh token cannot be replayed as an access token.
type CustomClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Register creates a new user and signs them in. Duplicate usernames and
// emails are reported as validation conflicts (HTTP 400).
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashed),
		ProfilePicture: "default-avatar.png",
		Role:           RoleUser,
	}

	query := `INSERT INTO users (id, username, email, password, profile_picture, role)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at, updated_at`
	err = s.db.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.ProfilePicture, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("Username or email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Message: "User registered successfully", TokenPair: *tokens, User: user}, nil
}

// Login authenticates by username or email plus password. The error does
// not reveal which part was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.getUserByLogin(ctx, loginKey(req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("Invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		return nil, apperror.NewAuthError("Invalid credentials", nil)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Message: "Login successful", TokenPair: *tokens, User: user}, nil
}

// RefreshToken exchanges a valid refresh token for a fresh access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("Invalid refresh token", err)
	}

	// Re-resolve the user so a deleted account or a role change takes
	// effect on the next refresh.
	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.NewAuthError("Invalid refresh token", err)
	}

	accessToken, expiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Token:        accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)) != nil {
		return apperror.NewValidationError("Current password is incorrect", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password = $1, updated_at = now() WHERE id = $2`,
		string(hashed), userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("User not found", nil)
	}
	return nil
}

// GetUserByID loads a user record by id.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, username, email, password, profile_picture, role, created_at, updated_at
	          FROM users WHERE id = $1`
	var user User
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.ProfilePicture, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("User not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	return &user, nil
}

// ValidateAccessToken parses and validates an access token string.
func (s *AuthService) ValidateAccessToken(tokenString string) (*CustomClaims, error) {
	return s.validateToken(tokenString, tokenTypeAccess)
}

// loginKey normalizes a login identifier. Emails are stored lowercased, so
// identifiers that look like one are matched case-insensitively; usernames
// are matched as entered.
func loginKey(identifier string) string {
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}

func (s *AuthService) getUserByLogin(ctx context.Context, identifier string) (*User, error) {
	query := `SELECT id, username, email, password, profile_picture, role, created_at, updated_at
	          FROM users WHERE username = $1 OR email = $1`
	var user User
	err := s.db.QueryRow(ctx, query, identifier).Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.ProfilePicture, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateTokens(user *User) (*TokenPair, error) {
	accessToken, expiresAt, err := s.generateSpecificToken(user, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.generateSpecificToken(user, tokenTypeRefresh, s.cfg.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Token:        accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

func (s *AuthService) generateSpecificToken(user *User, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(duration)
	claims := &CustomClaims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "unlocked-library",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign token", err)
	}
	return signed, expiresAt, nil
}

func (s *AuthService) validateToken(tokenString, expectedType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}
	if claims.UserID == "" {
		return nil, errors.New("user_id claim is missing")
	}
	return claims, nil
}
