package auth

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medaruler/unlocked-library/config"
)

func testService() *AuthService {
	cfg := config.AuthConfig{
		JWTSecret:            "test-secret-do-not-use",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	}
	return NewAuthService(nil, cfg, zerolog.Nop())
}

func testUser() *User {
	return &User{
		ID:       "3f1f0c9a-2a43-4f5a-9f2e-6a1f6f2b8c11",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     RoleUser,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testService()
	user := testUser()

	pair, err := s.generateTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Token)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Greater(t, pair.ExpiresAt, time.Now().Unix())

	claims, err := s.ValidateAccessToken(pair.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	s := testService()

	pair, err := s.generateTokens(testUser())
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsTampered(t *testing.T) {
	s := testService()

	pair, err := s.generateTokens(testUser())
	require.NoError(t, err)

	tampered := pair.Token[:len(pair.Token)-2] + "xx"
	_, err = s.ValidateAccessToken(tampered)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	s := testService()
	other := NewAuthService(nil, config.AuthConfig{
		JWTSecret:            "a-different-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	}, zerolog.Nop())

	pair, err := other.generateTokens(testUser())
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(pair.Token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.AuthConfig{
		JWTSecret:            "test-secret-do-not-use",
		AccessTokenDuration:  -time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
	}
	s := NewAuthService(nil, cfg, zerolog.Nop())

	pair, err := s.generateTokens(testUser())
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(pair.Token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret-password")))
	assert.Error(t, bcrypt.CompareHashAndPassword(hash, []byte("wrong-password")))
}

func TestLoginKey(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"username unchanged", "alice", "alice"},
		{"mixed-case username unchanged", "AliceB", "AliceB"},
		{"email lowercased", "Alice@Example.COM", "alice@example.com"},
		{"lowercase email unchanged", "alice@example.com", "alice@example.com"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, loginKey(tc.identifier))
		})
	}
}
