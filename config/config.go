// Package config loads and validates application configuration from
// environment variables. Missing or malformed values are collected and
// reported together so a misconfigured deployment fails fast with a single
// actionable error instead of one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds connection settings for the PostgreSQL pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	JWTSecret            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// StorageConfig holds object storage (S3-compatible) settings used for video
// and thumbnail uploads.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL is the externally reachable prefix for uploaded objects,
	// e.g. "https://storage.example.com/unlocked-library".
	PublicBaseURL string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string
	CORSOrigin     string
	Environment    string // "development" or "production"
	MaxUploadBytes int64
}

// AppConfig is the top-level configuration structure.
type AppConfig struct {
	DB      *DatabaseConfig
	Auth    *AuthConfig
	Storage *StorageConfig
	Server  *ServerConfig
}

// IsDevelopment reports whether the server runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvInt64(key string, defaultValue int64, errs *[]string) int64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errs *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected boolean, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool within sane bounds.
func clampPoolSize(size int) int {
	if size < 2 {
		return 2
	}
	if size > 100 {
		return 100
	}
	return size
}

// LoadConfig reads all configuration from the environment. It collects every
// error encountered and returns them as one aggregated error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	db := &DatabaseConfig{
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errs),
		User:     getRequiredEnv("DB_USER", &errs),
		Password: getRequiredEnv("DB_PASSWORD", &errs),
		DBName:   getRequiredEnv("DB_NAME", &errs),
		MaxConns: clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs)),
	}

	auth := &AuthConfig{
		JWTSecret: getRequiredEnv("JWT_SECRET", &errs),
		// The original deployment issued 7-day tokens; the refresh token
		// outlives the access token by a factor of four.
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 168*time.Hour, &errs),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 672*time.Hour, &errs),
	}

	storage := &StorageConfig{
		Endpoint:      getRequiredEnv("STORAGE_ENDPOINT", &errs),
		AccessKey:     getRequiredEnv("STORAGE_ACCESS_KEY", &errs),
		SecretKey:     getRequiredEnv("STORAGE_SECRET_KEY", &errs),
		Bucket:        getOptionalEnv("STORAGE_BUCKET", "unlocked-library"),
		UseSSL:        getOptionalEnvBool("STORAGE_USE_SSL", true, &errs),
		PublicBaseURL: getOptionalEnv("STORAGE_PUBLIC_URL", ""),
	}
	if storage.PublicBaseURL == "" && storage.Endpoint != "" {
		scheme := "https"
		if !storage.UseSSL {
			scheme = "http"
		}
		storage.PublicBaseURL = fmt.Sprintf("%s://%s/%s", scheme, storage.Endpoint, storage.Bucket)
	}

	server := &ServerConfig{
		Port:           getOptionalEnv("PORT", "8000"),
		CORSOrigin:     getOptionalEnv("CORS_ORIGIN", "*"),
		Environment:    getOptionalEnv("APP_ENV", "development"),
		MaxUploadBytes: getOptionalEnvInt64("MAX_UPLOAD_SIZE", 100*1024*1024, &errs),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{DB: db, Auth: auth, Storage: storage, Server: server}, nil
}
