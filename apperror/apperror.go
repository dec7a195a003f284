// Package apperror defines the application's error vocabulary and its mapping
// to HTTP status codes. Services return these typed errors and the HTTP layer
// translates them at the boundary, so handlers never hand-pick status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// ValidationError represents malformed or otherwise invalid input.
	ValidationError
	// ConflictError represents duplicate input (taken username, duplicate
	// wiki title). The API reports duplicates as 400, not 409.
	ConflictError
	// AuthError represents an authentication failure: missing, malformed or
	// expired token, or bad credentials.
	AuthError
	// ForbiddenError represents an authorization failure on admin-only
	// routes. Ownership mismatches on regular routes are reported as
	// NotFoundError instead, to avoid leaking resource existence.
	ForbiddenError
	// NotFoundError represents a missing resource, or an ownership mismatch
	// disguised as one.
	NotFoundError
	// DatabaseError represents an error originating from the database.
	DatabaseError
	// StorageError represents a failure talking to object storage.
	StorageError
	// ConfigError represents an error in application configuration.
	ConfigError
	// InternalError represents any other server-side failure.
	InternalError
)

// AppError is the error type returned by service code. It carries a
// user-facing message and optionally wraps the underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError, ConflictError:
		return http.StatusBadRequest
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case DatabaseError, StorageError, ConfigError, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError with an arbitrary type.
func New(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string, underlying error) *AppError {
	return New(ValidationError, message, underlying)
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string, underlying error) *AppError {
	return New(ConflictError, message, underlying)
}

// NewAuthError creates an AuthError.
func NewAuthError(message string, underlying error) *AppError {
	return New(AuthError, message, underlying)
}

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string, underlying error) *AppError {
	return New(ForbiddenError, message, underlying)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string, underlying error) *AppError {
	return New(NotFoundError, message, underlying)
}

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return New(DatabaseError, message, underlying)
}

// NewStorageError creates a StorageError.
func NewStorageError(message string, underlying error) *AppError {
	return New(StorageError, message, underlying)
}

// NewConfigError creates a ConfigError.
func NewConfigError(message string, underlying error) *AppError {
	return New(ConfigError, message, underlying)
}

// NewInternalError creates an InternalError.
func NewInternalError(message string, underlying error) *AppError {
	return New(InternalError, message, underlying)
}

// ErrorResponse is the JSON body sent for every failed request.
type ErrorResponse struct {
	Message string `json:"message" example:"A description of the error"`
	// Detail carries the underlying error text and is only populated when
	// the server runs in development mode.
	Detail string `json:"error,omitempty"`
}

// ToResponse converts an AppError to its API representation. The wrapped
// cause is included only when detail is requested (development mode).
func (e *AppError) ToResponse(detail bool) ErrorResponse {
	resp := ErrorResponse{Message: e.Message}
	if detail && e.Err != nil {
		resp.Detail = e.Err.Error()
	}
	return resp
}

// FromError converts a generic error to an *AppError if it is one.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ForbiddenError
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}
