package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInternal          = errors.New("internal server error")
)

// AppError pairs one of the sentinel kinds above with a short client-facing message.
type AppError struct {
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrInternal.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError of the given kind.
func New(kind error, message string) *AppError {
	return &AppError{
		Message: message,
		Err:     kind,
	}
}

func Unauthenticated(message string) *AppError { return New(ErrUnauthenticated, message) }
func Forbidden(message string) *AppError       { return New(ErrForbidden, message) }
func NotFound(message string) *AppError        { return New(ErrNotFound, message) }
func Validation(message string) *AppError      { return New(ErrValidation, message) }
func Conflict(message string) *AppError        { return New(ErrConflict, message) }

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// IsKnown reports whether err carries one of the client-facing kinds.
func IsKnown(err error) bool {
	return MapErrorToStatus(err) != http.StatusInternalServerError
}
