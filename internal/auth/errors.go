package auth

import (
	"errors"
	"net/http"
)

// Domain errors for authentication and authorization.
var (
	ErrNotReady        = errors.New("auth provider not ready")
	ErrInvalidToken    = errors.New("invalid bearer token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("caller lacks required role")
)

// MapHTTPStatus maps auth errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
