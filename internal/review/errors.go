package review

import (
	"errors"
	"net/http"
)

// Domain errors for review engine operations.
var (
	ErrUnauthorized      = errors.New("caller lacks admin capability")
	ErrNotFound          = errors.New("contribution not found")
	ErrInvalidConfidence = errors.New("confidence level must be high, medium, or low")
	ErrMissingFields     = errors.New("brand and manufacturer are required")
	ErrDuplicate         = errors.New("classification already exists")
)

// MapHTTPStatus maps review engine errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidConfidence), errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
