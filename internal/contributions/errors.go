package contributions

import (
	"errors"
	"net/http"
)

// Domain errors for contribution operations.
var (
	ErrNotFound            = errors.New("contribution not found")
	ErrDuplicate           = errors.New("contribution already exists")
	ErrInvalidSubmission   = errors.New("invalid submission")
	ErrMissingProductImage = errors.New("product image required")
	ErrInvalidLocation     = errors.New("location out of range")
	ErrNotEditable         = errors.New("contribution is no longer editable")
	ErrFileTooLarge        = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps contribution domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNotEditable):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSubmission),
		errors.Is(err, ErrMissingProductImage),
		errors.Is(err, ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
