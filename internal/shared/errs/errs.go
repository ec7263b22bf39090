// Package errs defines the error taxonomy of the endpoint surface and
// its mapping to HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel categories. Wrap these via the constructors so handlers can
// classify with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
)

// Validation creates a request-validation error (HTTP 400).
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Permission creates a permission-gate error (HTTP 403).
func Permission(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrPermission}, args...)...)
}

// NotFound creates a missing-resource error (HTTP 404).
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// HTTPStatus maps an error to its response status. Uncategorized
// errors are internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
