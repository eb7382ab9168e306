package accounts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/hand2voice/pkg/handlers"
)

// Error text is returned to clients verbatim.
var (
	ErrMissingFields      = errors.New("Missing required fields")
	ErrMissingCredentials = errors.New("Missing email or password")
	ErrEmailRequired      = errors.New("Email required")
	ErrDuplicateEmail     = errors.New("Email already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrNotFound           = errors.New("User not found")
	ErrUnauthorized       = errors.New("Authentication required")
	ErrForbidden          = errors.New("Token does not match email")
)

// MapHTTPStatus maps account errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
