package vision

import (
	"errors"
	"net/http"
)

var (
	ErrNoImage      = errors.New("No image provided")
	ErrInvalidImage = errors.New("invalid image")
	ErrEmptyPrompt  = errors.New("custom prompt must not be empty")
	// ErrUpstream wraps any failure of the vision model call.
	ErrUpstream = errors.New("vision model request failed")
)

// MapHTTPStatus maps vision errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoImage),
		errors.Is(err, ErrInvalidImage),
		errors.Is(err, ErrEmptyPrompt):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
