package speech

import (
	"errors"
	"net/http"
)

var (
	ErrNoAudio = errors.New("No audio file provided")
	// ErrUpstream wraps any failure of the speech model call.
	ErrUpstream = errors.New("transcription request failed")
)

// MapHTTPStatus maps speech errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoAudio) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
