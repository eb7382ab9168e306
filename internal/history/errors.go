package history

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/pkg/handlers"
)

var ErrEntryRequired = errors.New("History entry required")

// MapHTTPStatus maps history errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, accounts.ErrEmailRequired),
		errors.Is(err, ErrEntryRequired),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	default:
		return accounts.MapHTTPStatus(err)
	}
}
