package accounts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/hand2voice/pkg/handlers"
)

// RequireToken rejects requests without a valid bearer token and stores
// the token's email in the request context.
func RequireToken(tokens *Tokens, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			email, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("token rejected", "error", err)
				handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmail(r.Context(), email)))
		})
	}
}
