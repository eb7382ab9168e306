// Package handlers provides the JSON response envelope shared by every endpoint.
//
// Successful bodies carry "success": true alongside their payload fields;
// failures are always {"success": false, "error": "<message>"}.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrInvalidBody is returned by DecodeJSON when a request body is missing,
// malformed, or carries fields the target type does not declare.
var ErrInvalidBody = errors.New("invalid request body")

// Envelope is a success payload. The success flag is added by RespondJSON.
type Envelope map[string]any

// RespondJSON writes data as JSON with the given status.
// Envelope values are stamped with success=true.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	if env, ok := data.(Envelope); ok {
		env["success"] = true
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes the failure envelope with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// DecodeJSON strictly decodes the request body into v.
// Unknown fields and trailing data are rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidBody
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected trailing data", ErrInvalidBody)
	}
	return nil
}
