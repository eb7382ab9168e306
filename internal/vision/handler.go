package vision

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hand2voice/internal/prompts"
	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

// Handler provides HTTP endpoints for image analysis.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "vision"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/analyze", Handler: h.Analyze},
			{Method: "GET", Pattern: "/analyze/modes", Handler: h.Modes},
		},
	}
}

// Analyze accepts a multipart form with an image file, an optional mode,
// and an optional custom prompt that overrides the mode.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := handlers.ParseUpload(w, r, h.maxUploadSize); err != nil {
		h.uploadError(w, err)
		return
	}
	defer handlers.CleanupUpload(r)

	data, _, err := handlers.FormFile(r, "image")
	if err != nil {
		h.uploadError(w, err)
		return
	}

	var result *Result
	if prompt := r.FormValue("prompt"); prompt != "" {
		result, err = h.sys.AnalyzeWithPrompt(r.Context(), data, prompt)
	} else {
		result, err = h.sys.Analyze(r.Context(), data, prompts.ParseMode(r.FormValue("mode")))
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("analysis complete", "mode", result.Mode, "chars", len(result.Description))

	body := handlers.Envelope{
		"description": result.Description,
		"mode":        result.Mode,
	}
	if result.Hazard != nil {
		body["hazard"] = result.Hazard
	}
	handlers.RespondJSON(w, http.StatusOK, body)
}

// Modes lists the catalog analysis modes.
func (h *Handler) Modes(w http.ResponseWriter, r *http.Request) {
	type mode struct {
		Name       prompts.Mode `json:"name"`
		Structured bool         `json:"structured"`
	}

	modes := make([]mode, 0, len(prompts.Modes()))
	for _, m := range prompts.Modes() {
		modes = append(modes, mode{Name: m, Structured: m.Structured()})
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{"modes": modes})
}

func (h *Handler) uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, handlers.ErrMissingFile) {
		err = ErrNoImage
	}
	handlers.RespondError(w, h.logger, handlers.UploadStatus(err), err)
}
