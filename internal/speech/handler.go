package speech

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

// Handler provides the HTTP endpoint for transcription.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "speech"),
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/transcribe", Handler: h.Transcribe},
		},
	}
}

// Transcribe accepts a multipart form with an audio file.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := handlers.ParseUpload(w, r, h.maxUploadSize); err != nil {
		h.uploadError(w, err)
		return
	}
	defer handlers.CleanupUpload(r)

	data, header, err := handlers.FormFile(r, "audio")
	if err != nil {
		h.uploadError(w, err)
		return
	}

	audio := NewAudio(data, header.Filename, header.Header.Get("Content-Type"))
	text, err := h.sys.Transcribe(r.Context(), audio)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{"text": text})
}

func (h *Handler) uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, handlers.ErrMissingFile) {
		err = ErrNoAudio
	}
	handlers.RespondError(w, h.logger, handlers.UploadStatus(err), err)
}
