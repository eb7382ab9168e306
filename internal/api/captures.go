package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// capturesPrefix is the storage prefix the vision archive writes under.
const capturesPrefix = "captures/"

type capturesHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newCapturesHandler(store storage.System, logger *slog.Logger) *capturesHandler {
	return &capturesHandler{
		store:  store,
		logger: logger.With("handler", "captures"),
	}
}

func (h *capturesHandler) routes(protect func(http.Handler) http.Handler) routes.Group {
	group := routes.Group{
		Prefix: "/captures",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
	if protect != nil {
		group.Middleware = append(group.Middleware, protect)
	}
	return group
}

func (h *capturesHandler) download(w http.ResponseWriter, r *http.Request) {
	key := capturesPrefix + r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("capture stream interrupted", "key", key, "error", err)
	}
}
