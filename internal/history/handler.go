package history

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "history"),
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type addRequest struct {
	Email string         `json:"email"`
	Entry map[string]any `json:"entry"`
}

// Routes returns the /history route group. protect, when non-nil, wraps
// every endpoint.
func (h *Handler) Routes(protect func(http.Handler) http.Handler) routes.Group {
	group := routes.Group{
		Prefix: "/history",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/get", Handler: h.Get},
			{Method: "POST", Pattern: "/add", Handler: h.Add},
			{Method: "POST", Pattern: "/clear", Handler: h.Clear},
		},
	}
	if protect != nil {
		group.Middleware = append(group.Middleware, protect)
	}
	return group
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.decode(w, r, &req, func() string { return req.Email }) {
		return
	}

	entries, err := h.sys.Get(r.Context(), req.Email)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{"history": entries})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !h.decode(w, r, &req, func() string { return req.Email }) {
		return
	}

	entries, err := h.sys.Add(r.Context(), req.Email, req.Entry)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{
		"message": "History entry added",
		"history": entries,
	})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.decode(w, r, &req, func() string { return req.Email }) {
		return
	}

	if err := h.sys.Clear(r.Context(), req.Email); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{"message": "History cleared"})
}

// decode reads the body into v and checks that an authenticated caller is
// acting on its own history. It writes the failure response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, email func() string) bool {
	if err := handlers.DecodeJSON(r, v); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return false
	}
	if err := accounts.Authorize(r.Context(), email()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return false
	}
	return true
}
