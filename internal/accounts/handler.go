package accounts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

// Handler provides HTTP endpoints for signup, login, and profile updates.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "accounts"),
	}
}

// Routes returns the /auth route group. protect wraps the profile update
// endpoint when tokens are required; it may be nil.
func (h *Handler) Routes(protect func(http.Handler) http.Handler) routes.Group {
	group := routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/signup", Handler: h.Signup},
			{Method: "POST", Pattern: "/login", Handler: h.Login},
		},
	}

	profile := routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/update-profile", Handler: h.UpdateProfile},
		},
	}
	if protect != nil {
		profile.Middleware = append(profile.Middleware, protect)
	}
	group.Children = []routes.Group{profile}
	return group
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd SignupCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := h.sys.Signup(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.respondSession(w, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd LoginCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := h.sys.Login(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.respondSession(w, session)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := Authorize(r.Context(), cmd.Email); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	user, err := h.sys.UpdateProfile(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, handlers.Envelope{"user": user})
}

func (h *Handler) respondSession(w http.ResponseWriter, s *Session) {
	body := handlers.Envelope{"user": s.User}
	if s.Token != "" {
		body["token"] = s.Token
	}
	handlers.RespondJSON(w, http.StatusOK, body)
}
