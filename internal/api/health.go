package api

import (
	"net/http"

	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/pkg/handlers"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

const (
	serviceRunning     = "running"
	serviceUnavailable = "unavailable"
)

type healthHandler struct {
	version  string
	services map[string]string
}

func newHealthHandler(domain *Domain, cfg *config.Config) *healthHandler {
	return &healthHandler{
		version: cfg.Version,
		services: map[string]string{
			"auth":   serviceRunning,
			"vision": serviceStatus(domain.VisionReady),
			"speech": serviceStatus(domain.SpeechReady),
		},
	}
}

func (h *healthHandler) routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/health", Handler: h.health},
		},
	}
}

func (h *healthHandler) health(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"message":  "Hand2Voice Unified Server is running",
		"version":  h.version,
		"services": h.services,
	})
}

func serviceStatus(ready bool) string {
	if ready {
		return serviceRunning
	}
	return serviceUnavailable
}
