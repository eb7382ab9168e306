package api

import (
	"net/http"

	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/internal/history"
	"github.com/JaimeStill/hand2voice/internal/speech"
	"github.com/JaimeStill/hand2voice/internal/vision"
	"github.com/JaimeStill/hand2voice/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	var protect func(http.Handler) http.Handler
	if cfg.Auth.RequireToken {
		protect = accounts.RequireToken(runtime.Tokens, runtime.Logger)
	}

	groups := []routes.Group{
		newHealthHandler(domain, cfg).routes(),
		accounts.NewHandler(domain.Accounts, runtime.Logger).Routes(protect),
		history.NewHandler(domain.History, runtime.Logger).Routes(protect),
		vision.NewHandler(domain.Vision, runtime.Logger, runtime.MaxUploadSize).Routes(),
		speech.NewHandler(domain.Speech, runtime.Logger, runtime.MaxUploadSize).Routes(),
	}
	if cfg.Vision.ArchiveCaptures {
		groups = append(groups, newCapturesHandler(runtime.Storage, runtime.Logger).routes(protect))
	}

	routes.Register(mux, groups...)
}
