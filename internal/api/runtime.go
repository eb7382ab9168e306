package api

import (
	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
// Tokens is nil when no token secret is configured.
type Runtime struct {
	*infrastructure.Infrastructure
	Tokens        *accounts.Tokens
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Storage:   infra.Storage,
			Database:  infra.Database,
			Gemini:    infra.Gemini,
		},
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}
	if cfg.Auth.TokenSecret != "" {
		rt.Tokens = accounts.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTLDuration())
	}
	return rt
}
