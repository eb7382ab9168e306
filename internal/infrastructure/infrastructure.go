// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, storage, database, model client)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/pkg/database"
	"github.com/JaimeStill/hand2voice/pkg/gemini"
	"github.com/JaimeStill/hand2voice/pkg/lifecycle"
	"github.com/JaimeStill/hand2voice/pkg/logging"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless the postgres store driver is selected. Gemini is
// nil when no usable API key is configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Database  database.System
	Gemini    *gemini.Client

	logCloser io.Closer
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger, closer := logging.New(&cfg.Logging)

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		logCloser: closer,
	}

	if cfg.Store.Driver == config.StoreDriverPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Gemini.HasKey() {
		client, err := gemini.New(lc.Context(), gemini.Options{
			APIKey:   cfg.Gemini.APIKey,
			Endpoint: cfg.Gemini.Endpoint,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini init failed: %w", err)
		}
		infra.Gemini = client
	} else {
		logger.Warn("gemini api key not configured; vision and gemini transcription are unavailable")
	}

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}

	if i.Gemini != nil {
		i.Lifecycle.OnShutdown(func() {
			if err := i.Gemini.Close(); err != nil {
				i.Logger.Warn("gemini client close failed", "error", err)
			}
		})
	}

	i.Lifecycle.OnShutdown(func() {
		if err := i.logCloser.Close(); err != nil {
			i.Logger.Error("log file close failed", "error", err)
		}
	})
	return nil
}
