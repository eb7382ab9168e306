package config

import (
	"fmt"

	"github.com/JaimeStill/hand2voice/pkg/formatting"
	"github.com/JaimeStill/hand2voice/pkg/middleware"
	"github.com/JaimeStill/hand2voice/pkg/module"
)

const (
	EnvAPIBasePath      = "HAND2VOICE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "HAND2VOICE_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "HAND2VOICE_CORS_ENABLED",
	Origins:          "HAND2VOICE_CORS_ORIGINS",
	AllowedMethods:   "HAND2VOICE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "HAND2VOICE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "HAND2VOICE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "HAND2VOICE_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload limits, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns the upload limit. Finalize guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := module.ValidatePrefix(c.BasePath); err != nil {
		return fmt.Errorf("base_path: %w", err)
	}
	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "16MB"
	}
}

func (c *APIConfig) loadEnv() {
	envString(&c.BasePath, EnvAPIBasePath)
	envString(&c.MaxUploadSize, EnvAPIMaxUploadSize)
}
