// Package config loads service configuration from TOML files and
// HAND2VOICE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/hand2voice/pkg/database"
	"github.com/JaimeStill/hand2voice/pkg/logging"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvHand2VoiceEnv   = "HAND2VOICE_ENV"
	EnvConfigFile      = "HAND2VOICE_CONFIG"
	EnvShutdownTimeout = "HAND2VOICE_SHUTDOWN_TIMEOUT"
	EnvVersion         = "HAND2VOICE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "HAND2VOICE_DB_HOST",
	Port:            "HAND2VOICE_DB_PORT",
	Name:            "HAND2VOICE_DB_NAME",
	User:            "HAND2VOICE_DB_USER",
	Password:        "HAND2VOICE_DB_PASSWORD",
	SSLMode:         "HAND2VOICE_DB_SSL_MODE",
	MaxOpenConns:    "HAND2VOICE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "HAND2VOICE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "HAND2VOICE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "HAND2VOICE_DB_CONN_TIMEOUT",
	ConnectRetries:  "HAND2VOICE_DB_CONNECT_RETRIES",
}

var storageEnv = &storage.Env{
	Provider:         "HAND2VOICE_STORAGE_PROVIDER",
	Root:             "HAND2VOICE_STORAGE_ROOT",
	ContainerName:    "HAND2VOICE_STORAGE_CONTAINER_NAME",
	ConnectionString: "HAND2VOICE_STORAGE_CONNECTION_STRING",
	AccountURL:       "HAND2VOICE_STORAGE_ACCOUNT_URL",
}

var loggingEnv = &logging.Env{
	Level:      "HAND2VOICE_LOG_LEVEL",
	Format:     "HAND2VOICE_LOG_FORMAT",
	File:       "HAND2VOICE_LOG_FILE",
	MaxSizeMB:  "HAND2VOICE_LOG_MAX_SIZE_MB",
	MaxBackups: "HAND2VOICE_LOG_MAX_BACKUPS",
	MaxAgeDays: "HAND2VOICE_LOG_MAX_AGE_DAYS",
}

// Config is the root configuration for the Hand2Voice service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Logging         logging.Config  `toml:"logging"`
	API             APIConfig       `toml:"api"`
	Gemini          GeminiConfig    `toml:"gemini"`
	Vision          VisionConfig    `toml:"vision"`
	Speech          SpeechConfig    `toml:"speech"`
	Store           StoreConfig     `toml:"store"`
	Storage         storage.Config  `toml:"storage"`
	Database        database.Config `toml:"database"`
	Auth            AuthConfig      `toml:"auth"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the HAND2VOICE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvHand2VoiceEnv); env != "" {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config named by HAND2VOICE_CONFIG (default
// config.toml), applies the environment overlay, and finalizes all values.
func Load() (*Config, error) {
	path := BaseConfigFile
	if v := os.Getenv(EnvConfigFile); v != "" {
		path = v
	}
	return LoadFile(path)
}

// LoadFile loads path if it exists, merges config.<HAND2VOICE_ENV>.toml from
// the same directory when present, and finalizes the result. With no files
// at all, defaults and environment variables provide all configuration.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(filepath.Dir(path)); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.API.Merge(&overlay.API)
	c.Gemini.Merge(&overlay.Gemini)
	c.Vision.Merge(&overlay.Vision)
	c.Speech.Merge(&overlay.Speech)
	c.Store.Merge(&overlay.Store)
	c.Storage.Merge(&overlay.Storage)
	c.Database.Merge(&overlay.Database)
	c.Auth.Merge(&overlay.Auth)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", func() error { return c.Logging.Finalize(loggingEnv) }},
		{"api", c.API.Finalize},
		{"gemini", c.Gemini.Finalize},
		{"vision", c.Vision.Finalize},
		{"speech", c.Speech.Finalize},
		{"store", c.Store.Finalize},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"auth", c.Auth.Finalize},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	env := os.Getenv(EnvHand2VoiceEnv)
	if env == "" {
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
