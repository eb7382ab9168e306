// Package logging builds the root slog.Logger from configuration, with
// optional size-rotated file output alongside stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger settings.
type Config struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  string
	MaxBackups string
	MaxAgeDays string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.File != "" {
		c.File = overlay.File
	}
	if overlay.MaxSizeMB != 0 {
		c.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxBackups != 0 {
		c.MaxBackups = overlay.MaxBackups
	}
	if overlay.MaxAgeDays != 0 {
		c.MaxAgeDays = overlay.MaxAgeDays
	}
}

// SlogLevel returns the configured level. Finalize guarantees it parses.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.Level))
	return level
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 28
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(dst *string, key string) {
		if key != "" {
			if v := os.Getenv(key); v != "" {
				*dst = v
			}
		}
	}
	num := func(dst *int, key string) {
		if key != "" {
			if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
				*dst = n
			}
		}
	}
	str(&c.Level, env.Level)
	str(&c.Format, env.Format)
	str(&c.File, env.File)
	num(&c.MaxSizeMB, env.MaxSizeMB)
	num(&c.MaxBackups, env.MaxBackups)
	num(&c.MaxAgeDays, env.MaxAgeDays)
}

func (c *Config) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Level)
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// New builds a logger writing to stdout and, when cfg.File is set, to a
// rotating file. The returned closer releases the file.
func New(cfg *Config) (*slog.Logger, io.Closer) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(cfg *Config, console io.Writer) (*slog.Logger, io.Closer) {
	var (
		out              = console
		closer io.Closer = nopCloser{}
	)

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		out = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
