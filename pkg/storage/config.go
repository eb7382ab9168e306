package storage

import (
	"fmt"
	"os"
)

const (
	ProviderLocal = "local"
	ProviderAzure = "azure"
)

// Config selects and parameterizes a blob storage backend.
type Config struct {
	Provider         string `toml:"provider"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Root             string
	ContainerName    string
	ConnectionString string
	AccountURL       string
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Root == "" {
		c.Root = "data"
	}
	if c.ContainerName == "" {
		c.ContainerName = "hand2voice"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(dst *string, key string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, env.Provider)
	set(&c.Root, env.Root)
	set(&c.ContainerName, env.ContainerName)
	set(&c.ConnectionString, env.ConnectionString)
	set(&c.AccountURL, env.AccountURL)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.Root == "" {
			return fmt.Errorf("root required for local storage")
		}
	case ProviderAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required for azure storage")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Provider)
	}
	return nil
}
