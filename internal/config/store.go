package config

import (
	"fmt"
	"time"
)

const (
	EnvStoreDriver       = "HAND2VOICE_STORE_DRIVER"
	EnvStoreUsersKey     = "HAND2VOICE_STORE_USERS_KEY"
	EnvStoreHistoryKey   = "HAND2VOICE_STORE_HISTORY_KEY"
	EnvStoreHistoryLimit = "HAND2VOICE_STORE_HISTORY_LIMIT"

	EnvAuthTokenSecret  = "HAND2VOICE_AUTH_TOKEN_SECRET"
	EnvAuthTokenTTL     = "HAND2VOICE_AUTH_TOKEN_TTL"
	EnvAuthRequireToken = "HAND2VOICE_AUTH_REQUIRE_TOKEN"
	EnvAuthBcryptCost   = "HAND2VOICE_AUTH_BCRYPT_COST"

	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// StoreConfig selects where accounts and history are persisted.
type StoreConfig struct {
	Driver       string `toml:"driver"`
	UsersKey     string `toml:"users_key"`
	HistoryKey   string `toml:"history_key"`
	HistoryLimit int    `toml:"history_limit"`
}

func (c *StoreConfig) Finalize() error {
	envString(&c.Driver, EnvStoreDriver)
	envString(&c.UsersKey, EnvStoreUsersKey)
	envString(&c.HistoryKey, EnvStoreHistoryKey)
	envInt(&c.HistoryLimit, EnvStoreHistoryLimit)

	if c.Driver == "" {
		c.Driver = StoreDriverFile
	}
	if c.UsersKey == "" {
		c.UsersKey = "users.json"
	}
	if c.HistoryKey == "" {
		c.HistoryKey = "history.json"
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 100
	}

	switch c.Driver {
	case StoreDriverFile, StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be positive")
	}
	if c.UsersKey == c.HistoryKey {
		return fmt.Errorf("users_key and history_key must differ")
	}
	return nil
}

func (c *StoreConfig) Merge(overlay *StoreConfig) {
	mergeString(&c.Driver, overlay.Driver)
	mergeString(&c.UsersKey, overlay.UsersKey)
	mergeString(&c.HistoryKey, overlay.HistoryKey)
	mergeInt(&c.HistoryLimit, overlay.HistoryLimit)
}

// AuthConfig controls password hashing and optional session tokens.
// Tokens are issued only when TokenSecret is set.
type AuthConfig struct {
	TokenSecret  string `toml:"token_secret"`
	TokenTTL     string `toml:"token_ttl"`
	RequireToken bool   `toml:"require_token"`
	BcryptCost   int    `toml:"bcrypt_cost"`
}

func (c *AuthConfig) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

func (c *AuthConfig) Finalize() error {
	envString(&c.TokenSecret, EnvAuthTokenSecret)
	envString(&c.TokenTTL, EnvAuthTokenTTL)
	envBool(&c.RequireToken, EnvAuthRequireToken)
	envInt(&c.BcryptCost, EnvAuthBcryptCost)

	if c.TokenTTL == "" {
		c.TokenTTL = "168h"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}

	if d, err := time.ParseDuration(c.TokenTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid token_ttl %q", c.TokenTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.RequireToken && c.TokenSecret == "" {
		return fmt.Errorf("require_token needs token_secret")
	}
	return nil
}

func (c *AuthConfig) Merge(overlay *AuthConfig) {
	mergeString(&c.TokenSecret, overlay.TokenSecret)
	mergeString(&c.TokenTTL, overlay.TokenTTL)
	mergeInt(&c.BcryptCost, overlay.BcryptCost)
	if overlay.RequireToken {
		c.RequireToken = true
	}
}
