package infrastructure_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/internal/infrastructure"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

func loadConfig(t *testing.T, toml string) *config.Config {
	t.Helper()
	t.Setenv(config.EnvGeminiAPIKey, "")
	t.Setenv(config.EnvGeminiAPIKeyLegacy, "")
	t.Setenv(config.EnvHand2VoiceEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	base := "[logging]\nlevel = \"error\"\n[storage]\nroot = " + quote(filepath.Join(dir, "data")) + "\n"
	if err := os.WriteFile(path, []byte(base+toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func quote(s string) string {
	return "'" + s + "'"
}

func TestNewFileStore(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t, ""))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Database != nil {
		t.Error("Database should be nil for the file driver")
	}
	if infra.Gemini != nil {
		t.Error("Gemini should be nil without an API key")
	}
}

func TestNewPostgresStore(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t, "[store]\ndriver = \"postgres\"\n"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Database == nil {
		t.Fatal("Database is nil")
	}
	if infra.Database.Connection() == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	infra.Database.Connection().Close()
}

func TestNewWithGeminiKey(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t, "[gemini]\napi_key = \"k\"\n"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Gemini == nil {
		t.Error("Gemini is nil")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := loadConfig(t, "")
	cfg.Storage.Provider = storage.ProviderAzure
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestStartLocalStorage(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	if !infra.Lifecycle.Ready() {
		t.Error("lifecycle should be ready")
	}
	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
