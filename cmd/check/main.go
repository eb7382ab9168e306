// Command check verifies that the configured Gemini key, storage backend,
// and database are reachable before the server is deployed.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/pkg/database"
	"github.com/JaimeStill/hand2voice/pkg/gemini"
	"github.com/JaimeStill/hand2voice/pkg/lifecycle"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

const probeKey = "checks/probe.txt"

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Overall time limit for all probes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return checkGemini(gctx, cfg, logger) })
	g.Go(func() error { return checkStorage(gctx, cfg, logger) })
	if cfg.Store.Driver == config.StoreDriverPostgres {
		g.Go(func() error { return checkDatabase(cfg, logger) })
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "check failed:", err)
		os.Exit(1)
	}
	fmt.Println("all checks passed")
}

func checkGemini(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Gemini.HasKey() {
		return fmt.Errorf("gemini: %w", gemini.ErrMissingKey)
	}

	client, err := gemini.New(ctx, gemini.Options{
		APIKey:   cfg.Gemini.APIKey,
		Endpoint: cfg.Gemini.Endpoint,
	}, logger)
	if err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	defer client.Close()

	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("gemini: list models: %w", err)
	}

	for _, m := range models {
		if m.Generates() {
			fmt.Printf("gemini: %s (%s)\n", m.Name, m.DisplayName)
		}
	}
	return nil
}

func checkStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	lc := lifecycle.New()
	if err := store.Start(lc); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := lc.WaitForStartup(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	body := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := store.Upload(ctx, probeKey, bytes.NewReader(body), "text/plain"); err != nil {
		return fmt.Errorf("storage: upload: %w", err)
	}
	defer store.Delete(context.Background(), probeKey)

	ok, err := store.Exists(ctx, probeKey)
	if err != nil {
		return fmt.Errorf("storage: exists: %w", err)
	}
	if !ok {
		return fmt.Errorf("storage: probe %s missing after upload", probeKey)
	}

	fmt.Printf("storage: %s ok\n", cfg.Storage.Provider)
	return nil
}

func checkDatabase(cfg *config.Config, logger *slog.Logger) error {
	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer lc.Shutdown(5 * time.Second)

	if err := lc.WaitForStartup(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	fmt.Printf("database: %s:%d/%s ok\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return nil
}
