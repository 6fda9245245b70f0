// Package app wires configuration, storage, the feed hub, the HTTP
// surface and the retention scheduler into a runnable server.
package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"chatfeed/internal/retention"
	"chatfeed/pkg/banner"
	"chatfeed/pkg/config"
	"chatfeed/pkg/feed"
	"chatfeed/pkg/store"
	"chatfeed/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	version string

	hub   *feed.Hub
	store *store.Store
}

// New initializes resources that do not require a running context. It
// does not start the HTTP server; call Run to start it and block until
// shutdown.
func New(cfg *config.Config, version string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	validation.SetRules(validation.Rules{MaxContentLen: cfg.Validation.MaxContentLen})

	hub := feed.NewHub(cfg.Feed.Buffer)
	st, err := store.Open(cfg.Storage.DBPath, hub)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Storage.DBPath, err)
	}

	return &App{cfg: cfg, version: version, hub: hub, store: st}, nil
}

// Run starts the retention scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stopRetention, err := retention.Start(ctx, a.cfg.Retention, a.store)
	if err != nil {
		return err
	}
	defer stopRetention()

	banner.Print(a.cfg, a.version)

	defer func() { _ = a.store.Close() }()
	return a.serveHTTP(ctx)
}
