package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/client"
	"storefront-service/internal/config"
	"storefront-service/internal/localstore"
	"storefront-service/internal/logging"
	"storefront-service/internal/notice"
	"storefront-service/internal/session"
	"storefront-service/internal/wishlist"
)

// app is everything one shopper invocation works with.
type app struct {
	log      *slog.Logger
	api      *client.Client
	notifier notice.Notifier
	pageSize int

	catalog  *catalog.Store
	cart     *cart.Manager
	wishlist *wishlist.Manager
	gate     *session.Gate

	closers []func() error
}

// backends are the durable and the session storage scopes.
type backends struct {
	durable localstore.Storage
	session localstore.Storage
	closers []func() error
}

type appLoader func(ctx context.Context, out io.Writer) (*app, error)

// loadApp builds the app from the environment.
func loadApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter("shopper", cfg.LogLevel, os.Stderr)

	stores, err := openBackends(ctx, cfg)
	if err != nil {
		return nil, err
	}

	apiCfg := client.DefaultConfig(cfg.APIBaseURL)
	apiCfg.Timeout = cfg.Timeout
	return newApp(ctx, client.New(apiCfg, logger), stores, notice.NewWriter(out), logger), nil
}

// openBackends picks the durable scope from the configured backend. The session scope is a
// directory under the system temp dir, so it outlives one command but not a reboot.
func openBackends(ctx context.Context, cfg *config.ClientConfig) (backends, error) {
	if cfg.Storage.Backend == "memory" {
		return backends{durable: localstore.NewMemory(), session: localstore.NewMemory()}, nil
	}

	sessionStore, err := localstore.NewFile(filepath.Join(os.TempDir(), "storefront-session"))
	if err != nil {
		return backends{}, fmt.Errorf("open session storage: %w", err)
	}

	switch cfg.Storage.Backend {
	case "redis":
		rdb, err := localstore.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return backends{}, err
		}
		return backends{
			durable: localstore.NewRedis(rdb, cfg.Redis.Prefix),
			session: sessionStore,
			closers: []func() error{rdb.Close},
		}, nil
	default:
		fileStore, err := localstore.NewFile(cfg.Storage.Dir)
		if err != nil {
			return backends{}, fmt.Errorf("open local storage: %w", err)
		}
		return backends{durable: fileStore, session: sessionStore}, nil
	}
}

func newApp(ctx context.Context, api *client.Client, stores backends, notifier notice.Notifier, logger *slog.Logger) *app {
	return &app{
		log:      logger,
		api:      api,
		notifier: notifier,
		pageSize: catalog.DefaultPageSize,
		catalog:  &catalog.Store{},
		cart:     cart.New(ctx, stores.durable, logger),
		wishlist: wishlist.New(ctx, stores.durable, notifier, logger),
		gate:     session.NewGate(stores.durable, stores.session, logger),
		closers:  stores.closers,
	}
}

func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
