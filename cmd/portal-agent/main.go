// @title        Campus Portal Agent API
// @version      1.0
// @description  Local session surface for the campus portal UI shell.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/api"
	"github.com/campusdesk/portal-agent/internal/core/ports"
	"github.com/campusdesk/portal-agent/internal/core/service"
	"github.com/campusdesk/portal-agent/internal/infrastructure/config"
	mongostore "github.com/campusdesk/portal-agent/internal/infrastructure/db/mongo"
	redisstore "github.com/campusdesk/portal-agent/internal/infrastructure/db/redis"
	"github.com/campusdesk/portal-agent/internal/infrastructure/http/handlers"
	"github.com/campusdesk/portal-agent/internal/infrastructure/memory"
	"github.com/campusdesk/portal-agent/internal/infrastructure/navigation"
	"github.com/campusdesk/portal-agent/internal/infrastructure/queue"
	"github.com/campusdesk/portal-agent/internal/infrastructure/schoolapi"
	"github.com/campusdesk/portal-agent/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "portal-agent",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal agent stopped")
	}
}

// sessionBackend bundles the three faces of whichever backend is in use.
type sessionBackend interface {
	ports.HTTPSession
	ports.AuthAPI
	ports.RBACAPI
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	durable, pingers, closeDurable, err := openDurable(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDurable()

	var backend sessionBackend
	if cfg.Demo.Enabled {
		log.Warn().Msg("demo auth enabled, the school API is not contacted")
		backend = service.NewDemoBackend(cfg.Demo.JWTSecret, cfg.Demo.PasswordHash, cfg.Demo.TokenTTL)
	} else {
		backend = schoolapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Component("schoolapi"))
	}

	tier, err := cfg.PreferredTier()
	if err != nil {
		return err
	}

	store := service.NewCredentialStore(durable, memory.NewStore())
	nav := navigation.NewRecorder(logger.Component("navigation"))
	access := service.NewModuleAccessRefresher(backend, logger.Component("module_access"))

	coord := service.NewCoordinator(service.CoordinatorConfig{
		PreferredTier:   tier,
		DemoAuth:        cfg.Demo.Enabled,
		AuthPrefix:      cfg.Session.AuthPrefix,
		APIBaseURL:      cfg.API.BaseURL,
		DebounceWindow:  cfg.Session.Debounce,
		RefreshInterval: cfg.Session.RefreshInterval,
	}, store, backend, backend, nav, access, logger.Component("coordinator"))
	coord.Start()
	defer coord.Close()

	coord.Bootstrap(ctx)
	go coord.Run(ctx)

	dispatcher := queue.NewDispatcher(coord, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		Session:    coord,
		Redirects:  nav,
		Signals:    dispatcher,
		Storage:    pingers,
		Log:        log,
		EnableDocs: cfg.Env != "production",
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage_tier", string(tier)).Msg("portal agent listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openDurable connects the configured durable tier and returns it together
// with the pingers the readiness probe checks.
func openDurable(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, map[string]handlers.Pinger, func(), error) {
	switch cfg.Storage.DurableBackend {
	case "redis":
		store, client, err := redisstore.Open(ctx, redisstore.Config{
			Addr:      cfg.Redis.Addr,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Storage.Namespace,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return store, map[string]handlers.Pinger{"redis": store}, func() { _ = client.Close() }, nil

	case "mongo":
		store, client, err := mongostore.Open(ctx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
			Namespace:  cfg.Storage.Namespace,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return store, map[string]handlers.Pinger{"mongodb": store}, closeFn, nil

	default:
		store := memory.NewStore()
		return store, map[string]handlers.Pinger{"memory": store}, func() {}, nil
	}
}
