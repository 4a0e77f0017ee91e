// Package app assembles the stores, services and router from a Config and
// owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/api"
	"github.com/coursehub/marketplace/internal/core/service"
	"github.com/coursehub/marketplace/internal/infrastructure/config"
	"github.com/coursehub/marketplace/internal/infrastructure/http/handlers"
	"github.com/coursehub/marketplace/internal/infrastructure/queue"
	"github.com/coursehub/marketplace/internal/infrastructure/storage"
)

const (
	readHeaderTimeout = 10 * time.Second
	closeTimeout      = 5 * time.Second
)

type App struct {
	server      *http.Server
	dispatcher  *queue.Dispatcher
	stopWorkers context.CancelFunc
	cleanup     []func(ctx context.Context) error
	log         zerolog.Logger
}

// New connects every dependency and builds the HTTP server. On error anything
// already opened is closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{log: log}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	st, err := openStoreFunc(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	a.cleanup = append(a.cleanup, st.close)
	// Purchase and email uniqueness rely on the store's unique indexes.
	if err := st.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", st.name, err)
	}
	checks := map[string]handlers.Check{st.name: st.ping}

	rdb, throttle, err := openThrottle(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if rdb != nil {
		a.cleanup = append(a.cleanup, func(context.Context) error { return rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	tokens, err := service.NewTokenService(cfg.Auth.AdminSecret, cfg.Auth.UserSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	auth, err := service.NewAuthService(st.principals, tokens, throttle, log)
	if err != nil {
		return nil, err
	}

	images, err := storage.NewLocalImageStore(cfg.Media.Dir, cfg.Media.BaseURL, int64(cfg.Media.MaxUploadMB)<<20)
	if err != nil {
		return nil, err
	}

	// Workers outlive request contexts and stop on Shutdown.
	workerCtx, stop := context.WithCancel(context.Background())
	a.stopWorkers = stop
	a.dispatcher = queue.NewDispatcher(cfg.Media.ImageWorkers, images, log)
	a.dispatcher.Start(workerCtx)

	router := api.NewRouter(api.Dependencies{
		Config:    cfg,
		Auth:      auth,
		Tokens:    tokens,
		Courses:   service.NewCourseService(st.courses, images, a.dispatcher, log),
		Purchases: service.NewPurchaseService(st.purchases, st.courses, log),
		Checks:    checks,
		Logger:    log,
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return a, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, stops the image workers and closes the
// stores.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.close(ctx)
	return err
}

func (a *App) close(ctx context.Context) {
	if a.stopWorkers != nil {
		a.stopWorkers()
		a.dispatcher.Wait()
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		cctx, cancel := context.WithTimeout(ctx, closeTimeout)
		if err := a.cleanup[i](cctx); err != nil {
			a.log.Error().Err(err).Msg("close dependency")
		}
		cancel()
	}
	a.cleanup = nil
}

// Migrate creates the indexes (Mongo) or schema (SQLite) of the configured store.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStoreFunc(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	if err := st.migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", st.name, err)
	}
	log.Info().Str("store", st.name).Msg("migration complete")
	return nil
}
