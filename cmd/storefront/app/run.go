package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/catalog"
	"github.com/aq2208/gstore-api/internal/adapter/grpc"
	"github.com/aq2208/gstore-api/internal/adapter/http"
	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/session"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type App struct {
	Router  *gin.Engine
	Catalog *usecase.Catalog
	Orders  *usecase.OrderLog
	Health  *grpc.HealthServer // nil when grpc.health_addr is empty

	cfg configs.Config
	log *slog.Logger
}

// InitWithConfig wires the storefront from configuration. The returned
// cleanup releases every connection that was opened.
func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	log.Info("storefront: starting up", "storage", cfg.Storage.Driver)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// load catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, cleanup, fmt.Errorf("catalog: %w", err)
	}

	// init storage
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, stores.Close)

	pubs, closePubs, err := openPublishers(cfg)
	closers = append(closers, closePubs)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	orders := usecase.NewOrderLog(stores.KV)
	svc := usecase.NewCheckoutService(cat, orders, stores.Idempotency, usecase.NewOrderIDGenerator(nil), pubs...)
	registry := session.NewRegistry(stores.KV, cfg.Session.TTL)

	handlers := http.Handlers{
		Catalog:  http.NewCatalogHandler(cat, registry),
		Cart:     http.NewCartHandler(cat, registry),
		Checkout: http.NewCheckoutHandler(cat, svc, registry, cfg.HTTP.RequestTimeout),
		Orders:   http.NewOrderHandler(orders),
	}
	router := http.NewRouter(handlers, middleware.NewSessions(cfg), log)

	a := &App{Router: router, Catalog: cat, Orders: orders, cfg: cfg, log: log}

	if cfg.GRPC.HealthAddr != "" {
		hs, err := grpc.NewHealthServer(cfg.GRPC.HealthAddr)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		a.Health = hs
	}

	return a, cleanup, nil
}

// Serve runs the HTTP server (and the gRPC health server when configured)
// until ctx is cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	srv := &nethttp.Server{
		Addr:         a.cfg.App.HTTPAddr,
		Handler:      a.Router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		a.log.Info("storefront: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	if a.Health != nil {
		go func() {
			a.log.Info("storefront: grpc health", "addr", a.Health.Addr())
			if err := a.Health.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc health: %w", err)
			}
		}()
		a.Health.SetServing(true)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.Health != nil {
		a.Health.SetServing(false)
		a.Health.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.log.Info("storefront: stopped")
	return runErr
}
