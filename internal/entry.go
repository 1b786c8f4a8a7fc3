// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sddl/internal/api"
	"github.com/starford/sddl/internal/index"
	"github.com/starford/sddl/internal/mcpserver"
	"github.com/starford/sddl/internal/schemaservice"
	"github.com/starford/sddl/internal/sddl"
	"github.com/starford/sddl/internal/sse"
	"github.com/starford/sddl/internal/storage"
)

// registry is the wired registry shared by the server modes.
type registry struct {
	cfg       *Config
	logger    *slog.Logger
	store     *storage.FS
	db        *index.DB
	svc       *schemaservice.Service
	parseOpts []sddl.Option
}

func (reg *registry) Close() error {
	return reg.db.Close()
}

// setup applies opts, builds the logger and opens storage and index.
// stdout is reserved for the MCP transport, so logs go to logOut.
func setup(opts []Option, logOut *os.File) (*application, *registry, error) {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("registry_path", cfg.Registry.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("fail_fast", cfg.Parse.FailFast),
		slog.Bool("strict", cfg.Parse.Strict),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Registry.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create registry dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Registry.Path, cfg.Registry.FileExtensions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	parseOpts := []sddl.Option{
		sddl.WithFailFast(cfg.Parse.FailFast),
		sddl.WithLogger(logger.With(slog.String("component", "sddl"))),
	}
	svc := schemaservice.NewService(store, db,
		schemaservice.WithParseOptions(parseOpts...),
		schemaservice.WithStrict(cfg.Parse.Strict),
	)

	return app, &registry{cfg: cfg, logger: logger, store: store, db: db, svc: svc, parseOpts: parseOpts}, nil
}

// Run starts the HTTP registry with the given options.
func Run(ctx context.Context, opts ...Option) error {
	_, reg, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer reg.Close()

	cfg, logger := reg.cfg, reg.logger

	if err := index.Sync(ctx, reg.db, reg.store, logger, reg.parseOpts...); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(cfg.Events.Throttle, cfg.Events.KeepAlive)
	defer broker.Close()

	apiRouter := api.NewRouter(reg.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := reg.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher feeds the SSE broker.
	g.Go(func() error {
		return index.Watch(gCtx, reg.db, reg.store, reg.store.Root(), logger, broker.PublishSchemaEvent, reg.parseOpts...)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP syncs the index and serves the MCP tools over stdio. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, reg, err := setup(opts, os.Stderr)
	if err != nil {
		return err
	}
	defer reg.Close()

	if err := index.Sync(ctx, reg.db, reg.store, reg.logger, reg.parseOpts...); err != nil {
		reg.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(watchCtx, reg.db, reg.store, reg.store.Root(), reg.logger, nil, reg.parseOpts...); err != nil {
			reg.logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	return mcpserver.New(reg.svc, app.version).ServeStdio()
}
