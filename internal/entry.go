// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/bamboovfx/obsidian-image-manager/internal/api"
	"github.com/bamboovfx/obsidian-image-manager/internal/index"
	"github.com/bamboovfx/obsidian-image-manager/internal/mcpserver"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
	"github.com/bamboovfx/obsidian-image-manager/internal/sse"
	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// runtime bundles the shared backends every mode needs.
type runtime struct {
	logger *slog.Logger
	store  storage.Provider
	db     *index.DB
	org    *organizer.Service
}

// setup initializes logging, storage, and the link index, and runs the
// initial vault sync. The caller owns rt.db and must close it. logOut is
// where structured logs go; stdio-bound modes pass stderr to keep stdout
// clean.
func setup(cfg *Config, logOut io.Writer) (*runtime, error) {
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	// The attachment folder must exist before the first organize run.
	targetAbs := filepath.Join(cfg.Vault.Path, filepath.FromSlash(cfg.Organize.TargetDir))
	if err := os.MkdirAll(targetAbs, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &runtime{
		logger: logger,
		store:  store,
		db:     db,
		org:    organizer.NewService(store, db),
	}, nil
}

// Run starts the HTTP server, SSE broker, and vault watcher with the given
// options, and blocks until shutdown.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	rt, err := setup(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.db.Close()
	logger := rt.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("attachment_dir", cfg.Organize.TargetDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	svc := api.NewService(rt.store, rt.db, rt.org, app.organizeRequest())
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker, cfg.Vault.Path, cfg.Organize.TargetDir)

	// Build chi router.
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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Public attachment file serving.
	ah := api.NewAttachmentHandler(cfg.Vault.Path, cfg.Organize.TargetDir)
	r.Get("/attachments/{filename}", ah.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher with SSE callback.
	g.Go(func() error {
		index.Watch(gCtx, rt.db, rt.store, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishNoteEvent(kind, path)
		})
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunOrganize executes one organize pass from the command line and returns
// the report.
func RunOrganize(ctx context.Context, opts ...Option) (*organizer.Report, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	// The report goes to stdout, so logs go to stderr.
	rt, err := setup(app.config, os.Stderr)
	if err != nil {
		return nil, err
	}
	defer rt.db.Close()

	return rt.org.Run(ctx, app.organizeRequest())
}

// RunMCP serves the MCP tools over stdio until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	rt, err := setup(app.config, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	srv := mcpserver.New(rt.store, rt.db, rt.org, app.organizeRequest())
	return srv.ServeStdio()
}
