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

	"github.com/starford/notestxt/internal/api"
	"github.com/starford/notestxt/internal/collection"
	"github.com/starford/notestxt/internal/noteservice"
	"github.com/starford/notestxt/internal/sse"
	"github.com/starford/notestxt/internal/storage"
	"github.com/starford/notestxt/internal/watcher"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version: "dev",
		out:     os.Stdout,
		logOut:  os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
}

// openCollection loads the notes folder plus any extra files.
func (a *application) openCollection(logger *slog.Logger) (*collection.Collection, error) {
	cfg := a.config.Notes

	if err := os.MkdirAll(cfg.Folder, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	host, err := cfg.MachineName()
	if err != nil {
		return nil, err
	}

	coll, err := collection.FromFolder(collection.Config{
		Provider: storage.NewFS(),
		Logger:   logger,
	}, cfg.Folder, host)
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	for _, path := range cfg.ExtraFiles {
		if err := coll.AddFile(path); err != nil {
			return nil, fmt.Errorf("open extra file: %w", err)
		}
	}
	if len(cfg.ExtraFiles) > 0 {
		if _, err := coll.Update(); err != nil {
			return nil, fmt.Errorf("load extra files: %w", err)
		}
	}
	return coll, nil
}

func jsonOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP server and the folder watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_folder", cfg.Notes.Folder),
		slog.Duration("poll_interval", cfg.Notes.PollInterval),
		slog.String("log_level", cfg.App.LogLevel.String()))

	coll, err := app.openCollection(logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := noteservice.NewService(coll,
		noteservice.WithPublisher(broker),
		noteservice.WithLogger(logger),
	)
	status := svc.Status(ctx)
	logger.Info("Notes loaded",
		slog.String("primary", status.Primary),
		slog.Int("files", len(status.Files)),
		slog.String("status", status.Line()))

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", jsonOK)
	r.Get("/health/ready", jsonOK)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	w := watcher.New(cfg.Notes.Folder, svc,
		watcher.WithInterval(cfg.Notes.PollInterval),
		watcher.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut down on SIGINT/SIGTERM or when another member fails.
	g.Go(func() error {
		<-gCtx.Done()
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
