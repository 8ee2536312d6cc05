// Package internal wires configuration, storage and the ledger core into the
// notesman run modes: one-shot processing, status, watch, HTTP and MCP.
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

	"github.com/starford/notesman/internal/api"
	"github.com/starford/notesman/internal/ledger"
	"github.com/starford/notesman/internal/ledgerservice"
	"github.com/starford/notesman/internal/mcpserver"
	"github.com/starford/notesman/internal/sse"
	"github.com/starford/notesman/internal/storage"
	"github.com/starford/notesman/internal/watch"
)

type logFormat int

const (
	logText logFormat = iota
	logJSON
)

func newApplication(format logFormat, logOut io.Writer, opts []Option) (*application, error) {
	app := &application{out: os.Stdout, clock: time.Now, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		hopts := &slog.HandlerOptions{Level: app.config.App.LogLevel}
		if format == logJSON {
			app.logger = slog.New(slog.NewJSONHandler(logOut, hopts))
		} else {
			app.logger = slog.New(slog.NewTextHandler(logOut, hopts))
		}
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// openLedger validates path and builds the service for it. An invalid path
// is rejected before the file system is touched.
func (a *application) openLedger(path string) (*ledgerservice.Service, *storage.FS, error) {
	cfg := a.config.Ledger
	if _, err := ledger.DerivePaths(path, cfg.Extension, cfg.Naming, nil); err != nil {
		return nil, nil, err
	}

	store, err := storage.NewFS(filepath.Dir(path))
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	exists := func(name string) bool {
		ok, _ := store.Exists(name)
		return ok
	}
	paths, err := ledger.DerivePaths(path, cfg.Extension, cfg.Naming, exists)
	if err != nil {
		return nil, nil, err
	}
	paths.Dir = store.Root()

	a.logger.Debug("ledger opened",
		slog.String("dir", paths.Dir),
		slog.String("current", paths.Current),
		slog.String("journal", paths.Journal),
		slog.String("archive", paths.Archive))

	proc := ledger.NewProcessor(store, paths, cfg.Markers,
		ledger.WithLogger(a.logger),
		ledger.WithClock(a.clock))
	return ledgerservice.NewService(store, proc, cfg.Markers), store, nil
}

// Process runs the ledger at path once. With dryRun set nothing is written
// and the classified lines are printed instead.
func Process(ctx context.Context, path string, dryRun bool, opts ...Option) error {
	app, err := newApplication(logText, os.Stderr, opts)
	if err != nil {
		return err
	}
	svc, _, err := app.openLedger(path)
	if err != nil {
		return err
	}

	if dryRun {
		p, err := svc.Preview(ctx)
		if err != nil {
			return err
		}
		printPreview(app.out, p)
		return nil
	}

	rep, err := svc.Process(ctx, "")
	if err != nil {
		return err
	}
	printReport(app.out, rep)
	return nil
}

// Status prints the section counts of the ledger at path.
func Status(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(logText, os.Stderr, opts)
	if err != nil {
		return err
	}
	svc, _, err := app.openLedger(path)
	if err != nil {
		return err
	}
	st, err := svc.Status(ctx)
	if err != nil {
		return err
	}
	printStatus(app.out, st)
	return nil
}

// Watch processes the ledger at path whenever it changes, until ctx is
// cancelled or a termination signal arrives.
func Watch(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(logJSON, os.Stdout, opts)
	if err != nil {
		return err
	}
	svc, store, err := app.openLedger(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch.Watch(ctx, store.Root(), svc.Paths().Current, app.config.Watch.Debounce,
		app.logger, app.onDocumentChange(svc, nil))
}

// Serve exposes the ledger at path over HTTP, with server-sent events and
// the file watcher running alongside.
func Serve(ctx context.Context, path string, opts ...Option) error {
	app, err := newApplication(logJSON, os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	svc, store, err := app.openLedger(path)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("ledger", filepath.Join(store.Root(), svc.Paths().Current)),
		slog.Bool("auto_process", cfg.Watch.AutoProcess),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(cfg.Watch.Debounce)
	defer broker.Close()
	svc.OnProcessed(func(rep ledger.Report) { broker.PublishProcessed(rep) })

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Status(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"ledger unavailable"}`))
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

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, store.Root(), svc.Paths().Current, cfg.Watch.Debounce,
			logger, app.onDocumentChange(svc, broker))
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

// ServeMCP exposes the ledger at path as MCP tools on stdin/stdout. Logs go
// to stderr so they never mix with the protocol stream.
func ServeMCP(_ context.Context, path string, opts ...Option) error {
	app, err := newApplication(logJSON, os.Stderr, opts)
	if err != nil {
		return err
	}
	svc, _, err := app.openLedger(path)
	if err != nil {
		return err
	}
	app.logger.Info("MCP server starting", slog.String("ledger", svc.Paths().Current))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// onDocumentChange returns the watcher callback: it skips the ledger's own
// writes, announces outside edits and, when enabled, processes them.
func (a *application) onDocumentChange(svc *ledgerservice.Service, broker *sse.Broker) watch.Callback {
	return func(ctx context.Context, path string) {
		changed, err := svc.Changed(ctx)
		if err != nil {
			a.logger.Warn("watcher: cannot read document",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return
		}
		if !changed {
			a.logger.Debug("watcher: own write ignored", slog.String("path", path))
			return
		}
		if broker != nil {
			broker.PublishChange(svc.Paths().Current)
		}
		if !a.config.Watch.AutoProcess {
			return
		}
		if _, err := svc.Process(ctx, ""); err != nil {
			a.logger.Error("watcher: processing failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
}
