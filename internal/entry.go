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

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/build"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/preview"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/watch"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger initializes the structured JSON logger.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

type stores struct {
	content *storage.FS
	output  *storage.FS
}

// openStores checks the directory layout and opens both storage roots.
func (a *application) openStores() (stores, error) {
	cfg := a.config
	if err := build.CheckDirs(cfg.Content.Dir, cfg.Output.Dir); err != nil {
		return stores{}, err
	}
	for _, dir := range []string{cfg.Content.Dir, cfg.Output.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stores{}, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	content, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return stores{}, fmt.Errorf("init content storage: %w", err)
	}
	output, err := storage.NewFS(cfg.Output.Dir)
	if err != nil {
		return stores{}, fmt.Errorf("init output storage: %w", err)
	}
	return stores{content: content, output: output}, nil
}

func (a *application) buildOptions(liveReload string) build.Options {
	cfg := a.config
	return build.Options{
		Site:       cfg.Site.Site,
		PageSize:   cfg.Listing.PageSize,
		OGWorkers:  cfg.Build.OGWorkers,
		Drafts:     cfg.Build.Drafts,
		Clean:      cfg.Build.Clean,
		LiveReload: liveReload,
	}
}

// Build generates the site once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("site_url", cfg.Site.URL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := app.openStores()
	if err != nil {
		return err
	}
	builder, err := build.New(st.content, st.output, app.buildOptions(""), logger)
	if err != nil {
		return err
	}
	_, err = builder.Run(ctx)
	return err
}

// Serve builds the site and serves the output directory for local preview.
// With watch enabled, content changes trigger a rebuild and a live reload.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Bool("watch", app.watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := app.openStores()
	if err != nil {
		return err
	}

	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	var (
		events     http.Handler
		liveReload string
	)
	if app.watch {
		events = broker
		liveReload = preview.EventsPath
	}

	builder, err := build.New(st.content, st.output, app.buildOptions(liveReload), logger)
	if err != nil {
		return err
	}
	status := &preview.Status{}

	rebuild := func(ctx context.Context) {
		rep, err := builder.Run(ctx)
		res := sse.BuildResult{
			Fingerprint: rep.Fingerprint,
			Posts:       rep.Posts,
			Duration:    rep.Duration.String(),
		}
		if err != nil {
			logger.Error("build: failed", slog.String("error", err.Error()))
			res = sse.BuildResult{Error: err.Error()}
		}
		status.Set(res)
		broker.PublishBuild(res)
	}

	// A broken post should not keep the preview server down; the error is
	// reported on /api/status until the content is fixed.
	rebuild(ctx)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           preview.NewRouter(cfg.Output.Dir, events, status),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	if app.watch {
		g.Go(func() error {
			return watch.Watch(gCtx, cfg.Content.Dir, watch.DefaultDebounce, logger, func(ctx context.Context, changes []watch.Change) {
				for _, c := range changes {
					broker.PublishChange(c.Kind, c.Path)
				}
				rebuild(ctx)
			})
		})
	}

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		cancel()
		// Open event streams only end when the broker closes.
		broker.Close()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
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

// MCP serves the content tools over stdio. Logs go to stderr so they never
// interleave with the protocol stream.
func MCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	content, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("init content storage: %w", err)
	}

	logger.Info("mcp: serving on stdio",
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("version", app.version))
	return mcpserver.New(content, "", cfg.Build.Drafts, app.version).ServeStdio()
}
