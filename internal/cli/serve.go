// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"projdex/internal/config"
	"projdex/internal/instance"
	"projdex/internal/inventory"
	"projdex/internal/logging"
	"projdex/internal/metrics"
	"projdex/internal/project"
	"projdex/internal/web"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures runServe. Empty Bind and negative Port fall back
// to the web section of the config.
type ServeOptions struct {
	ConfigDir string
	Bind      string
	Port      int
	Out       io.Writer
}

// runServe runs the HTTP API until ctx is cancelled. It holds the
// single-server lock, publishes its address for 'status', reloads the
// config (and rescans) when the file changes, and rescans in the background
// at start when the catalog is stale.
func runServe(ctx context.Context, opts ServeOptions) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	ws, err := openWorkspace(opts.ConfigDir, inventory.WithMetrics(m))
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	lock, err := instance.Acquire(ws.DataDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger := ws.Logs.For("app")

	cfg := ws.Config
	var current atomic.Pointer[config.Config]
	current.Store(&cfg)

	bind, port := cfg.Web.Bind, cfg.Web.Port
	if opts.Bind != "" {
		bind = opts.Bind
	}
	if opts.Port >= 0 {
		port = opts.Port
	}

	srv := web.New(web.Config{
		Bind: bind,
		Port: port,
		Settings: func() web.Settings {
			c := current.Load()
			return web.Settings{Scan: c.ScanConfig(), SortBy: c.SortBy(), Launchers: c.Registry()}
		},
		Gatherer: reg,
		Metrics:  m,
	}, ws.Engine, nil, ws.Logs)

	ln, err := srv.Listen()
	if err != nil {
		return err
	}
	if err := lock.Publish(srv.Addr()); err != nil {
		logger.Error("failed to publish server address", "error", err)
	}
	if opts.Out != nil {
		_, _ = fmt.Fprintf(opts.Out, "Serving on http://%s\n", srv.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := config.Watch(gctx, ws.ConfigPath, ws.Logs.For("config"), func(next config.Config) {
			next.Normalize()
			current.Store(&next)
			rescan(gctx, ws.Engine, next.ScanConfig(), logger)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			// The API keeps serving on the config it started with.
			logger.Warn("config watcher stopped", "error", err)
		}
		return nil
	})

	if ws.Engine.IsStale(cfg.StaleAfter()) {
		g.Go(func() error {
			rescan(gctx, ws.Engine, cfg.ScanConfig(), logger)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

func rescan(ctx context.Context, engine *inventory.Engine, cfg project.ScanConfig, logger *logging.ScopedLogger) {
	if _, err := engine.Scan(ctx, cfg); err != nil && ctx.Err() == nil {
		logger.Error("background scan failed", "error", err)
	}
}
