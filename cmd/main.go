package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/pokedex/internal/adapters/http/api"
	"github.com/okian/pokedex/internal/adapters/http/middleware"
	"github.com/okian/pokedex/internal/adapters/http/site"
	"github.com/okian/pokedex/internal/adapters/http/swagger"
	app "github.com/okian/pokedex/internal/app"
	"github.com/okian/pokedex/internal/config"
	"github.com/okian/pokedex/pkg/logger"
	"github.com/okian/pokedex/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	configureLogger(ctx, cfg)

	if err := run(ctx, cfg, logger.Get()); err != nil {
		logger.Get().Error(ctx, "pokedex exited", logger.Error(err))
		os.Exit(1)
	}
}

// configureLogger applies the configured format and level, keeping the
// defaults when either is invalid.
func configureLogger(ctx context.Context, cfg *config.Config) {
	if cfg.LogFormat != logger.FormatText {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			_ = logger.Init()
			logger.Get().Warn(ctx, "invalid log_format; falling back to text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
		}
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l.Named("service")),
		app.WithStoreDriver(cfg.StoreDriver),
		app.WithMongo(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout()),
		app.WithBcryptCost(cfg.BcryptCost),
	)
}

// newHandler registers every route set on one mux. The site goes last since
// it owns the "/" catch-all.
func newHandler(ctx context.Context, svc *app.Service, l logger.Logger) (http.Handler, error) {
	mux := http.NewServeMux()

	api.NewServer(svc, svc, api.WithLogger(l.Named("api"))).Register(ctx, mux)
	swagger.Register(ctx, mux)

	pages, err := site.NewHandler(svc, site.WithLogger(l.Named("site")))
	if err != nil {
		return nil, err
	}
	pages.Register(ctx, mux)

	return middleware.MethodOverride(middleware.Logging(l.Named("http"), mux)), nil
}

func run(ctx context.Context, cfg *config.Config, l logger.Logger) error {
	svc := newService(cfg, l)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		_ = svc.Stop(stopCtx)
	}()

	refresh := metrics.RefreshInterval()
	go startSystemMetricsUpdater(ctx, refresh)
	go startServiceMetricsUpdater(ctx, svc, refresh)

	handler, err := newHandler(ctx, svc, l)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	l.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	l.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater keeps the record-count gauges fresh.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The instrumented store sets the gauges while counting.
			_ = svc.GetStats(ctx)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
