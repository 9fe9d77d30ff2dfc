package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/fairway/internal/adapters/http/api"
	"github.com/okian/fairway/internal/adapters/http/swagger"
	"github.com/okian/fairway/internal/adapters/repository"
	app "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		// The logger may not be configured yet.
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	svc := app.New(serviceOptions(cfg, log, stores)...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service shutdown failed", logger.Error(err))
		}
	}()

	if err := seedProfiles(ctx, svc, cfg.SeedFile); err != nil {
		return err
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// storeSet holds externally managed stores; both are nil for in-memory storage.
type storeSet struct {
	profiles repository.ProfileStore
	requests repository.MatchStore
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (storeSet, error) {
	if cfg.DatabaseURL == "" {
		return storeSet{close: func() {}}, nil
	}

	pg, err := repository.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return storeSet{}, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return storeSet{}, fmt.Errorf("failed to prepare schema: %w", err)
	}
	logger.Get().Info(ctx, "using postgres store")
	return storeSet{profiles: pg, requests: pg, close: func() { _ = pg.Close() }}, nil
}

func serviceOptions(cfg *config.Config, log logger.Logger, stores storeSet) []app.Option {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxMatchLimit(cfg.MaxMatchLimit),
		app.WithDefaultMatchLimit(cfg.DefaultMatchLimit),
		app.WithRankingConcurrency(cfg.RankingConcurrency),
		app.WithAcceptedLimit(cfg.AcceptedLimit),
	}
	if stores.profiles != nil {
		opts = append(opts, app.WithProfileStore(stores.profiles))
	}
	if stores.requests != nil {
		opts = append(opts, app.WithMatchStore(stores.requests))
	}
	return opts
}

// seedProfiles loads path, when set, straight into the profile store.
func seedProfiles(ctx context.Context, svc *app.Service, path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	profiles, err := model.DecodeProfiles(f)
	if err != nil {
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	if _, err := svc.Seed(ctx, profiles); err != nil {
		// Invalid entries are skipped; the rest of the file is still served.
		logger.Get().Warn(ctx, "some seed profiles were rejected", logger.String("file", path), logger.Error(err))
	}
	return nil
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics publishes the gauges GetStats does not refresh itself.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
