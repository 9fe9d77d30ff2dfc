package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/config"
	"github.com/okian/fairway/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("FAIRWAY_ADDR", ":8080")
			t.Setenv("FAIRWAY_QUEUE_SIZE", "1000")
			t.Setenv("FAIRWAY_WORKER_COUNT", "4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When building the service from configuration", func() {
			cfg := config.New(context.Background())
			cfg.WorkerCount = 3
			cfg.MaxMatchLimit = 7

			stores, err := openStores(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			defer stores.close()

			svc := app.New(serviceOptions(cfg, logger.Get(), stores)...)

			convey.Convey("Then the options are applied", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(stats["maxMatchLimit"], convey.ShouldEqual, 7)
			})
		})
	})
}

func TestSeedProfiles(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		convey.Convey("When a seed file is configured", func() {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			doc := "- id: alpha\n  skill_level: beginner\n- id: bravo\n  skill_level: expert\n- id: broken\n  skill_level: pro\n"
			convey.So(os.WriteFile(path, []byte(doc), 0o600), convey.ShouldBeNil)

			convey.Convey("Then valid profiles are loaded before serving", func() {
				convey.So(seedProfiles(ctx, svc, path), convey.ShouldBeNil)
				convey.So(svc.GetStats()["totalProfiles"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When no seed file is configured", func() {
			convey.So(seedProfiles(ctx, svc, ""), convey.ShouldBeNil)
			convey.So(svc.GetStats()["totalProfiles"], convey.ShouldEqual, 0)
		})

		convey.Convey("When the seed file is missing or unreadable", func() {
			convey.So(seedProfiles(ctx, svc, filepath.Join(t.TempDir(), "missing.yaml")), convey.ShouldNotBeNil)

			bad := filepath.Join(t.TempDir(), "bad.yaml")
			convey.So(os.WriteFile(bad, []byte("profiles: 3"), 0o600), convey.ShouldBeNil)
			convey.So(seedProfiles(ctx, svc, bad), convey.ShouldNotBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the application mux", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		mux := newMux(ctx, svc)

		convey.Convey("Then API and docs routes are served", func() {
			for _, path := range []string{"/healthz", "/stats", "/catalog", "/openapi.yaml", "/api-docs", "/matches/anyone"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And the service metrics updater stops with its context", func() {
			tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startServiceMetricsUpdater(tctx, svc) }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
