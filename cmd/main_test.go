package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/engage/internal/adapters/workbook"
	"github.com/okian/engage/internal/config"
	"github.com/okian/engage/internal/sampledata"
	"github.com/okian/engage/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("ENGAGE_ADDR", ":8080")
			_ = os.Setenv("ENGAGE_MAX_SESSIONS", "2")
			_ = os.Setenv("ENGAGE_CHART_IMAGES", "false")
			defer func() {
				_ = os.Unsetenv("ENGAGE_ADDR")
				_ = os.Unsetenv("ENGAGE_MAX_SESSIONS")
				_ = os.Unsetenv("ENGAGE_CHART_IMAGES")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service is built from it", func() {
				svc := newService(cfg)
				convey.So(svc.GetStats()["maxSessions"], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("ENGAGE_ADDR", "")
			defer func() { _ = os.Unsetenv("ENGAGE_ADDR") }()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service behind the full mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.ChartImages = false
		svc := newService(cfg)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the explorer, docs and probes are served", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a workbook can be uploaded", func() {
			var buf bytes.Buffer
			convey.So(workbook.WriteSheets(&buf, sampledata.Generate(sampledata.WithPeople(30))), convey.ShouldBeNil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions", &buf))
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(svc.GetStats()["sessions"], convey.ShouldEqual, 1)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given a context that ends quickly", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updaters return without panicking", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, newService(config.New(ctx))) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
