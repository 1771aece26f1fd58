package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/engage/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.SessionIdleTTL, convey.ShouldEqual, 2*time.Hour)
				convey.So(cfg.Analysis.MinSampleSize, convey.ShouldEqual, 3)
				convey.So(cfg.Analysis.TrendCategories, convey.ShouldResemble, []string{"Any Engagement"})
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "engage")
				convey.So(cfg.Metrics.LatencyBuckets, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ENGAGE_ADDR", ":8080")
			_ = os.Setenv("ENGAGE_MAX_SESSIONS", "10")
			_ = os.Setenv("ENGAGE_SESSION_IDLE_TTL", "15m")
			_ = os.Setenv("ENGAGE_ANALYSIS__MIN_SAMPLE_SIZE", "5")
			_ = os.Setenv("ENGAGE_ANALYSIS__AGGREGATION", "class_year")
			_ = os.Setenv("ENGAGE_ANALYSIS__STEPPED_COLORS", "true")
			_ = os.Setenv("ENGAGE_METRICS__NAMESPACE", "career")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10)
				convey.So(cfg.SessionIdleTTL, convey.ShouldEqual, 15*time.Minute)
				convey.So(cfg.Analysis.MinSampleSize, convey.ShouldEqual, 5)
				convey.So(cfg.Analysis.Aggregation, convey.ShouldEqual, "class_year")
				convey.So(cfg.Analysis.SteppedColors, convey.ShouldBeTrue)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "career")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "analytics")
			})
		})

		convey.Convey("When loading config with a YAML file and env", func() {
			yamlContent := `
addr: ":9090"
log_format: json
max_upload_bytes: 1048576
analysis:
  percentile_cap: 95
  sankey_max_columns: 5
  trend_categories: ["Any Engagement", "Fair"]
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENGAGE_CONFIG", tmpFile)
			_ = os.Setenv("ENGAGE_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file and the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 1048576)
				convey.So(cfg.Analysis.PercentileCap, convey.ShouldEqual, 95)
				convey.So(cfg.Analysis.SankeyMaxColumns, convey.ShouldEqual, 5)
				convey.So(cfg.Analysis.TrendCategories, convey.ShouldResemble, []string{"Any Engagement", "Fair"})
				convey.So(cfg.Analysis.MinSampleSize, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("ENGAGE_CONFIG", "/nonexistent/engage.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file is malformed", func() {
			tmpFile := createTempConfigFile("addr: [unterminated")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ENGAGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When values are out of range", func() {
			_ = os.Setenv("ENGAGE_ANALYSIS__COLOR_DIVISIONS", "40")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "ColorDivisions")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("ENGAGE_ADDR", "")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the metrics namespace is empty", func() {
			_ = os.Setenv("ENGAGE_METRICS__NAMESPACE", "")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("ENGAGE_LOG_FORMAT", "xml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ENGAGE_CONFIG",
		"ENGAGE_ADDR",
		"ENGAGE_LOG_FORMAT",
		"ENGAGE_MAX_SESSIONS",
		"ENGAGE_SESSION_IDLE_TTL",
		"ENGAGE_ANALYSIS__MIN_SAMPLE_SIZE",
		"ENGAGE_ANALYSIS__AGGREGATION",
		"ENGAGE_ANALYSIS__STEPPED_COLORS",
		"ENGAGE_ANALYSIS__COLOR_DIVISIONS",
		"ENGAGE_METRICS__NAMESPACE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "engage-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
