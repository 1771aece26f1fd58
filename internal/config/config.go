// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/cohort"
)

var validate = validator.New()

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// MaxUploadBytes caps the size of an uploaded workbook.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gt=0"`

	// MaxSessions caps concurrently open sessions; 0 means unlimited.
	MaxSessions int `koanf:"max_sessions" validate:"gte=0"`

	// SessionIdleTTL is how long an untouched session survives when room is needed.
	SessionIdleTTL time.Duration `koanf:"session_idle_ttl" validate:"gt=0"`

	// ChartImages attaches quickchart image URLs to line and bar charts.
	ChartImages bool `koanf:"chart_images"`

	// Metrics names the Prometheus collectors and sizes latency histograms.
	Metrics Metrics `koanf:"metrics"`

	// Analysis holds the settings every new session starts with.
	Analysis Analysis `koanf:"analysis"`
}

// Metrics configures the Prometheus collectors.
type Metrics struct {
	Namespace string `koanf:"namespace" validate:"required"`
	Subsystem string `koanf:"subsystem" validate:"required"`

	// LatencyBuckets are the HTTP and chart-run histogram bounds in milliseconds.
	LatencyBuckets []float64 `koanf:"latency_buckets" validate:"min=1,dive,gt=0"`
}

// Analysis mirrors the per-session analysis settings.
type Analysis struct {
	MinSampleSize       int      `koanf:"min_sample_size"`
	PercentileCap       float64  `koanf:"percentile_cap"`
	SankeyMaxColumns    int      `koanf:"sankey_max_columns"`
	SankeyMinEdgeWeight int      `koanf:"sankey_min_edge_weight"`
	IncludeNeverBefore  bool     `koanf:"include_never_before"`
	IncludeNeverAfter   bool     `koanf:"include_never_after"`
	Aggregation         string   `koanf:"aggregation"`
	TrendCategories     []string `koanf:"trend_categories"`
	UseCounts           bool     `koanf:"use_counts"`
	SteppedColors       bool     `koanf:"stepped_colors"`
	ColorDivisions      int      `koanf:"color_divisions"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	d := analytics.DefaultSettings()
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		MaxUploadBytes: 64 << 20,
		MaxSessions:    256,
		SessionIdleTTL: 2 * time.Hour,
		ChartImages:    true,
		Metrics: Metrics{
			Namespace:      "engage",
			Subsystem:      "analytics",
			LatencyBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		Analysis: Analysis{
			MinSampleSize:       d.MinSampleSize,
			PercentileCap:       d.PercentileCap,
			SankeyMaxColumns:    d.SankeyMaxColumns,
			SankeyMinEdgeWeight: d.SankeyMinEdgeWeight,
			IncludeNeverBefore:  d.IncludeNeverBefore,
			IncludeNeverAfter:   d.IncludeNeverAfter,
			Aggregation:         d.Aggregation,
			TrendCategories:     d.TrendCategories,
			UseCounts:           d.UseCounts,
			SteppedColors:       d.SteppedColors,
			ColorDivisions:      d.ColorDivisions,
		},
	}
}

// Settings converts the analysis defaults into session settings with no cohort filter.
func (a Analysis) Settings() analytics.Settings {
	return analytics.Settings{
		Cohort:              cohort.Criteria{},
		MinSampleSize:       a.MinSampleSize,
		PercentileCap:       a.PercentileCap,
		SankeyMaxColumns:    a.SankeyMaxColumns,
		SankeyMinEdgeWeight: a.SankeyMinEdgeWeight,
		IncludeNeverBefore:  a.IncludeNeverBefore,
		IncludeNeverAfter:   a.IncludeNeverAfter,
		Aggregation:         a.Aggregation,
		TrendCategories:     append([]string(nil), a.TrendCategories...),
		UseCounts:           a.UseCounts,
		SteppedColors:       a.SteppedColors,
		ColorDivisions:      a.ColorDivisions,
	}
}

// Validate checks the whole configuration, analysis defaults included.
func (c *Config) Validate(_ context.Context) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Analysis.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: analysis: %v", ErrInvalidConfig, err)
	}
	return nil
}
