package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/engage/internal/domain/cohort"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/trend"
)

var settingsValidate = validator.New()

// Settings are the per-session choices applied on every Run.
type Settings struct {
	Cohort cohort.Criteria `json:"cohort"`

	MinSampleSize       int     `json:"min_sample_size" validate:"gte=1"`
	PercentileCap       float64 `json:"percentile_cap" validate:"gte=1,lte=100"`
	SankeyMaxColumns    int     `json:"sankey_max_columns" validate:"gte=1,lte=50"`
	SankeyMinEdgeWeight int     `json:"sankey_min_edge_weight" validate:"gte=1"`
	IncludeNeverBefore  bool    `json:"include_never_before"`
	IncludeNeverAfter   bool    `json:"include_never_after"`
	Aggregation         string  `json:"aggregation" validate:"oneof=none class_year_term class_year"`

	TrendCategories []string `json:"trend_categories" validate:"min=1,dive,required"`
	UseCounts       bool     `json:"use_counts"`
	SteppedColors   bool     `json:"stepped_colors"`
	ColorDivisions  int      `json:"color_divisions" validate:"gte=2,lte=20"`
}

// DefaultSettings mirrors the dashboard's initial state.
func DefaultSettings() Settings {
	return Settings{
		MinSampleSize:       3,
		PercentileCap:       100,
		SankeyMaxColumns:    3,
		SankeyMinEdgeWeight: 3,
		Aggregation:         "none",
		TrendCategories:     []string{trend.AnyEngagement},
		ColorDivisions:      5,
	}
}

// Validate checks ranges and reports violations as model.ErrConfiguration.
func (s Settings) Validate() error {
	err := settingsValidate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.WrapKind("analytics.Settings", model.ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return model.NewKind("analytics.Settings", model.ErrConfiguration, "%s", strings.Join(msgs, "; "))
}
