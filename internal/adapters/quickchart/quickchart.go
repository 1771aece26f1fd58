// Package quickchart renders line and bar charts as quickchart.io image URLs.
package quickchart

import (
	"encoding/json"
	"errors"
	"fmt"

	quickchartgo "github.com/henomis/quickchart-go"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/types"
)

// ErrUnsupported is returned for charts other than line and bar.
var ErrUnsupported = errors.New("chart type has no image rendering")

// ChartConfig is the chart.js configuration quickchart renders.
type ChartConfig struct {
	Type    string        `json:"type"`
	Data    ChartData     `json:"data"`
	Options *ChartOptions `json:"options,omitempty"`
}

// ChartData holds the x labels and one dataset per series.
type ChartData struct {
	Labels   []interface{} `json:"labels"`
	DataSets []Dataset     `json:"datasets"`
}

// Dataset is one plotted series.
type Dataset struct {
	Label       string        `json:"label"`
	Data        []interface{} `json:"data"`
	Fill        bool          `json:"fill"`
	LineTension float32       `json:"lineTension"`
}

// ChartOptions carries the chart title.
type ChartOptions struct {
	Title Title `json:"title"`
}

// Title is the chart.js title block.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Renderer implements analytics.ImageRenderer.
type Renderer struct{}

var _ analytics.ImageRenderer = Renderer{}

// ImageURL encodes the chart into a quickchart URL.
func (Renderer) ImageURL(chart types.Chart) (string, error) {
	config, err := Config(chart)
	if err != nil {
		return "", err
	}
	return GetChartImageURLForConfig(config)
}

// Config builds the chart.js configuration of a line or bar chart from its
// series table: one dataset per series, aligned on the chart's x labels.
func Config(chart types.Chart) (ChartConfig, error) {
	if chart.Type != types.TypeLine && chart.Type != types.TypeBar {
		return ChartConfig{}, fmt.Errorf("%w: %s", ErrUnsupported, chart.Type)
	}
	cols, err := columns(chart.Table.Columns, "series", "x", "value")
	if err != nil {
		return ChartConfig{}, err
	}

	pos := make(map[string]int, len(chart.XLabels))
	labels := make([]interface{}, len(chart.XLabels))
	for i, l := range chart.XLabels {
		pos[l] = i
		labels[i] = l
	}

	var order []string
	sets := map[string]*Dataset{}
	for _, row := range chart.Table.Rows {
		name := fmt.Sprint(row[cols[0]])
		ds, ok := sets[name]
		if !ok {
			ds = &Dataset{Label: name, Data: make([]interface{}, len(labels))}
			sets[name] = ds
			order = append(order, name)
		}
		if i, ok := pos[fmt.Sprint(row[cols[1]])]; ok {
			ds.Data[i] = row[cols[2]]
		}
	}

	config := ChartConfig{
		Type:    string(chart.Type),
		Data:    ChartData{Labels: labels},
		Options: &ChartOptions{Title: Title{Display: chart.Title != "", Text: chart.Title}},
	}
	for _, name := range order {
		config.Data.DataSets = append(config.Data.DataSets, *sets[name])
	}
	return config, nil
}

// GetChartImageURLForConfig returns the image URL of a chart.js configuration.
func GetChartImageURLForConfig(config ChartConfig) (string, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("marshal chart config: %w", err)
	}
	qc := quickchartgo.New()
	qc.Config = string(raw)
	url, err := qc.GetUrl()
	if err != nil {
		return "", fmt.Errorf("quickchart url: %w", err)
	}
	return url, nil
}

func columns(have []string, want ...string) ([]int, error) {
	out := make([]int, len(want))
	for i, w := range want {
		out[i] = -1
		for j, h := range have {
			if h == w {
				out[i] = j
				break
			}
		}
		if out[i] < 0 {
			return nil, fmt.Errorf("chart table has no %q column", w)
		}
	}
	return out, nil
}
