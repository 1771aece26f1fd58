package analytics

import (
	"sort"

	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/trend"
	"github.com/okian/engage/internal/domain/types"
)

// SeriesColumns is the table layout of line and bar charts.
var SeriesColumns = []string{"series", "x", "value", "count", "share"}

func buildGraduateEngagement(r *run) (types.Chart, error) {
	categories, err := r.trendCategories()
	if err != nil {
		return types.Chart{}, err
	}
	if len(r.data.Graduates) == 0 {
		return types.Chart{}, model.NewKind("analytics.buildGraduateEngagement", model.ErrEmptyResult, "no graduate lists")
	}
	series := trend.GraduateEngagement(r.records, r.data.Graduates, categories, r.keep())
	chart := r.seriesChart(types.TypeLine, "Graduate engagement by class", series, r.settings.UseCounts)
	chart.XAxis = "Graduating class"
	return chart, nil
}

func buildTimeline(r *run) (types.Chart, error) {
	categories, err := r.trendCategories()
	if err != nil {
		return types.Chart{}, err
	}
	series := trend.Timeline(r.records, r.data.Graduates, categories, r.mode, r.keep())
	if len(series) == 0 {
		return types.Chart{}, model.NewKind("analytics.buildTimeline", model.ErrEmptyResult,
			"no known graduate engaged in a %s bucket", r.mode)
	}
	chart := r.seriesChart(types.TypeLine, "Cumulative graduate engagement", series, r.settings.UseCounts)
	chart.XAxis = r.mode.AxisTitle()
	return chart, nil
}

func buildVolume(r *run) (types.Chart, error) {
	series := trend.Volume(r.records, r.catalog.ByImportance(), r.mode)
	chart := r.seriesChart(types.TypeBar, "Engagement volume", series, true)
	if len(chart.XLabels) == 0 {
		return types.Chart{}, model.NewKind("analytics.buildVolume", model.ErrEmptyResult,
			"no engagements fall into a %s bucket", r.mode)
	}
	chart.XAxis = r.mode.AxisTitle()
	return chart, nil
}

// trendCategories checks the selected categories against the catalog.
func (r *run) trendCategories() ([]string, error) {
	for _, c := range r.settings.TrendCategories {
		if c != trend.AnyEngagement && !r.catalog.Contains(c) {
			return nil, model.NewKind("analytics.trendCategories", model.ErrLookup, "unknown category %q", c)
		}
	}
	return r.settings.TrendCategories, nil
}

func (r *run) seriesChart(typ types.ChartType, title string, series []trend.Series, counts bool) types.Chart {
	chart := types.Chart{
		Type:  typ,
		Title: title,
		YAxis: "Percent of students",
		Table: types.Table{Columns: SeriesColumns},
		Hover: &types.Hover{Template: "{series}, {x}: {value}", Fields: []string{"series", "x", "value"}},
	}
	if counts {
		chart.YAxis = "Number of students"
	}
	if typ == types.TypeBar {
		chart.YAxis = "Number of engagements"
	}

	labels := map[int]string{}
	for _, s := range series {
		for _, p := range s.Points {
			labels[p.Key] = p.Label
			value := p.Share * 100
			if counts {
				value = float64(p.Count)
			}
			chart.Table.Rows = append(chart.Table.Rows, []any{s.Name, p.Label, value, p.Count, p.Share})
		}
	}
	keys := make([]int, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		chart.XLabels = append(chart.XLabels, labels[k])
	}
	return chart
}
