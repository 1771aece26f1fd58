package analytics

import (
	"fmt"
	"strconv"

	"github.com/okian/engage/internal/domain/transition"
	"github.com/okian/engage/internal/domain/types"
)

const (
	uniqueHover = "{percent} of people who went to {source}, later went to {destination} (at any point)."
	totalHover  = "{percent} of the time {source} led to {destination} (at any point)."
)

func buildHeatmap(r *run, sem transition.Semantics) (types.Chart, error) {
	m, err := r.matrix(sem)
	if err != nil {
		return types.Chart{}, err
	}
	colors := m.ColorScale(r.settings.PercentileCap)

	chart := types.Chart{
		Type:    types.TypeHeatmap,
		XAxis:   "Later engagement",
		YAxis:   "Engagement",
		XLabels: m.Categories,
		Table: types.Table{
			Columns: []string{"source", "destination", "count", "row_total", "ratio", "percent", "color"},
		},
		Color: r.scale(heatmapStops, 0, 1),
		Hover: &types.Hover{Fields: []string{"percent", "source", "destination"}},
	}
	if sem == transition.Unique {
		chart.Title = "Engagement relationships (unique students)"
		chart.Hover.Template = uniqueHover
	} else {
		chart.Title = "Engagement relationships (all engagements)"
		chart.Hover.Template = totalHover
	}

	for i, src := range m.Categories {
		chart.YLabels = append(chart.YLabels, src+" ("+strconv.Itoa(m.RowTotals[i])+")")
		for j, dst := range m.Categories {
			chart.Table.Rows = append(chart.Table.Rows, []any{
				src, dst, m.Counts[i][j], m.RowTotals[i], m.Ratios[i][j], percent(m.Ratios[i][j]), colors[i][j],
			})
		}
	}
	return chart, nil
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
