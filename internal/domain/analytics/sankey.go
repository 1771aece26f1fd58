package analytics

import (
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/pathway"
	"github.com/okian/engage/internal/domain/types"
)

const (
	nodeAlpha = 0.8
	linkAlpha = 0.3
)

func buildSankey(r *run) (types.Chart, error) {
	t, err := r.pathways()
	if err != nil {
		return types.Chart{}, err
	}
	sk := t.Sankey(pathway.Options{
		MaxColumns:     r.settings.SankeyMaxColumns,
		MinWeight:      r.settings.SankeyMinEdgeWeight,
		ShowNeverAfter: r.settings.IncludeNeverAfter,
	})
	if len(sk.Links) == 0 {
		return types.Chart{}, model.NewKind("analytics.buildSankey", model.ErrEmptyResult,
			"no path has at least %d people", r.settings.SankeyMinEdgeWeight)
	}

	nodes := &types.Table{Columns: []string{"label", "name", "step", "total", "x", "color"}}
	for _, n := range sk.Nodes {
		nodes.Rows = append(nodes.Rows, []any{
			n.Label, n.Node.Label(), n.Step, n.Total, n.X, sankeyColor(n.Index, nodeAlpha),
		})
	}

	chart := types.Chart{
		Type:  types.TypeSankey,
		Title: "Engagement pathways",
		Table: types.Table{Columns: []string{"source", "target", "source_label", "target_label", "count", "share", "percent", "color"}},
		Nodes: nodes,
		Hover: &types.Hover{
			Template: "{percent} of {source_label} went to {target_label} ({count} people)",
			Fields:   []string{"percent", "source_label", "target_label", "count"},
		},
	}
	for _, l := range sk.Links {
		src, dst := sk.Nodes[l.Source], sk.Nodes[l.Target]
		chart.Table.Rows = append(chart.Table.Rows, []any{
			l.Source, l.Target, src.Label, dst.Label, l.Count, l.Share, percent(l.Share), sankeyColor(src.Index, linkAlpha),
		})
	}
	return chart, nil
}
