// Package types contains chart shapes shared by the engine, the service and the API.
package types

// ChartKind names a chart users can request.
type ChartKind string

// Chart kinds.
const (
	KindPathways              ChartKind = "pathways"
	KindRelationshipsUnique   ChartKind = "relationships_unique"
	KindRelationshipsTotal    ChartKind = "relationships_total"
	KindFirstEngagementsTotal ChartKind = "first_engagements_total"
	KindFirstEngagementsUniq  ChartKind = "first_engagements_unique"
	KindReturnRatesAll        ChartKind = "return_rates_all"
	KindReturnRatesFirst      ChartKind = "return_rates_first"
	KindUniqueEngagementRates ChartKind = "unique_engagement_rates"
	KindOneAndDone            ChartKind = "one_and_done"
	KindGraduateEngagement    ChartKind = "graduate_engagement"
	KindEngagementTimeline    ChartKind = "engagement_timeline"
	KindEngagementVolume      ChartKind = "engagement_volume"
)

// AllKinds lists every chart kind in menu order.
var AllKinds = []ChartKind{
	KindPathways,
	KindRelationshipsUnique,
	KindRelationshipsTotal,
	KindFirstEngagementsTotal,
	KindFirstEngagementsUniq,
	KindReturnRatesAll,
	KindReturnRatesFirst,
	KindUniqueEngagementRates,
	KindOneAndDone,
	KindGraduateEngagement,
	KindEngagementTimeline,
	KindEngagementVolume,
}

// Valid reports whether k is a known kind.
func (k ChartKind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ChartType tells the renderer how to draw a chart.
type ChartType string

// Chart types.
const (
	TypeHeatmap ChartType = "heatmap"
	TypeSankey  ChartType = "sankey"
	TypeScatter ChartType = "scatter"
	TypeLine    ChartType = "line"
	TypeBar     ChartType = "bar"
)

// Table is a chart-ready table.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ColorScale bounds and colors the color axis.
type ColorScale struct {
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Colors  []string `json:"colors"`
	Stepped bool     `json:"stepped"`
}

// Hover describes the hover text: a template with {field} placeholders filled from table columns.
type Hover struct {
	Template string   `json:"template"`
	Fields   []string `json:"fields"`
}

// Chart is a chart-ready table plus everything a renderer needs to draw it.
type Chart struct {
	ID       string      `json:"id"`
	Kind     ChartKind   `json:"kind"`
	Type     ChartType   `json:"type"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	XAxis    string      `json:"x_axis,omitempty"`
	YAxis    string      `json:"y_axis,omitempty"`
	XLabels  []string    `json:"x_labels,omitempty"`
	YLabels  []string    `json:"y_labels,omitempty"`
	Table    Table       `json:"table"`
	Nodes    *Table      `json:"nodes,omitempty"`
	Color    *ColorScale `json:"color,omitempty"`
	Hover    *Hover      `json:"hover,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
}

// ChartError reports a chart that could not be built.
type ChartError struct {
	Kind    ChartKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// WorkbookEntry is a chart saved to the session workbook with its note.
type WorkbookEntry struct {
	Chart Chart  `json:"chart"`
	Note  string `json:"note"`
}

// SessionInfo describes an open session and the filter options its dataset offers.
type SessionInfo struct {
	ID              string   `json:"session_id"`
	Records         int      `json:"records"`
	People          int      `json:"people"`
	Categories      []string `json:"categories"`
	GraduationYears []int    `json:"graduation_years"`
	Majors          []string `json:"majors"`
	GraduateClasses []string `json:"graduate_classes"`
	Charts          int      `json:"charts"`
	WorkbookEntries int      `json:"workbook_entries"`
}

// ChartRun is the outcome of one chart request.
type ChartRun struct {
	Description string       `json:"description"`
	Records     int          `json:"records"`
	People      int          `json:"people"`
	Charts      []Chart      `json:"charts"`
	Errors      []ChartError `json:"errors"`
}
