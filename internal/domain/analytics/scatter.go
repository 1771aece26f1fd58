package analytics

import (
	"fmt"
	"strconv"

	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/retention"
	"github.com/okian/engage/internal/domain/semester"
	"github.com/okian/engage/internal/domain/transition"
	"github.com/okian/engage/internal/domain/types"
)

// point is one marker of a scatter: size is the sample, value drives color.
type point struct {
	bucket     semester.Bucket
	category   string
	size       int
	value      float64
	suppressed bool
}

type scatterSpec struct {
	title string
	unit  string
	// metric and countMetric name the color value in rate and count mode.
	metric      string
	countMetric string
	rate        bool
	points      func(rep *retention.Report, counts bool) []point
}

var (
	firstEngagementsTotal = scatterSpec{
		title:       "First engagements (all engagements)",
		unit:        "engagements",
		metric:      "Share that were a first engagement",
		countMetric: "First engagements",
		rate:        true,
		points: allPoints(func(row retention.Row, counts bool) (int, float64) {
			if counts {
				return row.Engagements, float64(row.FirstEngagements)
			}
			return row.Engagements, row.FirstEngagementRate
		}),
	}
	firstEngagementsUnique = scatterSpec{
		title:       "First engagements (unique students)",
		unit:        "students",
		metric:      "Share of students for whom it was a first engagement",
		countMetric: "First engagements",
		rate:        true,
		points: allPoints(func(row retention.Row, counts bool) (int, float64) {
			if counts {
				return row.People, float64(row.FirstEngagements)
			}
			return row.People, row.PeopleFirstEngagementRate
		}),
	}
	returnRatesAll = scatterSpec{
		title:       "Return rates (all engagements)",
		unit:        "engagements",
		metric:      "Average later engagements",
		countMetric: "Average later engagements",
		points: allPoints(func(row retention.Row, _ bool) (int, float64) {
			return row.Engagements, row.AverageSubsequent
		}),
	}
	returnRatesFirst = scatterSpec{
		title:       "Return rates (first engagements)",
		unit:        "first engagements",
		metric:      "Average later engagements",
		countMetric: "Average later engagements",
		points: firstPoints(func(row retention.FirstRow, _ bool) (int, float64) {
			return row.FirstEngagements, row.AverageSubsequent
		}),
	}
	uniqueEngagementRates = scatterSpec{
		title:       "Unique engagement rates",
		unit:        "engagements",
		metric:      "Students per engagement",
		countMetric: "Students",
		rate:        true,
		points: allPoints(func(row retention.Row, counts bool) (int, float64) {
			if counts {
				return row.Engagements, float64(row.People)
			}
			return row.Engagements, row.UniqueRatio
		}),
	}
	oneAndDone = scatterSpec{
		title:       "One and done",
		unit:        "first engagements",
		metric:      "Share who never engaged again",
		countMetric: "Students who never engaged again",
		rate:        true,
		points: firstPoints(func(row retention.FirstRow, counts bool) (int, float64) {
			if counts {
				return row.FirstEngagements, float64(row.OneAndDone)
			}
			return row.FirstEngagements, row.OneAndDoneRate
		}),
	}
)

func allPoints(pick func(retention.Row, bool) (int, float64)) func(*retention.Report, bool) []point {
	return func(rep *retention.Report, counts bool) []point {
		out := make([]point, 0, len(rep.All))
		for _, row := range rep.All {
			size, value := pick(row, counts)
			out = append(out, point{row.Bucket, row.Category, size, value, row.Suppressed})
		}
		return out
	}
}

func firstPoints(pick func(retention.FirstRow, bool) (int, float64)) func(*retention.Report, bool) []point {
	return func(rep *retention.Report, counts bool) []point {
		out := make([]point, 0, len(rep.First))
		for _, row := range rep.First {
			size, value := pick(row, counts)
			out = append(out, point{row.Bucket, row.Category, size, value, row.Suppressed})
		}
		return out
	}
}

func scatterBuilder(spec scatterSpec) func(*run) (types.Chart, error) {
	return func(r *run) (types.Chart, error) {
		return buildScatter(r, spec)
	}
}

func buildScatter(r *run, spec scatterSpec) (types.Chart, error) {
	rep, err := r.retention()
	if err != nil {
		return types.Chart{}, err
	}
	counts := r.settings.UseCounts
	metric := spec.metric
	if counts {
		metric = spec.countMetric
	}

	chart := types.Chart{
		Type:    types.TypeScatter,
		Title:   spec.title,
		XAxis:   r.mode.AxisTitle(),
		YAxis:   "Engagement Type",
		YLabels: rep.Categories,
		Table: types.Table{
			Columns: []string{"bucket", "bucket_key", "category", "size", "value", "display", "suppressed"},
		},
		Hover: &types.Hover{
			Template: "{category} in {bucket}<br>{size} " + spec.unit + "<br>" + metric + ": {display}",
			Fields:   []string{"category", "bucket", "size", "display"},
		},
	}

	seen := map[int]struct{}{}
	var values []float64
	for _, p := range spec.points(rep, counts) {
		if p.size == 0 {
			continue
		}
		if _, ok := seen[p.bucket.Key]; !ok {
			seen[p.bucket.Key] = struct{}{}
			chart.XLabels = append(chart.XLabels, p.bucket.Name)
		}
		display := "too few to show"
		if !p.suppressed {
			values = append(values, p.value)
			display = format(p.value, spec.rate && !counts)
		}
		chart.Table.Rows = append(chart.Table.Rows, []any{
			p.bucket.Name, p.bucket.Key, p.category, p.size, p.value, display, p.suppressed,
		})
	}
	if len(chart.Table.Rows) == 0 {
		return types.Chart{}, model.NewKind("analytics.buildScatter", model.ErrEmptyResult,
			"no engagements fall into a %s bucket", r.mode)
	}

	lo, hi := colorRange(values, r.settings.PercentileCap)
	chart.Color = r.scale(scatterStops, lo, hi)
	return chart, nil
}

// colorRange spans the smallest nonzero value up to the percentile cap.
func colorRange(values []float64, percentile float64) (float64, float64) {
	lo := 0.0
	for _, v := range values {
		if v > 0 && (lo == 0 || v < lo) {
			lo = v
		}
	}
	hi := transition.Percentile(values, percentile)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func format(v float64, rate bool) string {
	if rate {
		return percent(v)
	}
	if v == float64(int(v)) {
		return strconv.Itoa(int(v))
	}
	return fmt.Sprintf("%.2f", v)
}
