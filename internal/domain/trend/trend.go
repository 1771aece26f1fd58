// Package trend builds the line and bar series: graduate engagement by class,
// cumulative engagement over time, and engagement volume per bucket.
package trend

import (
	"sort"

	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
)

// AnyEngagement selects every category at once.
const AnyEngagement = "Any Engagement"

// GraduateClass is one column of the graduate email sheet, e.g. "Class of 2023".
type GraduateClass struct {
	Name   string
	Emails []string
}

// Point is one x position of a series.
type Point struct {
	Key   int
	Label string
	Count int
	// Share is Count over the series denominator, 0 when the denominator is 0.
	Share float64
}

// Series is one line or bar group.
type Series struct {
	Name        string
	Category    string
	Denominator int
	Points      []Point
}

// Keep reports whether a graduate belongs in the denominator, e.g. a majors restriction.
type Keep func(email string) bool

func keepAll(string) bool { return true }

func matches(category, want string) bool {
	return want == AnyEngagement || category == want
}

func share(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func graduates(class GraduateClass, keep Keep) map[string]struct{} {
	if keep == nil {
		keep = keepAll
	}
	out := make(map[string]struct{}, len(class.Emails))
	for _, e := range class.Emails {
		if keep(e) {
			out[e] = struct{}{}
		}
	}
	return out
}

// GraduateEngagement returns, per selected category, the share of each graduate
// class that appears in records. Points follow the order of classes.
func GraduateEngagement(records []model.Record, classes []GraduateClass, categories []string, keep Keep) []Series {
	engaged := map[string]map[string]struct{}{}
	for _, want := range categories {
		set := map[string]struct{}{}
		for _, r := range records {
			if matches(r.Category, want) {
				set[r.PersonID] = struct{}{}
			}
		}
		engaged[want] = set
	}

	out := make([]Series, 0, len(categories))
	for _, want := range categories {
		s := Series{Name: want, Category: want}
		for i, class := range classes {
			grads := graduates(class, keep)
			n := 0
			for e := range grads {
				if _, ok := engaged[want][e]; ok {
					n++
				}
			}
			s.Points = append(s.Points, Point{Key: i, Label: class.Name, Count: n, Share: share(n, len(grads))})
		}
		out = append(out, s)
	}
	return out
}

// Timeline returns, per graduate class and selected category, the cumulative share
// of graduates who had engaged by each bucket. Buckets outside the aggregation
// range still advance the count but are not plotted. Records without a known
// graduation term are ignored in aggregated modes.
func Timeline(records []model.Record, classes []GraduateClass, categories []string, mode semester.Aggregation, keep Keep) []Series {
	var out []Series
	for _, class := range classes {
		grads := graduates(class, keep)
		if len(grads) == 0 {
			continue
		}
		for _, want := range categories {
			earliest := map[string]int{}
			plotted := map[int]string{}
			for _, r := range records {
				if _, ok := grads[r.PersonID]; !ok || !matches(r.Category, want) {
					continue
				}
				pos, ok := position(r, mode)
				if !ok {
					continue
				}
				if cur, seen := earliest[r.PersonID]; !seen || pos < cur {
					earliest[r.PersonID] = pos
				}
				if b, ok := mode.Of(r); ok {
					plotted[b.Key] = b.Name
				}
			}
			if len(plotted) == 0 {
				continue
			}

			keys := make([]int, 0, len(plotted))
			for k := range plotted {
				keys = append(keys, k)
			}
			sort.Ints(keys)

			s := Series{Name: class.Name + " - " + want, Category: want, Denominator: len(grads)}
			for _, k := range keys {
				limit := upperBound(k, mode)
				n := 0
				for _, p := range earliest {
					if p <= limit {
						n++
					}
				}
				s.Points = append(s.Points, Point{Key: k, Label: plotted[k], Count: n, Share: share(n, len(grads))})
			}
			out = append(out, s)
		}
	}
	return out
}

// Volume counts engagements per bucket for each category.
func Volume(records []model.Record, categories []string, mode semester.Aggregation) []Series {
	counts := map[string]map[int]int{}
	names := map[int]string{}
	for _, r := range records {
		b, ok := mode.Of(r)
		if !ok {
			continue
		}
		names[b.Key] = b.Name
		if counts[r.Category] == nil {
			counts[r.Category] = map[int]int{}
		}
		counts[r.Category][b.Key]++
	}
	keys := make([]int, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]Series, 0, len(categories))
	for _, c := range categories {
		s := Series{Name: c, Category: c}
		for _, k := range keys {
			s.Points = append(s.Points, Point{Key: k, Label: names[k], Count: counts[c][k]})
		}
		out = append(out, s)
	}
	return out
}

// position places a record on the scale buckets are cut from.
func position(r model.Record, mode semester.Aggregation) (int, bool) {
	if mode == semester.None {
		return r.SemesterOrdinal, true
	}
	if r.RelativeOrdinal == semester.NotApplicable {
		return 0, false
	}
	return r.RelativeOrdinal, true
}

// upperBound is the last position that falls into bucket key.
func upperBound(key int, mode semester.Aggregation) int {
	if mode == semester.ClassYear {
		return key * 4
	}
	return key
}
