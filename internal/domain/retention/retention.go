// Package retention computes return and first-engagement metrics per time bucket and category.
package retention

import (
	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/model"
	"github.com/okian/engage/internal/domain/semester"
	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/stat"
)

// Options configures bucketing and small-sample suppression.
type Options struct {
	Aggregation   semester.Aggregation
	MinSampleSize int
}

// Row holds metrics over every engagement in a (bucket, category).
type Row struct {
	Bucket   semester.Bucket
	Category string

	// AverageSubsequent is the mean number of engagements a person had after this one.
	AverageSubsequent float64
	Engagements       int
	FirstEngagements  int
	// FirstEngagementRate is FirstEngagements over Engagements.
	FirstEngagementRate float64
	People              int
	// PeopleFirstEngagementRate is FirstEngagements over People.
	PeopleFirstEngagementRate float64
	// UniqueRatio is People over Engagements.
	UniqueRatio float64
	OneAndDone  int
	// OneAndDoneRate is OneAndDone over People.
	OneAndDoneRate float64

	// Suppressed marks rows with fewer engagements than the minimum sample size.
	Suppressed bool
}

// FirstRow holds metrics over first engagements only.
type FirstRow struct {
	Bucket   semester.Bucket
	Category string

	AverageSubsequent float64
	FirstEngagements  int
	OneAndDone        int
	OneAndDoneRate    float64
	Suppressed        bool
}

// Report is the output of Build, ordered by bucket then category importance.
type Report struct {
	Categories []string
	All        []Row
	First      []FirstRow
}

type cell struct {
	subsequent      []float64
	firstSubsequent []float64
	people          map[string]struct{}
	oneAndDone      int
}

type bucket struct {
	semester.Bucket
	cells map[string]*cell
}

func byKey(a, b *bucket) bool { return a.Key < b.Key }

// Build accumulates every record of groups into its bucket and category.
// Groups must come from a contiguously indexed record slice.
func Build(groups []model.PersonGroup, cat catalog.Catalog, opts Options) (Report, error) {
	if opts.MinSampleSize < 1 {
		return Report{}, model.NewKind("retention.Build", model.ErrConfiguration,
			"minimum sample size must be at least 1, got %d", opts.MinSampleSize)
	}

	tree := btree.NewBTreeG[*bucket](byKey)
	for _, g := range groups {
		last := g.Last().Index
		for i, r := range g.Records {
			if !cat.Contains(r.Category) {
				return Report{}, model.NewKind("retention.Build", model.ErrLookup,
					"category %q is not in the catalog", r.Category)
			}
			b, ok := opts.Aggregation.Of(r)
			if !ok {
				continue
			}
			acc, found := tree.Get(&bucket{Bucket: b})
			if !found {
				acc = &bucket{Bucket: b, cells: map[string]*cell{}}
				tree.Set(acc)
			}
			c := acc.cells[r.Category]
			if c == nil {
				c = &cell{people: map[string]struct{}{}}
				acc.cells[r.Category] = c
			}

			after := float64(last - r.Index)
			c.subsequent = append(c.subsequent, after)
			c.people[r.PersonID] = struct{}{}
			if g.IsFirst(i) {
				c.firstSubsequent = append(c.firstSubsequent, after)
				if g.IsLast(i) {
					c.oneAndDone++
				}
			}
		}
	}

	categories := cat.ByImportance()
	report := Report{Categories: categories}
	threshold := opts.MinSampleSize
	tree.Scan(func(b *bucket) bool {
		if anyAtLeast(b, categories, threshold, func(c *cell) int { return len(c.subsequent) }) {
			for _, name := range categories {
				report.All = append(report.All, allRow(b.Bucket, name, b.cells[name], threshold))
			}
		}
		if anyAtLeast(b, categories, threshold, func(c *cell) int { return len(c.firstSubsequent) }) {
			for _, name := range categories {
				report.First = append(report.First, firstRow(b.Bucket, name, b.cells[name], threshold))
			}
		}
		return true
	})
	return report, nil
}

func anyAtLeast(b *bucket, categories []string, threshold int, size func(*cell) int) bool {
	for _, name := range categories {
		if c := b.cells[name]; c != nil && size(c) >= threshold {
			return true
		}
	}
	return false
}

func allRow(b semester.Bucket, name string, c *cell, threshold int) Row {
	row := Row{Bucket: b, Category: name, Suppressed: true}
	if c == nil {
		return row
	}
	row.FirstEngagements = len(c.firstSubsequent)
	row.OneAndDone = c.oneAndDone

	if people := len(c.people); people >= threshold {
		row.People = people
		row.PeopleFirstEngagementRate = float64(row.FirstEngagements) / float64(people)
	}
	total := len(c.subsequent)
	if total < threshold {
		return row
	}
	row.Suppressed = false
	row.AverageSubsequent = stat.Mean(c.subsequent, nil)
	row.Engagements = total
	row.FirstEngagementRate = float64(row.FirstEngagements) / float64(total)
	row.UniqueRatio = float64(row.People) / float64(total)
	if row.People > 0 {
		row.OneAndDoneRate = float64(row.OneAndDone) / float64(row.People)
	}
	return row
}

func firstRow(b semester.Bucket, name string, c *cell, threshold int) FirstRow {
	row := FirstRow{Bucket: b, Category: name, Suppressed: true}
	if c == nil {
		return row
	}
	row.OneAndDone = c.oneAndDone
	n := len(c.firstSubsequent)
	if n < threshold {
		return row
	}
	row.Suppressed = false
	row.AverageSubsequent = stat.Mean(c.firstSubsequent, nil)
	row.FirstEngagements = n
	row.OneAndDoneRate = float64(row.OneAndDone) / float64(n)
	return row
}
