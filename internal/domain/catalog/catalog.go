// Package catalog holds the ordered set of event categories used by every builder.
//
// A Catalog is immutable. The importance order comes from the rankings sheet;
// the frequency order is recomputed for each filtered record set via WithFrequency.
package catalog

import (
	"sort"

	"github.com/okian/engage/internal/domain/model"
)

// DoNotInclude is the grouping used to drop event types from every table.
const DoNotInclude = "Do not Include"

// Catalog is an immutable ordered set of K categories.
type Catalog struct {
	byImportance []string
	byFrequency  []string
	importance   map[string]int
	frequency    map[string]int
	people       map[string]int
}

// New builds a catalog from the importance ranking, which must be a permutation of 1..K.
// The excluded sentinel is ignored. Until WithFrequency is applied the frequency
// order equals the importance order.
func New(ranking map[string]int) (Catalog, error) {
	const op = "catalog.New"

	names := make([]string, 0, len(ranking))
	for name := range ranking {
		if name == DoNotInclude {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return Catalog{}, model.NewKind(op, model.ErrConfiguration, "ranking table is empty")
	}
	sort.Slice(names, func(i, j int) bool { return ranking[names[i]] < ranking[names[j]] })

	importance := make(map[string]int, len(names))
	for i, name := range names {
		if ranking[name] != i+1 {
			return Catalog{}, model.NewKind(op, model.ErrConfiguration,
				"ranking of %q is %d, ranks must be a permutation of 1..%d", name, ranking[name], len(names))
		}
		importance[name] = i + 1
	}

	c := Catalog{
		byImportance: names,
		byFrequency:  append([]string(nil), names...),
		importance:   importance,
		frequency:    make(map[string]int, len(names)),
		people:       make(map[string]int, len(names)),
	}
	for name, rank := range importance {
		c.frequency[name] = rank
	}
	return c, nil
}

// WithFrequency returns a copy of c ranked by the number of distinct people
// engaging with each category in records, most frequent first. Ties and unused
// categories fall back to importance order. Unknown categories fail with a lookup error.
func (c Catalog) WithFrequency(records []model.Record) (Catalog, error) {
	const op = "catalog.WithFrequency"

	seen := make(map[string]map[string]struct{}, len(c.byImportance))
	for _, r := range records {
		if _, ok := c.importance[r.Category]; !ok {
			return Catalog{}, model.NewKind(op, model.ErrLookup, "category %q is not ranked", r.Category)
		}
		set := seen[r.Category]
		if set == nil {
			set = map[string]struct{}{}
			seen[r.Category] = set
		}
		set[r.PersonID] = struct{}{}
	}

	out := Catalog{
		byImportance: c.byImportance,
		byFrequency:  append([]string(nil), c.byImportance...),
		importance:   c.importance,
		frequency:    make(map[string]int, len(c.byImportance)),
		people:       make(map[string]int, len(c.byImportance)),
	}
	for name, set := range seen {
		out.people[name] = len(set)
	}
	sort.SliceStable(out.byFrequency, func(i, j int) bool {
		return out.people[out.byFrequency[i]] > out.people[out.byFrequency[j]]
	})
	for i, name := range out.byFrequency {
		out.frequency[name] = i + 1
	}
	return out, nil
}

// Len is K, the number of included categories.
func (c Catalog) Len() int { return len(c.byImportance) }

// ByImportance lists categories in importance order.
func (c Catalog) ByImportance() []string { return append([]string(nil), c.byImportance...) }

// ByFrequency lists categories in frequency order.
func (c Catalog) ByFrequency() []string { return append([]string(nil), c.byFrequency...) }

// Contains reports whether name is an included category.
func (c Catalog) Contains(name string) bool {
	_, ok := c.importance[name]
	return ok
}

// ImportanceRank returns the 1-based importance rank of name.
func (c Catalog) ImportanceRank(name string) (int, error) {
	r, ok := c.importance[name]
	if !ok {
		return 0, model.NewKind("catalog.ImportanceRank", model.ErrLookup, "category %q is not ranked", name)
	}
	return r, nil
}

// FrequencyRank returns the 1-based frequency rank of name.
func (c Catalog) FrequencyRank(name string) (int, error) {
	r, ok := c.frequency[name]
	if !ok {
		return 0, model.NewKind("catalog.FrequencyRank", model.ErrLookup, "category %q is not ranked", name)
	}
	return r, nil
}

// People returns how many distinct people engaged with name in the set passed to WithFrequency.
func (c Catalog) People(name string) int { return c.people[name] }
