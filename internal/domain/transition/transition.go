// Package transition counts how often one event category is followed, at any
// later point, by another.
package transition

import (
	"sort"

	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Semantics selects what a matrix counts.
type Semantics int

const (
	// Total counts every engagement: each record is a row observation.
	Total Semantics = iota
	// Unique counts each person at most once per source and per (source, destination) pair.
	Unique
)

func (s Semantics) String() string {
	if s == Unique {
		return "unique"
	}
	return "total"
}

// Matrix is a square follow-on table in catalog frequency order.
type Matrix struct {
	Semantics  Semantics
	Categories []string
	// Counts[i][j] is how often Categories[i] was later followed by Categories[j].
	Counts    [][]int
	RowTotals []int
	// Ratios[i][j] is Counts[i][j] / RowTotals[i], 0 when the row total is 0.
	Ratios [][]float64
}

// Build computes the matrix for groups with the given semantics.
func Build(groups []model.PersonGroup, cat catalog.Catalog, sem Semantics) (Matrix, error) {
	names := cat.ByFrequency()
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	m := Matrix{
		Semantics:  sem,
		Categories: names,
		Counts:     square[int](len(names)),
		RowTotals:  make([]int, len(names)),
	}

	for _, g := range groups {
		seq := make([]int, len(g.Records))
		for i, r := range g.Records {
			idx, ok := index[r.Category]
			if !ok {
				return Matrix{}, model.NewKind("transition.Build", model.ErrLookup,
					"category %q is not in the catalog", r.Category)
			}
			seq[i] = idx
		}
		if sem == Unique {
			m.addUnique(seq)
		} else {
			m.addTotal(seq)
		}
	}

	m.Ratios = square[float64](len(names))
	for i := range m.Counts {
		if m.RowTotals[i] == 0 {
			continue
		}
		for j, c := range m.Counts[i] {
			m.Ratios[i][j] = float64(c) / float64(m.RowTotals[i])
		}
	}
	return m, nil
}

// addTotal scans forward from every record, counting each later category once per record.
func (m *Matrix) addTotal(seq []int) {
	seen := make([]bool, len(m.Categories))
	for i, src := range seq {
		m.RowTotals[src]++
		m.follow(seq, i, seen)
	}
}

// addUnique counts each distinct source once from its first occurrence and each
// distinct category after that occurrence once.
func (m *Matrix) addUnique(seq []int) {
	done := make([]bool, len(m.Categories))
	seen := make([]bool, len(m.Categories))
	for i, src := range seq {
		if done[src] {
			continue
		}
		done[src] = true
		m.RowTotals[src]++
		m.follow(seq, i, seen)
	}
}

func (m *Matrix) follow(seq []int, i int, seen []bool) {
	clear(seen)
	src := seq[i]
	for _, dst := range seq[i+1:] {
		if !seen[dst] {
			seen[dst] = true
			m.Counts[src][dst]++
		}
	}
}

// Count returns the cell for a (source, destination) pair by name.
func (m Matrix) Count(src, dst string) int {
	i, j := m.indexOf(src), m.indexOf(dst)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

// Ratio returns the ratio for a (source, destination) pair by name.
func (m Matrix) Ratio(src, dst string) float64 {
	i, j := m.indexOf(src), m.indexOf(dst)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Ratios[i][j]
}

// RowTotal returns the normalizing total of a source category.
func (m Matrix) RowTotal(src string) int {
	i := m.indexOf(src)
	if i < 0 {
		return 0
	}
	return m.RowTotals[i]
}

func (m Matrix) indexOf(name string) int {
	for i, n := range m.Categories {
		if n == name {
			return i
		}
	}
	return -1
}

// ColorScale returns presentation values in [0,1]: ratios are clipped at the
// given percentile (1 <= p <= 100) of the matrix's own ratios, then min-max normalized per row.
// These values drive color only and are never shown as percentages.
func (m Matrix) ColorScale(percentile float64) [][]float64 {
	out := square[float64](len(m.Categories))
	ceiling := Percentile(flatten(m.Ratios), percentile)
	for i, row := range m.Ratios {
		lo, hi := 1.0, 0.0
		clipped := make([]float64, len(row))
		for j, v := range row {
			if v > ceiling {
				v = ceiling
			}
			clipped[j] = v
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi <= lo {
			continue
		}
		for j, v := range clipped {
			out[i][j] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// Percentile returns the p-th percentile (1 <= p <= 100) of values, 0 for no values.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p/100, stat.LinInterp, sorted, nil)
}

func flatten(rows [][]float64) []float64 {
	var out []float64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func square[T int | float64](n int) [][]T {
	out := make([][]T, n)
	for i := range out {
		out[i] = make([]T, n)
	}
	return out
}
