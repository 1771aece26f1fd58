// Package pathway counts step-by-step moves between event categories and
// derives the flow diagram shown to users.
package pathway

import (
	"github.com/okian/engage/internal/domain/catalog"
	"github.com/okian/engage/internal/domain/model"
)

// Tensor holds counts indexed by (step, source, destination) over Axis.
// Step 0 is "before the first engagement"; step i+1 leaves a person's i-th record.
type Tensor struct {
	Axis   []Node
	counts [][][]int
}

// Build fills the tensor from per-person groups. Categories are placed on the
// axis by importance rank. When includeBefore is set each first engagement
// also records a step 0 move out of NeverBefore.
func Build(groups []model.PersonGroup, cat catalog.Catalog, includeBefore bool) (Tensor, error) {
	axis := Axis(cat.ByImportance())
	after := len(axis) - 1

	longest := 0
	for _, g := range groups {
		longest = max(longest, len(g.Records))
	}
	t := Tensor{Axis: axis, counts: make([][][]int, longest+1)}
	for s := range t.counts {
		t.counts[s] = make([][]int, len(axis))
		for i := range t.counts[s] {
			t.counts[s][i] = make([]int, len(axis))
		}
	}

	for _, g := range groups {
		ranks := make([]int, len(g.Records))
		for i, r := range g.Records {
			rank, err := cat.ImportanceRank(r.Category)
			if err != nil {
				return Tensor{}, err
			}
			ranks[i] = rank
		}
		for i, rank := range ranks {
			if i == 0 && includeBefore {
				t.counts[0][0][rank]++
			}
			next := after
			if i+1 < len(ranks) {
				next = ranks[i+1]
			}
			t.counts[i+1][rank][next]++
		}
	}
	return t, nil
}

// Steps is the number of step slices, including step 0.
func (t Tensor) Steps() int { return len(t.counts) }

// At returns one cell; out-of-range coordinates read as 0.
func (t Tensor) At(step, src, dst int) int {
	if step < 0 || step >= len(t.counts) || src < 0 || src >= len(t.Axis) || dst < 0 || dst >= len(t.Axis) {
		return 0
	}
	return t.counts[step][src][dst]
}

// Outgoing sums every edge leaving src at step.
func (t Tensor) Outgoing(step, src int) int {
	total := 0
	for dst := range t.Axis {
		total += t.At(step, src, dst)
	}
	return total
}

// Incoming sums every edge arriving at dst from step.
func (t Tensor) Incoming(step, dst int) int {
	total := 0
	for src := range t.Axis {
		total += t.At(step, src, dst)
	}
	return total
}

// Edge is one non-zero tensor cell.
type Edge struct {
	Step   int
	Source int
	Target int
	Count  int
}

// Edges lists the non-zero cells ordered by step, source then target.
func (t Tensor) Edges() []Edge {
	var out []Edge
	for s := range t.counts {
		for src := range t.counts[s] {
			for dst, c := range t.counts[s][src] {
				if c > 0 {
					out = append(out, Edge{Step: s, Source: src, Target: dst, Count: c})
				}
			}
		}
	}
	return out
}
