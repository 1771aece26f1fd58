package pathway

import (
	"sort"
	"strconv"
)

// edgeX keeps nodes off the exact 0 and 1 positions, which renderers treat as unset.
const edgeX = 1e-9

// Options controls which edges are drawn.
type Options struct {
	// MaxColumns drops edges leaving steps at or beyond it.
	MaxColumns int
	// MinWeight drops edges with a smaller count.
	MinWeight int
	// ShowNeverAfter draws edges into the NeverAfter node.
	ShowNeverAfter bool
}

// SankeyNode is a node at a given step.
type SankeyNode struct {
	Node  Node
	Step  int
	Label string
	// Total counts every outgoing edge, drawn or not. NeverAfter counts incoming edges.
	Total int
	X     float64
	// Index is the node's position on the tensor axis, used for coloring.
	Index int
}

// Link connects two nodes of a Sankey by position in Nodes.
type Link struct {
	Source int
	Target int
	Count  int
	// Share is Count over the source node total.
	Share float64
}

// Sankey is the drawable flow diagram.
type Sankey struct {
	Nodes []SankeyNode
	Links []Link
}

type nodeKey struct {
	step  int
	index int
}

// Sankey flattens the tensor into drawable nodes and links.
func (t Tensor) Sankey(opts Options) Sankey {
	after := len(t.Axis) - 1

	totals := map[nodeKey]int{}
	for s := 0; s < len(t.counts) && s <= opts.MaxColumns; s++ {
		for src := range t.Axis {
			if out := t.Outgoing(s, src); out > 0 {
				totals[nodeKey{s, src}] += out
			}
		}
		if in := t.Incoming(s, after); in > 0 {
			totals[nodeKey{s + 1, after}] += in
		}
	}

	var kept []Edge
	used := map[nodeKey]struct{}{}
	for _, e := range t.Edges() {
		if e.Step >= opts.MaxColumns || e.Count < opts.MinWeight {
			continue
		}
		if e.Target == after && !opts.ShowNeverAfter {
			continue
		}
		kept = append(kept, e)
		used[nodeKey{e.Step, e.Source}] = struct{}{}
		used[nodeKey{e.Step + 1, e.Target}] = struct{}{}
	}

	keys := make([]nodeKey, 0, len(used))
	for k := range used {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].step != keys[j].step {
			return keys[i].step < keys[j].step
		}
		return keys[i].index < keys[j].index
	})

	var out Sankey
	if len(keys) == 0 {
		return out
	}
	first, last := keys[0].step, keys[len(keys)-1].step
	pos := make(map[nodeKey]int, len(keys))
	for i, k := range keys {
		pos[k] = i
		n := t.Axis[k.index]
		out.Nodes = append(out.Nodes, SankeyNode{
			Node:  n,
			Step:  k.step,
			Label: n.Label() + " " + strconv.Itoa(k.step),
			Total: totals[k],
			X:     position(k.step, first, last),
			Index: k.index,
		})
	}
	for _, e := range kept {
		src := nodeKey{e.Step, e.Source}
		l := Link{Source: pos[src], Target: pos[nodeKey{e.Step + 1, e.Target}], Count: e.Count}
		if total := totals[src]; total > 0 {
			l.Share = float64(e.Count) / float64(total)
		}
		out.Links = append(out.Links, l)
	}
	return out
}

func position(step, first, last int) float64 {
	if last == first {
		return 0.5
	}
	x := float64(step-first) / float64(last-first)
	switch x {
	case 0:
		return edgeX
	case 1:
		return 1 - edgeX
	}
	return x
}
