package pathway

// Kind tags a position on the tensor axis.
type Kind int

const (
	// Category is a real event category.
	Category Kind = iota
	// NeverBefore is the source of a person's first engagement.
	NeverBefore
	// NeverAfter is the destination of a person's last engagement.
	NeverAfter
)

const (
	neverBeforeLabel = "Never Engaged Before"
	neverAfterLabel  = "Never Engaged Again"
)

// Node is one entry of the tensor axis.
type Node struct {
	Kind Kind
	Name string // set for Category
}

// Label is the display name of the node.
func (n Node) Label() string {
	switch n.Kind {
	case NeverBefore:
		return neverBeforeLabel
	case NeverAfter:
		return neverAfterLabel
	default:
		return n.Name
	}
}

// Axis lays out NeverBefore, the categories in importance order, then NeverAfter.
func Axis(categories []string) []Node {
	out := make([]Node, 0, len(categories)+2)
	out = append(out, Node{Kind: NeverBefore})
	for _, c := range categories {
		out = append(out, Node{Kind: Category, Name: c})
	}
	return append(out, Node{Kind: NeverAfter})
}
