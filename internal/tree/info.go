package tree

// Tree drawing glyphs.
const (
	Spacing  = "──"
	Branch   = "│"
	Leaf     = "├──"
	LastLeaf = "└──"
	blank    = "  "
)

// DisplayInfo is the traversal state of one rendered node.
// Values are never modified once created; Child derives a new one.
type DisplayInfo struct {
	// Percent is the node's share of its immediate parent (100 for the root).
	Percent float64
	// Level is the depth below the root (0 for the root).
	Level int
	// IsLast reports whether the node is the last displayed sibling.
	IsLast bool
	// Prefix is the indentation accumulated from the node's ancestors.
	Prefix string
}

// Root returns the state of the analyzed root.
func Root() DisplayInfo {
	return DisplayInfo{Percent: 100, IsLast: true}
}

// Child derives the state of a displayed child of d.
func (d DisplayInfo) Child(percent float64, isLast bool) DisplayInfo {
	return DisplayInfo{
		Percent: percent,
		Level:   d.Level + 1,
		IsLast:  isLast,
		Prefix:  d.Prefix + d.Continuation() + blank,
	}
}

// Glyph returns the branch drawn in front of the node itself.
func (d DisplayInfo) Glyph() string {
	if d.IsLast {
		return LastLeaf
	}

	return Leaf
}

// Continuation returns what the node contributes to the indentation of its
// descendants: a vertical bar while siblings follow, blank space otherwise.
func (d DisplayInfo) Continuation() string {
	if d.IsLast {
		return blank
	}

	return Branch
}

// Indent returns the full indentation of the node's line, glyph included.
func (d DisplayInfo) Indent() string {
	return d.Prefix + d.Glyph()
}
