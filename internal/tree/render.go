package tree

import (
	"iter"

	"github.com/idelchi/mrdu/internal/diskusage"
)

const (
	// DefaultMaxDepth is the default number of levels shown below the root.
	DefaultMaxDepth = 2
	// DefaultMinPercent is the default share a node must exceed to be shown.
	DefaultMinPercent = 0.01
)

// Config controls which nodes are rendered.
type Config struct {
	// MaxDepth is the deepest level rendered; 0 renders the root only.
	MaxDepth int
	// MinPercent is the share of its parent a node must strictly exceed.
	MinPercent float64
}

// DefaultConfig returns the default rendering configuration.
func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth, MinPercent: DefaultMinPercent}
}

// Percent returns size as a percentage of parent, or 0 when parent is empty.
func Percent(size, parent uint64) float64 {
	if parent == 0 {
		return 0
	}

	return 100 * float64(size) / float64(parent)
}

// Render returns the displayed nodes of root in pre-order.
// The sequence is lazy: stopping the iteration stops the walk.
func Render(root *diskusage.Item, cfg Config) iter.Seq2[*diskusage.Item, DisplayInfo] {
	return func(yield func(*diskusage.Item, DisplayInfo) bool) {
		walk(root, Root(), cfg, yield)
	}
}

// visible is a child that passed the threshold, with its share.
type visible struct {
	item    *diskusage.Item
	percent float64
}

func walk(item *diskusage.Item, info DisplayInfo, cfg Config, yield func(*diskusage.Item, DisplayInfo) bool) bool {
	if !yield(item, info) {
		return false
	}

	if info.Level >= cfg.MaxDepth {
		return true
	}

	// Children are already sorted by size; filtering keeps that order.
	shown := make([]visible, 0, len(item.Children))

	for _, child := range item.Children {
		percent := Percent(child.DiskSize, item.DiskSize)
		if percent > cfg.MinPercent {
			shown = append(shown, visible{item: child, percent: percent})
		}
	}

	for i, child := range shown {
		if !walk(child.item, info.Child(child.percent, i == len(shown)-1), cfg, yield) {
			return false
		}
	}

	return true
}
