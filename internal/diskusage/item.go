package diskusage

import (
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrRootUnavailable is returned when the root path cannot be classified or listed.
	ErrRootUnavailable = errors.New("root path unavailable")
	// ErrRootNotADirectory is returned when the root path is not a directory.
	ErrRootNotADirectory = errors.New("root path is not a directory")
	// ErrBoundaryCrossed marks a directory on a different volume than the root.
	ErrBoundaryCrossed = errors.New("filesystem boundary crossed")
	// ErrEntryUnreadable marks an entry whose metadata or listing could not be read.
	ErrEntryUnreadable = errors.New("entry unreadable")
)

// Item is a node of the analyzed tree.
type Item struct {
	// Name is the final path component, or "." for an unnamed root.
	Name string `json:"name"`
	// DiskSize is the size of a file, or the sum of the children of a directory.
	DiskSize uint64 `json:"disk_size"`
	// Children holds the entries of a directory, largest first. It is nil for files.
	Children []*Item `json:"children"`
}

// IsDir reports whether the item was built from a directory.
func (i *Item) IsDir() bool {
	return i.Children != nil
}

// Options configures the analysis.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Apparent selects allocated size on disk instead of logical length.
	Apparent bool
	// Threads bounds the number of concurrently running workers (0 = number of CPUs).
	Threads int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// Result is the outcome of a successful analysis.
type Result struct {
	// Path is the cleaned root path that was analyzed.
	Path string `json:"path"`
	// Root is the aggregated tree.
	Root *Item `json:"root"`
	// VolumeID identifies the volume the analysis was confined to.
	VolumeID uint64 `json:"volume_id"`
	// Files is the number of non-directory entries counted.
	Files int64 `json:"files"`
	// Dirs is the number of directories counted, the root included.
	Dirs int64 `json:"dirs"`
	// Skipped is the number of entries dropped because of errors or volume boundaries.
	Skipped int64 `json:"skipped"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
}

// counters tracks progress of a running analysis. It is updated from many
// goroutines and read by the progress reporter.
type counters struct {
	files   atomic.Int64
	dirs    atomic.Int64
	bytes   atomic.Int64
	skipped atomic.Int64
}

func (c *counters) addFile(size uint64) {
	c.files.Add(1)
	c.bytes.Add(int64(size)) //nolint:gosec // File sizes fit in int64
}
