package diskusage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/idelchi/mrdu/internal/metadata"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// logger provides conditional debug output.
type logger struct {
	enabled bool
}

// printf prints debug output to stderr if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// itemName returns the display name of path: its final component, or "." when
// the path has none (".", "..", a filesystem root).
func itemName(path string) string {
	base := filepath.Base(path)

	switch base {
	case ".", "..", string(filepath.Separator):
		return "."
	default:
		return base
	}
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for counters
func startProgressReporter(ctx context.Context, c *counters, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.files.Load(), c.bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// analyzer holds the state shared by all workers of one run.
type analyzer struct {
	provider metadata.Provider
	apparent bool
	volume   uint64
	// workers bounds the metadata and listing calls in flight. A slot is held
	// for one provider call only, never across the recursion.
	workers  *semaphore.Weighted
	counters *counters
	log      logger
}

// Run analyzes opt.Path on the host filesystem.
// See RunWith for details.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Result, error) {
	return RunWith(ctx, metadata.OS{}, opt, progressHook)
}

// RunWith builds the disk usage tree of opt.Path using provider for metadata.
//
// The root must be a directory; its volume bounds the analysis. Failures below
// the root (unreadable entries, directories on other volumes) remove the
// affected entry from the tree and are counted in Result.Skipped.
//
// Progress updates are sent to progressHook if provided. Cancelling ctx stops
// the analysis and makes RunWith return the context error.
func RunWith(
	ctx context.Context,
	provider metadata.Provider,
	opt Options,
	progressHook func(int64, int64),
) (*Result, error) {
	log := logger{enabled: opt.Debug}

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	info, err := provider.Classify(opt.Path, opt.Apparent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnavailable, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrRootNotADirectory, opt.Path)
	}

	if opt.Threads <= 0 {
		opt.Threads = runtime.NumCPU()
	}

	log.printf("[debug]: analyzing %s (volume %d, apparent=%t, threads=%d)\n",
		opt.Path, info.VolumeID, opt.Apparent, opt.Threads)

	a := &analyzer{
		provider: provider,
		apparent: opt.Apparent,
		volume:   info.VolumeID,
		workers:  semaphore.NewWeighted(int64(opt.Threads)),
		counters: &counters{},
		log:      log,
	}

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, a.counters, progressHook, opt.ProgressInterval)

	start := time.Now()

	root, err := a.directory(ctx, opt.Path)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnavailable, err)
	}

	return &Result{
		Path:     opt.Path,
		Root:     root,
		VolumeID: info.VolumeID,
		Files:    a.counters.files.Load(),
		Dirs:     a.counters.dirs.Load(),
		Skipped:  a.counters.skipped.Load(),
		Elapsed:  time.Since(start),
	}, nil
}

// analyze builds the item for a single path below the root.
func (a *analyzer) analyze(ctx context.Context, path string) (*Item, error) {
	if err := a.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	info, err := a.provider.Classify(path, a.apparent)

	a.workers.Release(1)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntryUnreadable, err)
	}

	if !info.IsDir() {
		a.counters.addFile(info.Size)

		return &Item{Name: itemName(path), DiskSize: info.Size}, nil
	}

	if info.VolumeID != a.volume {
		return nil, fmt.Errorf("%w: %q is on volume %d", ErrBoundaryCrossed, path, info.VolumeID)
	}

	return a.directory(ctx, path)
}

// directory lists path and analyzes each of its entries on its own goroutine,
// keeping only the ones that succeed.
func (a *analyzer) directory(ctx context.Context, path string) (*Item, error) {
	entries, err := a.list(ctx, path)
	if entries == nil && err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrEntryUnreadable, err)
	}

	if err != nil {
		// Partial listing: keep what was read.
		a.counters.skipped.Add(1)
		a.log.printf("[debug]: incomplete listing of %s: %v\n", path, err)
	}

	items := make([]*Item, len(entries))

	var group errgroup.Group

	for i, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		child := filepath.Join(path, entry.Name())

		group.Go(func() error {
			items[i] = a.entry(ctx, child)

			return ctx.Err()
		})
	}

	if waitErr := group.Wait(); waitErr != nil {
		return nil, waitErr
	}

	children := make([]*Item, 0, len(items))

	var total uint64

	for _, item := range items {
		if item == nil {
			continue
		}

		children = append(children, item)
		total += item.DiskSize
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].DiskSize > children[j].DiskSize
	})

	a.counters.dirs.Add(1)

	return &Item{Name: itemName(path), DiskSize: total, Children: children}, nil
}

// entry analyzes path and absorbs its failure, returning nil for a dropped entry.
// Entries abandoned because ctx is done are not counted as skipped.
func (a *analyzer) entry(ctx context.Context, path string) *Item {
	item, err := a.analyze(ctx, path)
	if err == nil {
		return item
	}

	if ctx.Err() != nil {
		return nil
	}

	a.counters.skipped.Add(1)

	if errors.Is(err, ErrBoundaryCrossed) {
		a.log.printf("[debug]: skipping %s: %v\n", path, err)
	} else {
		a.log.printf("[debug]: error accessing path %s: %v\n", path, err)
	}

	return nil
}

// list reads the entries of path through the provider while holding a worker slot.
func (a *analyzer) list(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := a.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer a.workers.Release(1)

	return a.provider.ReadDir(path)
}
