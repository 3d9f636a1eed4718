package metadata

import (
	"fmt"
	"io/fs"
	"os"
)

// Kind distinguishes directories from everything else.
type Kind int

const (
	// KindFile is any non-directory entry, including symlinks and devices.
	KindFile Kind = iota
	// KindDirectory is a directory.
	KindDirectory
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}

	return "file"
}

// FileInfo is the classification of a single path.
type FileInfo struct {
	// Kind tells whether the path is a directory.
	Kind Kind
	// Size is the byte count of a file. It is always zero for directories.
	Size uint64
	// VolumeID identifies the device or volume holding the entry.
	VolumeID uint64
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Kind == KindDirectory
}

// Provider classifies paths and lists directories.
//
// When apparent is true, Size is the space actually allocated on disk
// (allocated blocks, or the compressed footprint where the filesystem
// compresses transparently). Otherwise it is the logical length.
//
// ReadDir returns nil entries when the directory cannot be opened. A listing
// that fails part way returns the entries read so far together with the error.
type Provider interface {
	Classify(path string, apparent bool) (FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

// OS is the Provider backed by the host operating system.
type OS struct{}

// Classify queries the operating system for path without following symlinks.
func (OS) Classify(path string, apparent bool) (FileInfo, error) {
	info, err := classify(path, apparent)
	if err != nil {
		return FileInfo{}, fmt.Errorf("classifying %q: %w", path, err)
	}

	return info, nil
}

// ReadDir lists the entries of path in directory order.
func (OS) ReadDir(path string) ([]fs.DirEntry, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", path, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if entries == nil {
		entries = []fs.DirEntry{}
	}

	if err != nil {
		return entries, fmt.Errorf("listing %q: %w", path, err)
	}

	return entries, nil
}
