//go:build unix

package metadata

import (
	"golang.org/x/sys/unix"
)

// blockSize is the unit of Stat_t.Blocks on every unix, regardless of the
// filesystem block size.
const blockSize = 512

func classify(path string, apparent bool) (FileInfo, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return FileInfo{}, err
	}

	//nolint:unconvert,gosec // Dev is int32 on darwin and uint64 on linux
	volume := uint64(st.Dev)

	if st.Mode&unix.S_IFMT == unix.S_IFDIR {
		return FileInfo{Kind: KindDirectory, VolumeID: volume}, nil
	}

	size := uint64(st.Size) //nolint:gosec // Size is never negative
	if apparent {
		size = uint64(st.Blocks) * blockSize //nolint:gosec // Blocks is never negative
	}

	return FileInfo{Kind: KindFile, Size: size, VolumeID: volume}, nil
}
