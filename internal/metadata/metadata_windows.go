//go:build windows

package metadata

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

//nolint:gochecknoglobals // Lazily resolved system call
var procGetCompressedFileSizeW = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetCompressedFileSizeW")

// invalidFileSize is the INVALID_FILE_SIZE sentinel of GetCompressedFileSizeW.
const invalidFileSize = 0xFFFFFFFF

func classify(path string, apparent bool) (FileInfo, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return FileInfo{}, err
	}

	handle, err := windows.CreateFile(
		name,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		return FileInfo{}, err
	}
	defer windows.CloseHandle(handle) //nolint:errcheck // Read-only handle

	var data windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &data); err != nil {
		return FileInfo{}, err
	}

	volume := uint64(data.VolumeSerialNumber)

	if data.FileAttributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0 {
		return FileInfo{Kind: KindDirectory, VolumeID: volume}, nil
	}

	size := uint64(data.FileSizeHigh)<<32 | uint64(data.FileSizeLow)
	if apparent {
		size, err = compressedSize(name)
		if err != nil {
			return FileInfo{}, err
		}
	}

	return FileInfo{Kind: KindFile, Size: size, VolumeID: volume}, nil
}

// compressedSize returns the on-disk footprint of a file, which accounts for
// NTFS compression and sparse regions.
func compressedSize(name *uint16) (uint64, error) {
	var high uint32

	low, _, callErr := procGetCompressedFileSizeW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(&high)),
	)

	// INVALID_FILE_SIZE is also a valid low word, so only a set error counts.
	if uint32(low) == invalidFileSize {
		if errno, ok := callErr.(windows.Errno); ok && errno != 0 {
			return 0, errno
		}
	}

	return uint64(high)<<32 | uint64(uint32(low)), nil
}
