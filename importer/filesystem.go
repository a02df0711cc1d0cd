package importer

import (
	"os"
	"path/filepath"
)

// FileSystem is the minimal filesystem contract the import resolver
// needs. It exists so compilation can run against an in-memory source
// set (as used by the test suite and by embedded-asset callers)
// without touching disk.
type FileSystem interface {
	// ReadFile returns the full contents of path.
	ReadFile(path string) ([]byte, error)
	// Stat reports whether path exists and, if so, whether it is a
	// directory.
	Stat(path string) (exists bool, isDir bool)
	// Abs returns a best-effort canonical form of path, used as the
	// cache and cycle-detection key. Implementations that cannot
	// canonicalize may return the input unchanged with a nil error.
	Abs(path string) (string, error)
}

// DiskFileSystem implements FileSystem directly against the host
// filesystem via the os package.
type DiskFileSystem struct{}

// NewDiskFileSystem returns the default, disk-backed FileSystem.
func NewDiskFileSystem() DiskFileSystem {
	return DiskFileSystem{}
}

func (DiskFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (DiskFileSystem) Stat(path string) (bool, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}

func (DiskFileSystem) Abs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}
	return filepath.Clean(abs), nil
}
