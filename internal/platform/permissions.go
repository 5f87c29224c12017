package platform

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermSecure os.FileMode = 0600
)

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// EnsureDir creates path and any missing parents. An existing directory is
// left untouched.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirPermNormal)
}

// Exists reports whether anything exists at path. Stat errors other than
// "not found" count as existing, since something is there.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
