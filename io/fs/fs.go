// Package fs provides a simple interface for the filesystem the setup checks
// operate on. All paths are relative to the base of the filesystem.
package fs

import (
	"io/fs"
	"os"
	"time"
)

var ErrNotExist = os.ErrNotExist

// FileInfo describes a file and is returned by Stat.
type FileInfo interface {
	// Name returns the full name of the file.
	Name() string

	// Size reports the size of the file in bytes.
	Size() int64

	// Mode returns the file mode.
	Mode() fs.FileMode

	// ModTime returns the time of last modification.
	ModTime() time.Time

	// IsDir returns whether the file represents a directory.
	IsDir() bool
}

type ReadFilesystem interface {
	// ReadFile returns the content of the file at the given path.
	ReadFile(path string) ([]byte, error)

	// Stat returns info about the file or directory at path. If it doesn't
	// exist, an error wrapping ErrNotExist will be returned.
	Stat(path string) (FileInfo, error)

	// LookPath searches for an executable named file in the directories named
	// by the PATH environment variable.
	LookPath(file string) (string, error)
}

type WriteFilesystem interface {
	// WriteFile writes data to the file at path, replacing any existing file.
	// Missing parent directories are created. Returns the number of bytes
	// written and whether the file is new.
	WriteFile(path string, data []byte, perm os.FileMode) (int64, bool, error)

	// MkdirAll creates a directory named path, along with any necessary parents.
	// If path is already a directory, MkdirAll does nothing and returns nil.
	MkdirAll(path string, perm os.FileMode) error
}

// Filesystem is an interface that provides access to a filesystem.
type Filesystem interface {
	ReadFilesystem
	WriteFilesystem

	// Base returns the directory all relative paths are resolved against.
	Base() string

	// Type returns the type of the filesystem, e.g. disk or mem.
	Type() string
}

// Exists returns whether a file or directory exists at path.
func Exists(fs ReadFilesystem, path string) bool {
	_, err := fs.Stat(path)

	return err == nil
}

// NonEmptyFile returns whether path is a regular file with at least one byte.
func NonEmptyFile(fs ReadFilesystem, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir() && info.Size() > 0
}
