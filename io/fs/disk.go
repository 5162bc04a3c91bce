package fs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cloudworx/setup/log"
)

// DiskConfig is the config required to create a new disk filesystem.
type DiskConfig struct {
	// Dir is the base directory. Relative paths are resolved against it.
	Dir string

	// For logging, optional
	Logger log.Logger
}

type diskFileInfo struct {
	name  string
	finfo os.FileInfo
}

func (fi *diskFileInfo) Name() string {
	return fi.name
}

func (fi *diskFileInfo) Size() int64 {
	return fi.finfo.Size()
}

func (fi *diskFileInfo) Mode() os.FileMode {
	return fi.finfo.Mode()
}

func (fi *diskFileInfo) ModTime() time.Time {
	return fi.finfo.ModTime()
}

func (fi *diskFileInfo) IsDir() bool {
	return fi.finfo.IsDir()
}

type diskFilesystem struct {
	dir    string
	logger log.Logger
}

// NewDiskFilesystem returns a new filesystem that is backed by the directory
// given in the config.
func NewDiskFilesystem(config DiskConfig) (Filesystem, error) {
	fs := &diskFilesystem{
		logger: config.Logger,
	}

	if fs.logger == nil {
		fs.logger = log.New("")
	}

	if len(config.Dir) == 0 {
		return nil, fmt.Errorf("invalid base path provided")
	}

	dir, err := filepath.Abs(config.Dir)
	if err != nil {
		return nil, err
	}

	finfo, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("the provided base path '%s' doesn't exist", dir)
	}

	if !finfo.IsDir() {
		return nil, fmt.Errorf("the provided base path '%s' must be a directory", dir)
	}

	fs.dir = dir
	fs.logger = fs.logger.WithFields(log.Fields{
		"type": "disk",
		"base": dir,
	})

	return fs, nil
}

func (fs *diskFilesystem) Base() string {
	return fs.dir
}

func (fs *diskFilesystem) Type() string {
	return "disk"
}

func (fs *diskFilesystem) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(fs.dir, path)
}

func (fs *diskFilesystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(fs.resolve(path))
}

func (fs *diskFilesystem) Stat(path string) (FileInfo, error) {
	finfo, err := os.Stat(fs.resolve(path))
	if err != nil {
		return nil, err
	}

	return &diskFileInfo{
		name:  path,
		finfo: finfo,
	}, nil
}

func (fs *diskFilesystem) WriteFile(path string, data []byte, perm os.FileMode) (int64, bool, error) {
	path = fs.resolve(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return -1, false, fmt.Errorf("creating file failed: %w", err)
	}

	_, err := os.Stat(path)
	isNew := err != nil

	if err := os.WriteFile(path, data, perm); err != nil {
		return -1, false, fmt.Errorf("writing file failed: %w", err)
	}

	fs.logger.Debug().WithFields(log.Fields{
		"path": path,
		"size": len(data),
		"new":  isNew,
	}).Log("Wrote file")

	return int64(len(data)), isNew, nil
}

func (fs *diskFilesystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(fs.resolve(path), perm)
}

func (fs *diskFilesystem) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
