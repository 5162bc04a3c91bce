package fs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cloudworx/setup/log"
)

// MemConfig is the config required to create a new memory filesystem.
type MemConfig struct {
	// Base is the directory relative paths are resolved against. Defaults to "/".
	Base string

	// For logging, optional
	Logger log.Logger
}

type memFileInfo struct {
	name    string
	size    int64
	dir     bool
	mode    os.FileMode
	lastMod time.Time
}

func (f *memFileInfo) Name() string {
	return f.name
}

func (f *memFileInfo) Size() int64 {
	return f.size
}

func (f *memFileInfo) Mode() os.FileMode {
	if f.dir {
		return os.ModeDir | f.mode
	}

	return f.mode
}

func (f *memFileInfo) ModTime() time.Time {
	return f.lastMod
}

func (f *memFileInfo) IsDir() bool {
	return f.dir
}

type memFile struct {
	data    *bytes.Buffer
	mode    os.FileMode
	lastMod time.Time
}

type memFilesystem struct {
	base   string
	logger log.Logger

	files map[string]*memFile
	dirs  map[string]struct{}
	lock  sync.RWMutex
}

// NewMemFilesystem creates a new filesystem in memory that implements
// the Filesystem interface.
func NewMemFilesystem(config MemConfig) (Filesystem, error) {
	fs := &memFilesystem{
		base:   "/",
		logger: config.Logger,
		files:  map[string]*memFile{},
		dirs:   map[string]struct{}{"/": {}},
	}

	if len(config.Base) != 0 {
		fs.base = fs.cleanPath(config.Base)
	}

	if fs.logger == nil {
		fs.logger = log.New("")
	}

	fs.logger = fs.logger.WithField("type", "mem")

	fs.addDir(fs.base)

	return fs, nil
}

func (fs *memFilesystem) Base() string {
	return fs.base
}

func (fs *memFilesystem) Type() string {
	return "mem"
}

func (fs *memFilesystem) ReadFile(path string) ([]byte, error) {
	path = fs.resolve(path)

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	file, ok := fs.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: ErrNotExist}
	}

	return bytes.Clone(file.data.Bytes()), nil
}

func (fs *memFilesystem) Stat(path string) (FileInfo, error) {
	path = fs.resolve(path)

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if file, ok := fs.files[path]; ok {
		return &memFileInfo{
			name:    path,
			size:    int64(file.data.Len()),
			mode:    file.mode,
			lastMod: file.lastMod,
		}, nil
	}

	if _, ok := fs.dirs[path]; ok {
		return &memFileInfo{
			name: path,
			dir:  true,
			mode: 0755,
		}, nil
	}

	return nil, &os.PathError{Op: "stat", Path: path, Err: ErrNotExist}
}

func (fs *memFilesystem) WriteFile(path string, data []byte, perm os.FileMode) (int64, bool, error) {
	path = fs.resolve(path)

	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, ok := fs.dirs[path]; ok {
		return -1, false, fmt.Errorf("creating file failed: %s is a directory", path)
	}

	_, replace := fs.files[path]

	fs.files[path] = &memFile{
		data:    bytes.NewBuffer(bytes.Clone(data)),
		mode:    perm,
		lastMod: time.Now(),
	}

	fs.addDir(filepath.Dir(path))

	fs.logger.Debug().WithFields(log.Fields{
		"path": path,
		"size": len(data),
		"new":  !replace,
	}).Log("Wrote file")

	return int64(len(data)), !replace, nil
}

func (fs *memFilesystem) MkdirAll(path string, perm os.FileMode) error {
	path = fs.resolve(path)

	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, ok := fs.files[path]; ok {
		return &os.PathError{Op: "mkdir", Path: path, Err: fmt.Errorf("not a directory")}
	}

	fs.addDir(path)

	return nil
}

// LookPath searches the directories of the PATH environment variable for a
// regular file named file inside the memory filesystem.
func (fs *memFilesystem) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		file = fs.resolve(file)
		info, err := fs.Stat(file)
		if err == nil && !info.IsDir() {
			return file, nil
		}

		return "", &os.PathError{Op: "lookpath", Path: file, Err: ErrNotExist}
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}

		path := fs.resolve(filepath.Join(dir, file))
		if info, err := fs.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", &os.PathError{Op: "lookpath", Path: file, Err: ErrNotExist}
}

// addDir registers the directory and all its parents. The lock must be held.
func (fs *memFilesystem) addDir(path string) {
	for {
		fs.dirs[path] = struct{}{}

		parent := filepath.Dir(path)
		if parent == path {
			break
		}

		path = parent
	}
}

func (fs *memFilesystem) resolve(path string) string {
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "/") {
		path = filepath.Join(fs.base, path)
	}

	return fs.cleanPath(path)
}

func (fs *memFilesystem) cleanPath(path string) string {
	path = filepath.ToSlash(path)

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return filepath.ToSlash(filepath.Clean(path))
}
