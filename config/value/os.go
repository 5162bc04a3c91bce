package value

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// directory, optional

type Dir string

func NewDir(p *string, val string) *Dir {
	*p = val

	return (*Dir)(p)
}

func (u *Dir) Set(val string) error {
	*u = Dir(val)
	return nil
}

func (u *Dir) String() string {
	return string(*u)
}

func (u *Dir) Validate() error {
	val := string(*u)

	if len(strings.TrimSpace(val)) == 0 {
		return nil
	}

	finfo, err := os.Stat(val)
	if err != nil {
		return fmt.Errorf("%s does not exist", val)
	}

	if !finfo.IsDir() {
		return fmt.Errorf("%s is not a directory", val)
	}

	return nil
}

func (u *Dir) IsEmpty() bool {
	return len(string(*u)) == 0
}

// path relative to the project root

type RelativePath string

func NewRelativePath(p *string, val string) *RelativePath {
	*p = val

	return (*RelativePath)(p)
}

func (s *RelativePath) Set(val string) error {
	*s = RelativePath(val)
	return nil
}

func (s *RelativePath) String() string {
	return string(*s)
}

func (s *RelativePath) Validate() error {
	path := string(*s)

	if len(path) == 0 {
		return nil
	}

	if filepath.IsAbs(path) {
		return fmt.Errorf("%s must be relative to the project root", path)
	}

	if path == ".." || strings.HasPrefix(filepath.ToSlash(filepath.Clean(path)), "../") {
		return fmt.Errorf("%s points outside of the project root", path)
	}

	return nil
}

func (s *RelativePath) IsEmpty() bool {
	return len(strings.TrimSpace(string(*s))) == 0
}
