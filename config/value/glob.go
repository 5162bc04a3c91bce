package value

import (
	"fmt"

	"github.com/cloudworx/setup/glob"
)

// glob pattern, a literal is treated as prefix

type Glob string

func NewGlob(p *string, val string) *Glob {
	*p = val

	return (*Glob)(p)
}

func (g *Glob) Set(val string) error {
	*g = Glob(val)
	return nil
}

func (g *Glob) String() string {
	return string(*g)
}

func (g *Glob) Validate() error {
	if _, err := glob.CompilePrefix(string(*g)); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	return nil
}

func (g *Glob) IsEmpty() bool {
	return len(string(*g)) == 0
}
