// Package glob wraps github.com/gobwas/glob for matching output lines and
// file names against shell-style patterns.
package glob

import (
	"strings"

	"github.com/gobwas/glob"
)

type Glob interface {
	Match(name string) bool
	Pattern() string
}

type globber struct {
	pattern string
	glob    glob.Glob
}

func MustCompile(pattern string, separators ...rune) Glob {
	g := glob.MustCompile(pattern, separators...)

	return &globber{pattern: pattern, glob: g}
}

func Compile(pattern string, separators ...rune) (Glob, error) {
	g, err := glob.Compile(pattern, separators...)
	if err != nil {
		return nil, err
	}

	return &globber{pattern: pattern, glob: g}, nil
}

// CompilePrefix compiles the pattern like Compile. A pattern without any
// wildcard is treated as a literal prefix, i.e. "Progress" matches every
// name that starts with "Progress".
func CompilePrefix(pattern string) (Glob, error) {
	if !IsPattern(pattern) {
		pattern = glob.QuoteMeta(pattern) + "*"
	}

	return Compile(pattern)
}

func (g *globber) Match(name string) bool {
	return g.glob.Match(name)
}

func (g *globber) Pattern() string {
	return g.pattern
}

// IsPattern returns whether the string contains any glob meta character.
func IsPattern(pattern string) bool {
	index := strings.IndexAny(pattern, "*?[{")
	return index != -1
}
