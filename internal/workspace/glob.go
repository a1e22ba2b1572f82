// ABOUTME: Glob patterns over slash-separated relative paths
// ABOUTME: Thin wrapper over doublestar for *, **, ?, classes and {a,b} alternation

package workspace

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob is a validated path pattern.
type Glob struct {
	pattern string
}

// CompileGlob validates pattern. A "*" matches within one path segment,
// "**" matches across segments (including none), "?" matches one
// non-separator character, and "{a,b}" matches any listed alternative.
func CompileGlob(pattern string) (*Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("glob %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return &Glob{pattern: pattern}, nil
}

// MustCompileGlob is CompileGlob for patterns known to be valid.
func MustCompileGlob(pattern string) *Glob {
	g, err := CompileGlob(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Match reports whether the slash-separated relative path matches.
func (g *Glob) Match(path string) bool {
	return doublestar.MatchUnvalidated(g.pattern, path)
}

func (g *Glob) String() string { return g.pattern }

// anyMatch reports whether any glob matches path.
func anyMatch(globs []*Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
