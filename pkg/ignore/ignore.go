// Package ignore implements gitignore-style pattern matching for filtering file
// paths and the exception-glob filter used by rules.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-project ignore file read next to modlint.toml.
const FileName = ".modlintignore"

type pattern struct {
	raw     string
	negated bool
	dirOnly bool
	glob    string
}

// Matcher evaluates file paths against a set of gitignore-style patterns.
type Matcher struct {
	patterns []pattern
}

// Load reads patterns from a file, one per line.
func Load(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// ParsePatterns builds a Matcher from raw pattern lines.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := pattern{raw: line}

		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}

		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}

		p.glob = strings.TrimPrefix(line, "/")
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Merge concatenates the patterns of matchers in order. Later patterns take
// precedence, so a negation in a later matcher can re-include a path.
func Merge(matchers ...*Matcher) *Matcher {
	out := &Matcher{}
	for _, m := range matchers {
		if m == nil {
			continue
		}
		out.patterns = append(out.patterns, m.patterns...)
	}
	return out
}

// Len returns the number of active patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Match returns true if the given path should be ignored.
// The path should be slash-separated and relative to the project root.
// isDir indicates whether the path refers to a directory.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	path = filepath.ToSlash(path)
	ignored := false

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matchPattern(p.glob, path) {
			ignored = !p.negated
		}
	}
	return ignored
}

// matchPattern checks whether a gitignore glob matches the given path.
// Patterns without a slash match against any single path component.
// Patterns with a slash match against the full path.
func matchPattern(glob, path string) bool {
	if strings.Contains(glob, "/") {
		matched, _ := doublestar.Match(glob, path)
		return matched
	}

	for _, part := range strings.Split(path, "/") {
		if matched, _ := doublestar.Match(glob, part); matched {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first malformed glob in globs.
func ValidatePatterns(globs []string) error {
	for _, glob := range globs {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("exception pattern %q: %w", glob, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// MatchAny reports whether path matches any of globs. Paths are compared in
// slash form; a glob that is not rooted is also tried against the path with
// its leading slash removed so "**/scripts/*.js" matches absolute paths.
func MatchAny(path string, globs []string) (bool, error) {
	path = filepath.ToSlash(path)
	trimmed := strings.TrimPrefix(path, "/")

	for _, glob := range globs {
		if !doublestar.ValidatePattern(glob) {
			return false, fmt.Errorf("exception pattern %q: %w", glob, doublestar.ErrBadPattern)
		}
		matched, err := doublestar.Match(glob, path)
		if err != nil {
			return false, fmt.Errorf("exception pattern %q: %w", glob, err)
		}
		if !matched && !strings.HasPrefix(glob, "/") && trimmed != path {
			matched, err = doublestar.Match(glob, trimmed)
			if err != nil {
				return false, fmt.Errorf("exception pattern %q: %w", glob, err)
			}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
