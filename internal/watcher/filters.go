package watcher

import (
	"path/filepath"

	"github.com/conneroisu/frontnote/internal/scanner"
)

// GlobFilter accepts paths that, relative to root, match one of patterns.
// Invalid patterns are reported by the returned error.
func GlobFilter(root string, patterns []string) (FileFilter, error) {
	matchers := make([]*scanner.Matcher, 0, len(patterns))
	for _, pattern := range patterns {
		m, err := scanner.CompileGlob(pattern)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	return func(path string) bool {
		rel := relSlash(root, path)
		for _, m := range matchers {
			if m.Match(rel) {
				return true
			}
		}
		return false
	}, nil
}

// ExcludeFilter rejects paths that, relative to root, match one of
// patterns. Invalid patterns are reported by the returned error.
func ExcludeFilter(root string, patterns []string) (FileFilter, error) {
	if len(patterns) == 0 {
		return func(string) bool { return true }, nil
	}
	match, err := GlobFilter(root, patterns)
	if err != nil {
		return nil, err
	}
	return func(path string) bool { return !match(path) }, nil
}

// PathFilter accepts exactly the given files.
func PathFilter(paths ...string) FileFilter {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		set[absClean(p)] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[absClean(path)]
		return ok
	}
}

// AnyFilter accepts a path when at least one of filters does.
func AnyFilter(filters ...FileFilter) FileFilter {
	return func(path string) bool {
		for _, f := range filters {
			if f(path) {
				return true
			}
		}
		return false
	}
}

func absClean(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

func relSlash(root, path string) string {
	if rel, err := filepath.Rel(absClean(root), absClean(path)); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
