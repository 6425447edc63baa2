package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/conneroisu/frontnote/internal/errors"
)

const globMeta = "*?[{"

// Matcher is a compiled slash-separated glob. "*" stays inside one path
// segment and "**" crosses segments. A "**/" segment also matches zero
// directories, so "**/*.css" matches "a.css" and "assets/**/*" matches
// "assets/site.css".
type Matcher struct {
	pattern  string
	variants []glob.Glob
}

// CompileGlob compiles pattern, returning an invalid pattern error when
// the syntax is wrong.
func CompileGlob(pattern string) (*Matcher, error) {
	pattern = filepath.ToSlash(pattern)
	m := &Matcher{pattern: pattern}

	for _, p := range zeroDirVariants(pattern) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.ErrInvalidPattern(pattern, err)
		}
		m.variants = append(m.variants, g)
	}
	return m, nil
}

// zeroDirVariants returns pattern followed by every form of it with one
// or more "**/" segments dropped.
func zeroDirVariants(pattern string) []string {
	segments := strings.Split(pattern, "/")
	variants := []string{""}
	for i, segment := range segments {
		last := i == len(segments)-1
		next := make([]string, 0, len(variants)*2)
		for _, v := range variants {
			if last {
				next = append(next, v+segment)
				continue
			}
			next = append(next, v+segment+"/")
			if segment == "**" {
				next = append(next, v)
			}
		}
		variants = next
	}
	return variants
}

// Match reports whether the slash-separated path matches.
func (m *Matcher) Match(path string) bool {
	for _, g := range m.variants {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string) ([]*Matcher, error) {
	matchers := make([]*Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func matchAny(matchers []*Matcher, path string) bool {
	for _, m := range matchers {
		if m.Match(path) {
			return true
		}
	}
	return false
}

// hasMeta reports whether s contains glob syntax.
func hasMeta(s string) bool {
	return strings.ContainsAny(s, globMeta)
}

// splitPattern separates the literal directory prefix of a pattern from
// its glob part: "src/css/**/*.css" becomes "src/css" and "**/*.css".
func splitPattern(pattern string) (string, string) {
	segments := strings.Split(filepath.ToSlash(pattern), "/")
	for i, segment := range segments {
		if hasMeta(segment) {
			base := strings.Join(segments[:i], "/")
			if base == "" && i > 0 {
				base = "/"
			}
			return base, strings.Join(segments[i:], "/")
		}
	}
	return pattern, ""
}

// Discover expands file patterns relative to root and returns the matching
// regular files, as paths relative to root (paths outside root stay as
// given). Results are deduplicated and keep first-seen order: pattern
// order first, then lexical walk order. A pattern without glob syntax names
// a single file and is kept even when it would be excluded. Exclusions are
// matched against the slash-separated path relative to root.
func Discover(root string, patterns, exclude []string) ([]string, error) {
	if root == "" {
		root = "."
	}

	excluded, err := compileAll(exclude)
	if err != nil {
		return nil, err
	}

	var (
		result = make([]string, 0)
		seen   = make(map[string]struct{})
		walks  = make(map[string][]string)
	)

	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, pattern := range patterns {
		base, rest := splitPattern(pattern)

		if rest == "" {
			path := resolve(root, filepath.FromSlash(base))
			info, err := os.Stat(path)
			if err != nil {
				return nil, errors.ErrFileNotFound(base, err)
			}
			if info.Mode().IsRegular() {
				add(display(root, path))
			}
			continue
		}

		m, err := CompileGlob(rest)
		if err != nil {
			return nil, err
		}

		dir := resolve(root, filepath.FromSlash(base))
		files, ok := walks[dir]
		if !ok {
			files, err = walk(root, dir, excluded)
			if err != nil {
				return nil, err
			}
			walks[dir] = files
		}

		for _, rel := range files {
			if !m.Match(rel) {
				continue
			}
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if matchAny(excluded, rootRelative(root, path)) {
				continue
			}
			add(display(root, path))
		}
	}

	return result, nil
}

// walk lists the regular files under dir as slash paths relative to dir,
// in lexical order. Directories matched by an exclusion are not entered.
func walk(root, dir string, excluded []*Matcher) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}

		if d.IsDir() {
			if path != dir && matchAny(excluded, rootRelative(root, path)+"/") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeReadFailed, fmt.Sprintf("walk %s", dir), err)
	}

	sort.Strings(files)
	return files, nil
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// display returns path relative to root, or unchanged when it lies
// outside root.
func display(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func rootRelative(root, path string) string {
	return filepath.ToSlash(display(root, path))
}
