package scanner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/testutils"
)

func discoverTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range []string{
		"a.css",
		"src/b.css",
		"src/deep/c.css",
		"src/deep/notes.md",
		"node_modules/lib/x.css",
		"vendor/v.css",
	} {
		testutils.WriteFile(t, dir, filepath.FromSlash(rel), "/* */")
	}
	return dir
}

func slashAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}

func TestDiscover(t *testing.T) {
	dir := discoverTree(t)

	tests := []struct {
		name     string
		patterns []string
		exclude  []string
		expected []string
	}{
		{
			name:     "double star matches root files",
			patterns: []string{"**/*.css"},
			exclude:  []string{"node_modules/**"},
			expected: []string{"a.css", "src/b.css", "src/deep/c.css", "vendor/v.css"},
		},
		{
			name:     "single star stays in one directory",
			patterns: []string{"src/*.css"},
			expected: []string{"src/b.css"},
		},
		{
			name:     "literal prefix limits the walk",
			patterns: []string{"src/**/*.css"},
			expected: []string{"src/b.css", "src/deep/c.css"},
		},
		{
			name:     "pattern order then walk order without duplicates",
			patterns: []string{"vendor/*.css", "**/*.css"},
			exclude:  []string{"node_modules/**", "src/deep/**"},
			expected: []string{"vendor/v.css", "a.css", "src/b.css"},
		},
		{
			name:     "explicit file path",
			patterns: []string{"src/deep/notes.md"},
			expected: []string{"src/deep/notes.md"},
		},
		{
			name:     "explicit file ignores exclusions",
			patterns: []string{"node_modules/lib/x.css"},
			exclude:  []string{"node_modules/**"},
			expected: []string{"node_modules/lib/x.css"},
		},
		{
			name:     "brace alternatives",
			patterns: []string{"**/*.{md,css}"},
			exclude:  []string{"node_modules/**", "vendor/**"},
			expected: []string{"a.css", "src/b.css", "src/deep/c.css", "src/deep/notes.md"},
		},
		{
			name:     "missing directory yields nothing",
			patterns: []string{"missing/**/*.css"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Discover(dir, tt.patterns, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slashAll(files))
		})
	}
}

func TestDiscoverErrors(t *testing.T) {
	dir := discoverTree(t)

	_, err := Discover(dir, []string{"missing.css"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))

	_, err = Discover(dir, []string{"**/*.css"}, []string{"[oops"})
	require.Error(t, err)

	var fe *errors.FrontNoteError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, errors.ErrCodeInvalidPattern, fe.Code)
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern string
		base    string
		rest    string
	}{
		{"**/*.css", "", "**/*.css"},
		{"src/css/**/*.css", "src/css", "**/*.css"},
		{"src/a.css", "src/a.css", ""},
		{"/abs/*.css", "/abs", "*.css"},
	}

	for _, tt := range tests {
		base, rest := splitPattern(tt.pattern)
		assert.Equal(t, tt.base, base, tt.pattern)
		assert.Equal(t, tt.rest, rest, tt.pattern)
	}
}

func TestCompileGlobMatch(t *testing.T) {
	m, err := CompileGlob("**/*.css")
	require.NoError(t, err)

	assert.True(t, m.Match("a.css"))
	assert.True(t, m.Match("x/y/a.css"))
	assert.False(t, m.Match("a.scss"))

	m, err = CompileGlob("*.css")
	require.NoError(t, err)
	assert.True(t, m.Match("a.css"))
	assert.False(t, m.Match("x/a.css"))

	m, err = CompileGlob("assets/**/*")
	require.NoError(t, err)
	assert.True(t, m.Match("assets/site.css"))
	assert.True(t, m.Match("assets/img/logo.svg"))
	assert.False(t, m.Match("other/site.css"))
}

func TestZeroDirVariants(t *testing.T) {
	assert.Equal(t, []string{"*.css"}, zeroDirVariants("*.css"))
	assert.Equal(t, []string{"**/*.css", "*.css"}, zeroDirVariants("**/*.css"))
	assert.Equal(t, []string{"a/**/b/**/*", "a/**/b/*", "a/b/**/*", "a/b/*"}, zeroDirVariants("a/**/b/**/*"))
	assert.Equal(t, []string{"node_modules/**"}, zeroDirVariants("node_modules/**"))
}
