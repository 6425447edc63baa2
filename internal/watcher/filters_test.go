package watcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobFilter(t *testing.T) {
	root := t.TempDir()

	filter, err := GlobFilter(root, []string{"**/*.css", "docs/*.md"})
	require.NoError(t, err)

	assert.True(t, filter(filepath.Join(root, "a.css")))
	assert.True(t, filter(filepath.Join(root, "css", "deep", "b.css")))
	assert.True(t, filter(filepath.Join(root, "docs", "guide.md")))
	assert.False(t, filter(filepath.Join(root, "docs", "sub", "guide.md")))
	assert.False(t, filter(filepath.Join(root, "a.js")))

	_, err = GlobFilter(root, []string{"[unclosed"})
	assert.Error(t, err)
}

func TestExcludeFilter(t *testing.T) {
	root := t.TempDir()

	filter, err := ExcludeFilter(root, []string{"node_modules/**"})
	require.NoError(t, err)
	assert.False(t, filter(filepath.Join(root, "node_modules", "x", "a.css")))
	assert.True(t, filter(filepath.Join(root, "css", "a.css")))

	all, err := ExcludeFilter(root, nil)
	require.NoError(t, err)
	assert.True(t, all(filepath.Join(root, "anything")))
}

func TestPathFilter(t *testing.T) {
	root := t.TempDir()
	overview := filepath.Join(root, "styleguide.md")

	filter := PathFilter(overview, "")
	assert.True(t, filter(overview))
	assert.True(t, filter(filepath.Join(root, ".", "styleguide.md")))
	assert.False(t, filter(filepath.Join(root, "other.md")))
	assert.False(t, filter(""))
}

func TestAnyFilter(t *testing.T) {
	isA := func(p string) bool { return p == "a" }
	isB := func(p string) bool { return p == "b" }

	filter := AnyFilter(isA, isB)
	assert.True(t, filter("a"))
	assert.True(t, filter("b"))
	assert.False(t, filter("c"))
	assert.False(t, AnyFilter()("a"))
}
