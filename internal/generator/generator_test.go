package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frontnote/internal/config"
	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/logging"
	"github.com/conneroisu/frontnote/internal/scanner"
	"github.com/conneroisu/frontnote/internal/testutils"
	"github.com/conneroisu/frontnote/internal/types"
)

func scanProject(t *testing.T, dir string) []*types.FileEntry {
	t.Helper()
	s := scanner.New(nil, scanner.WithRoot(dir))
	result, err := s.ScanFiles(context.Background(), []string{
		filepath.Join("css", "button.css"),
		filepath.Join("css", "plain.css"),
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	return result.Entries
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateDefaultTemplate(t *testing.T) {
	dir := testutils.CreateTempProject(t)
	cfg := testutils.CreateTestConfig(dir)
	entries := scanProject(t, dir)

	var out bytes.Buffer
	g := New(cfg, WithConsole(logging.NewConsole(&out, true)), WithVersion("1.2.3"))

	result, err := g.Generate(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Out, "index.html"), result.Index)
	assert.Equal(t, []string{filepath.Join(cfg.Out, "button.html")}, result.Pages)
	assert.Contains(t, result.Assets, filepath.Join(cfg.Out, "assets", "frontnote.css"))
	assert.FileExists(t, filepath.Join(cfg.Out, "assets", "frontnote.css"))

	index := readFile(t, result.Index)
	assert.Contains(t, index, "Acme UI</h1>")
	assert.Contains(t, index, `<link rel="stylesheet" href="./style.css"/>`)
	assert.Contains(t, index, `<a href="button.html">Button</a>`)
	assert.Contains(t, index, "FrontNote 1.2.3")
	assert.NotContains(t, index, "Primary Button")

	page := readFile(t, result.Pages[0])
	assert.Contains(t, page, "<title>Button | StyleGuide</title>")
	assert.Contains(t, page, `<li class="is-current"><a href="button.html">Button</a></li>`)
	assert.Contains(t, page, "Buttons")
	assert.Contains(t, page, "Primary Button")
	assert.Contains(t, page, "<li>category ui</li>")
	assert.Contains(t, page, `<div class="fn-section__preview"><button class="btn">OK</button>`)
	assert.Contains(t, page, "&lt;button class=&#34;btn&#34;&gt;OK&lt;/button&gt;")

	console := out.String()
	assert.Contains(t, console, "[Read]")
	assert.Contains(t, console, "[Render] "+entries[0].File)
	assert.Contains(t, console, "[Write] "+result.Index)
	assert.Contains(t, console, "[Copy] assets/frontnote.css => ")
}

func TestGenerateMultiLineTitle(t *testing.T) {
	dir := t.TempDir()
	cfg := testutils.CreateTestConfig(dir)

	entry := types.NewFileEntry("card.css")
	entry.Sections = []types.ParsedSection{{
		Title:      "Card<br>Large",
		Comment:    "One<br><b>Two</b>",
		Attributes: []string{},
	}}

	result, err := New(cfg).Generate(context.Background(), []*types.FileEntry{entry})
	require.NoError(t, err)

	page := readFile(t, result.Pages[0])
	assert.Contains(t, page, "Card<br>Large")
	assert.Contains(t, page, "One<br>&lt;b&gt;Two&lt;/b&gt;")
}

func TestGenerateMissingOverview(t *testing.T) {
	t.Run("default overview is optional", func(t *testing.T) {
		dir := testutils.CreateTempProject(t)
		require.NoError(t, os.Remove(filepath.Join(dir, config.DefaultOverview)))
		cfg := testutils.CreateTestConfig(dir)

		var out bytes.Buffer
		g := New(cfg, WithConsole(logging.NewConsole(&out, false)))

		result, err := g.Generate(context.Background(), scanProject(t, dir))
		require.NoError(t, err)
		assert.FileExists(t, result.Index)
		assert.Contains(t, out.String(), "[Warn]")
	})

	t.Run("configured overview is required", func(t *testing.T) {
		dir := testutils.CreateTempProject(t)
		cfg := testutils.CreateTestConfig(dir)
		cfg.Overview = filepath.Join(dir, "missing.md")
		cfg.OverviewExplicit = true

		_, err := New(cfg).Generate(context.Background(), scanProject(t, dir))
		require.Error(t, err)
		assert.True(t, errors.IsIOError(err))
		assert.NoFileExists(t, filepath.Join(cfg.Out, "index.html"))
	})
}

func TestGenerateCustomTemplate(t *testing.T) {
	dir := testutils.CreateTempProject(t)
	tmplPath := testutils.WriteFile(t, dir, filepath.Join("theme", "page.html"),
		`{{ .Title }}|{{ if .Overview }}index{{ else }}{{ .Current.FileName }}{{ end }}|{{ .CSS }}{{ .Script }}`)
	testutils.WriteFile(t, dir, filepath.Join("theme", "assets", "img", "logo.svg"), "<svg/>")
	testutils.WriteFile(t, dir, filepath.Join("theme", "notes.txt"), "skip me")

	cfg := testutils.CreateTestConfig(dir)
	cfg.Title = "Acme"
	cfg.Template = tmplPath
	cfg.CSS = []string{"a.css", "b.css"}
	cfg.Script = []string{"app.js"}

	result, err := New(cfg).Generate(context.Background(), scanProject(t, dir))
	require.NoError(t, err)

	assert.Equal(t,
		"Acme|index|"+`<link rel="stylesheet" href="a.css"/>`+"\n"+`<link rel="stylesheet" href="b.css"/>`+`<script src="app.js"></script>`,
		readFile(t, result.Index))
	assert.Equal(t,
		"Acme|button|"+`<link rel="stylesheet" href="a.css"/>`+"\n"+`<link rel="stylesheet" href="b.css"/>`+`<script src="app.js"></script>`,
		readFile(t, result.Pages[0]))

	assert.Equal(t, []string{filepath.Join(cfg.Out, "assets", "img", "logo.svg")}, result.Assets)
	assert.Equal(t, "<svg/>", readFile(t, result.Assets[0]))
	assert.NoFileExists(t, filepath.Join(cfg.Out, "notes.txt"))
}

func TestGenerateTemplateErrors(t *testing.T) {
	t.Run("missing template", func(t *testing.T) {
		dir := testutils.CreateTempProject(t)
		cfg := testutils.CreateTestConfig(dir)
		cfg.Template = filepath.Join(dir, "nope.html")

		_, err := New(cfg).Generate(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsIOError(err))
	})

	t.Run("template does not parse", func(t *testing.T) {
		dir := testutils.CreateTempProject(t)
		cfg := testutils.CreateTestConfig(dir)
		cfg.Template = testutils.WriteFile(t, dir, "bad.html", "{{ if }")

		_, err := New(cfg).Generate(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
	})

	t.Run("template fails to execute", func(t *testing.T) {
		dir := testutils.CreateTempProject(t)
		cfg := testutils.CreateTestConfig(dir)
		cfg.Template = testutils.WriteFile(t, dir, "exec.html", "{{ .Missing }}")

		_, err := New(cfg).Generate(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, errors.IsRenderError(err))
	})
}

func TestGenerateClean(t *testing.T) {
	dir := testutils.CreateTempProject(t)
	cfg := testutils.CreateTestConfig(dir)
	stale := testutils.WriteFile(t, cfg.Out, "stale.html", "old")

	_, err := New(cfg).Generate(context.Background(), scanProject(t, dir))
	require.NoError(t, err)
	assert.FileExists(t, stale, "output is kept without clean")

	cfg.Clean = true
	_, err = New(cfg).Generate(context.Background(), scanProject(t, dir))
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.Out, "index.html"))
}

func TestGenerateDuplicateURLLastWins(t *testing.T) {
	dir := t.TempDir()
	cfg := testutils.CreateTestConfig(dir)

	first := types.NewFileEntry(filepath.Join("a", "button.css"))
	first.Sections = []types.ParsedSection{{Title: "From A", Attributes: []string{}}}
	second := types.NewFileEntry(filepath.Join("b", "button.css"))
	second.Sections = []types.ParsedSection{{Title: "From B", Attributes: []string{}}}

	result, err := New(cfg).Generate(context.Background(), []*types.FileEntry{first, second})
	require.NoError(t, err)

	require.Len(t, result.Pages, 1)
	page := readFile(t, result.Pages[0])
	assert.Contains(t, page, "From B")
	assert.NotContains(t, page, "From A")
}

func TestGenerateCancelled(t *testing.T) {
	dir := testutils.CreateTempProject(t)
	cfg := testutils.CreateTestConfig(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg).Generate(ctx, scanProject(t, dir))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoveOutputRefusesWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Error(t, removeOutput(wd))
	assert.Error(t, removeOutput(filepath.Dir(wd)))
	assert.Error(t, removeOutput(string(filepath.Separator)))

	target := filepath.Join(t.TempDir(), "guide")
	require.NoError(t, os.MkdirAll(target, 0o755))
	assert.NoError(t, removeOutput(target))
	assert.NoDirExists(t, target)
}

func TestGenerateRegistryEntries(t *testing.T) {
	dir := testutils.CreateTempProject(t)
	cfg := testutils.CreateTestConfig(dir)

	result, err := New(cfg).Generate(context.Background(), testutils.CreateTestRegistry().All())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(cfg.Out, "button.html"),
		filepath.Join(cfg.Out, "card.html"),
	}, result.Pages)

	card := readFile(t, filepath.Join(cfg.Out, "card.html"))
	assert.Contains(t, card, "About card.")
	assert.Contains(t, card, `<li class="is-current"><a href="card.html">Card</a></li>`)
	assert.Contains(t, card, `<a href="button.html">Button</a>`)
}
