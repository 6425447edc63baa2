// Package testutils holds helpers shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frontnote/internal/config"
	"github.com/conneroisu/frontnote/internal/registry"
	"github.com/conneroisu/frontnote/internal/types"
)

// ButtonStylesheet is a stylesheet with an overview and two sections.
const ButtonStylesheet = `/* #overview
Buttons

Every clickable thing.
*/

/*
#styleguide
Button

A simple styled button.
@category ui
@since 1.0
` + "```" + `
<button class="btn">OK</button>
` + "```" + `
*/
.btn { padding: 4px 8px; }

/* #styleguide
Primary Button

The call to action.
*/
.btn-primary { color: white; }
`

// PlainStylesheet has no tagged comments.
const PlainStylesheet = `/* layout helpers */
.row { display: flex; }
`

// CreateTempProject creates a temporary project with a stylesheet tree:
//
//	css/button.css   (ButtonStylesheet)
//	css/plain.css    (PlainStylesheet)
//	styleguide.md
func CreateTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	WriteFile(t, dir, filepath.Join("css", "button.css"), ButtonStylesheet)
	WriteFile(t, dir, filepath.Join("css", "plain.css"), PlainStylesheet)
	WriteFile(t, dir, "styleguide.md", "# Acme UI\n\nShared components.\n")

	return dir
}

// WriteFile writes content to dir/rel, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CreateTestConfig creates a configuration rooted in projectDir with
// defaults matching config.SetDefaults.
func CreateTestConfig(projectDir string) *config.Config {
	return &config.Config{
		Title:            "StyleGuide",
		Files:            []string{"**/*.css"},
		Exclude:          []string{"node_modules/**", ".git/**"},
		Overview:         filepath.Join(projectDir, config.DefaultOverview),
		IncludeAssetPath: []string{"assets/**/*"},
		CSS:              []string{"./style.css"},
		Out:              filepath.Join(projectDir, "guide"),
		Cache:            false,
		CachePath:        filepath.Join(projectDir, ".frontnote", "cache.db"),
		Unterminated:     config.UnterminatedIgnore,
		LineBreak:        "<br>",
		Workers:          2,
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
		},
		Watch: config.WatchConfig{Debounce: 50 * time.Millisecond},
		Log:   config.LogConfig{Level: "error", Format: "text"},
	}
}

// CreateTestRegistry creates a registry holding a button and a card file.
func CreateTestRegistry() *registry.GuideRegistry {
	reg := registry.New()

	for _, file := range []string{filepath.Join("css", "button.css"), filepath.Join("css", "card.css")} {
		entry := types.NewFileEntry(file)
		entry.Hash = file
		entry.Sections = []types.ParsedSection{{
			Title:      entry.FileName,
			Comment:    "About " + entry.FileName + ".",
			Attributes: []string{},
		}}
		reg.Register(entry)
	}

	return reg
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
