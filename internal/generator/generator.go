// Package generator writes the style guide: an index page rendered from
// the overview markdown, one page per scanned file and the template's
// assets.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/sourcegraph/conc/pool"
	"github.com/yuin/goldmark"

	"github.com/conneroisu/frontnote/internal/config"
	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/logging"
	"github.com/conneroisu/frontnote/internal/parser"
	"github.com/conneroisu/frontnote/internal/types"
)

// IndexPage is the file name of the overview page.
const IndexPage = "index.html"

// Generator renders FileEntry values into a static guide.
type Generator struct {
	config   *config.Config
	patterns *parser.Patterns
	markdown goldmark.Markdown
	logger   logging.Logger
	console  *logging.Console
	version  string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger.WithComponent("generator")
		}
	}
}

// WithConsole sets the progress console.
func WithConsole(console *logging.Console) Option {
	return func(g *Generator) { g.console = console }
}

// WithVersion sets the version shown in generated pages.
func WithVersion(version string) Option {
	return func(g *Generator) { g.version = version }
}

// New creates a generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		config:   cfg,
		patterns: parser.NewPatterns(parser.WithLineBreak(cfg.LineBreak)),
		markdown: newMarkdown(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result describes one generation run. Paths are absolute.
type Result struct {
	Index    string
	Pages    []string
	Assets   []string
	Duration time.Duration
}

// Generate writes the guide for entries into the output directory.
// Entries sharing a URL produce one page, from the last of them.
func (g *Generator) Generate(ctx context.Context, entries []*types.FileEntry) (*Result, error) {
	start := time.Now()
	perf := logging.StartOperation(g.logger, "generate")

	result, err := g.generate(ctx, entries)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}

	result.Duration = time.Since(start)
	perf.End(ctx, "pages", len(result.Pages), "assets", len(result.Assets))
	return result, nil
}

func (g *Generator) generate(ctx context.Context, entries []*types.FileEntry) (*Result, error) {
	out := g.config.Out

	if g.config.Clean {
		if err := removeOutput(out); err != nil {
			return nil, err
		}
		g.logger.Debug(ctx, "Removed output directory", "dir", out)
	}

	gt, err := g.loadTemplate()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, errors.ErrWriteFailed(out, err)
	}

	base := PageData{
		Title:   g.config.Title,
		Files:   entries,
		CSS:     StylesheetTags(g.config.CSS),
		Script:  ScriptTags(g.config.Script),
		Version: g.version,
	}

	result := &Result{}

	index, err := g.writeIndex(ctx, gt, base)
	if err != nil {
		return nil, err
	}
	result.Index = index

	pages, err := g.writePages(ctx, gt, base, entries)
	if err != nil {
		return nil, err
	}
	result.Pages = pages

	assets, err := g.copyAssets(ctx, gt)
	if err != nil {
		return nil, err
	}
	result.Assets = assets

	return result, nil
}

// Overview reads the overview markdown and converts it to HTML. A missing
// default overview yields an empty page; a missing configured one fails.
func (g *Generator) Overview(ctx context.Context) (PageData, error) {
	path := g.config.Overview
	src, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return PageData{}, errors.ErrReadFailed(path, err)
		}
		if g.config.OverviewExplicit {
			return PageData{}, errors.ErrFileNotFound(path, err)
		}
		g.console.Warn("overview %s not found, index page is empty", path)
		g.logger.Warn(ctx, err, "Overview not found", "path", path)
		return PageData{Overview: true}, nil
	}
	g.console.Read(path)

	html, err := RenderMarkdown(g.markdown, src)
	if err != nil {
		return PageData{}, errors.NewRenderError(errors.ErrCodeRenderFailed,
			"render overview markdown", err).WithLocation(path, 0)
	}
	return PageData{Overview: true, Index: html}, nil
}

func (g *Generator) writeIndex(ctx context.Context, gt *guideTemplate, base PageData) (string, error) {
	overview, err := g.Overview(ctx)
	if err != nil {
		return "", err
	}

	data := base
	data.Overview = true
	data.Index = overview.Index

	path := filepath.Join(g.config.Out, IndexPage)
	if err := writePage(ctx, path, Page(gt.tmpl, data)); err != nil {
		return "", err
	}
	g.console.Write(path)
	return path, nil
}

func (g *Generator) writePages(ctx context.Context, gt *guideTemplate, base PageData, entries []*types.FileEntry) ([]string, error) {
	last := make(map[string]int, len(entries))
	for i, entry := range entries {
		last[entry.URL] = i
	}

	written := make([]string, len(entries))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(g.config.EffectiveWorkers())

	for i, entry := range entries {
		if last[entry.URL] != i {
			continue
		}
		p.Go(func(ctx context.Context) error {
			g.console.Render(entry.File)

			data := base
			data.Current = entry

			path := filepath.Join(g.config.Out, entry.URL)
			if err := writePage(ctx, path, Page(gt.tmpl, data)); err != nil {
				return err
			}
			g.console.Write(path)
			written[i] = path
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(written))
	for _, path := range written {
		if path != "" {
			pages = append(pages, path)
		}
	}
	return pages, nil
}

// writePage renders component fully before touching path, so a failed
// render leaves the previous page in place.
func writePage(ctx context.Context, path string, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.NewRenderError(errors.ErrCodeRenderFailed,
			fmt.Sprintf("render %s", filepath.Base(path)), err).WithLocation(path, 0)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ErrWriteFailed(path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.ErrWriteFailed(path, err)
	}
	return nil
}

// removeOutput deletes the output directory. It refuses to remove the
// file system root or the working directory and its ancestors.
func removeOutput(out string) error {
	abs, err := filepath.Abs(out)
	if err != nil {
		return errors.ErrWriteFailed(out, err)
	}
	if abs == filepath.Dir(abs) {
		return errors.NewValidationError(errors.ErrCodeValidationFailed,
			"refusing to clean the file system root").WithLocation(out, 0)
	}
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(abs, wd); err == nil && !isOutside(rel) {
			return errors.NewValidationError(errors.ErrCodeValidationFailed,
				"refusing to clean a directory containing the working directory").WithLocation(out, 0)
		}
	}

	if err := os.RemoveAll(abs); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to clean output directory", err).
			WithLocation(out, 0)
	}
	return nil
}

func isOutside(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
