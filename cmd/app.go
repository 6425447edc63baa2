package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/frontnote/internal/cache"
	"github.com/conneroisu/frontnote/internal/config"
	fnerrors "github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/generator"
	"github.com/conneroisu/frontnote/internal/logging"
	"github.com/conneroisu/frontnote/internal/parser"
	"github.com/conneroisu/frontnote/internal/registry"
	"github.com/conneroisu/frontnote/internal/scanner"
	"github.com/conneroisu/frontnote/internal/types"
	"github.com/conneroisu/frontnote/internal/version"
)

// app holds the components one command invocation works with.
type app struct {
	config    *config.Config
	logger    logging.Logger
	errs      *fnerrors.ErrorHandler
	console   *logging.Console
	cache     *cache.Store
	scanner   *scanner.Scanner
	generator *generator.Generator
}

// newApp wires the scanner and generator for cfg. Progress lines go to
// out; structured logs go to stderr.
func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	console := logging.NewConsole(out, cfg.Verbose)

	a := &app{
		config:  cfg,
		logger:  logger,
		errs:    fnerrors.NewErrorHandler(logger),
		console: console,
	}

	opts := []scanner.Option{
		scanner.WithRoot("."),
		scanner.WithRegistry(registry.New()),
		scanner.WithLogger(logger),
		scanner.WithConsole(console),
		scanner.WithWorkers(cfg.EffectiveWorkers()),
		scanner.WithUnterminatedWarnings(cfg.WarnUnterminated()),
	}

	if cfg.Cache {
		store, err := cache.Open(cfg.CachePath, cfg.LineBreak)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		if cfg.Clean {
			if err := store.Clear(); err != nil {
				store.Close()
				return nil, fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		a.cache = store
		opts = append(opts, scanner.WithCache(store))
	}

	patterns := parser.NewPatterns(parser.WithLineBreak(cfg.LineBreak))
	a.scanner = scanner.New(parser.New(patterns), opts...)
	a.generator = generator.New(cfg,
		generator.WithLogger(logger),
		generator.WithConsole(console),
		generator.WithVersion(version.Get().Short()))

	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn(context.Background(), err, "Failed to close cache")
		}
	}
}

// exclude returns the configured exclusions plus the output and cache
// locations, so generated files are never scanned or watched.
func (a *app) exclude() []string {
	exclude := append([]string{}, a.config.Exclude...)
	for _, dir := range []string{a.config.Out, filepath.Dir(a.config.CachePath)} {
		if rel, ok := relativeDir(dir); ok {
			exclude = append(exclude, rel+"/**")
		}
	}
	return exclude
}

// relativeDir returns dir relative to the working directory in slash form,
// or false when it lies outside it.
func relativeDir(dir string) (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// scan discovers the configured files and refreshes the registry with
// them. Entries come back in discovery order. Read errors of single
// files are logged; the remaining files are still returned.
func (a *app) scan(ctx context.Context) ([]*types.FileEntry, error) {
	paths, err := scanner.Discover(".", a.config.Patterns(), a.exclude())
	if err != nil {
		return nil, err
	}

	result, err := a.scanner.Refresh(ctx, paths)
	if result == nil {
		return nil, err
	}
	if err != nil {
		a.report(ctx, err)
	}
	a.logger.Debug(ctx, "Scanned files",
		"files", result.Scanned,
		"entries", len(result.Entries),
		"cache_hits", result.CacheHits)

	return result.Entries, nil
}

// build scans and writes the guide once.
func (a *app) build(ctx context.Context) (*generator.Result, error) {
	a.console.Start(version.Banner())

	entries, err := a.scan(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.generator.Generate(ctx, entries)
	if err != nil {
		return nil, err
	}

	a.console.Finish(fmt.Sprintf("%d pages written to %s in %s",
		len(result.Pages)+1, displayPath(a.config.Out), result.Duration.Round(time.Millisecond)))
	return result, nil
}

// report logs err through the error handler and prints it as a warning.
func (a *app) report(ctx context.Context, err error) {
	a.errs.Handle(ctx, err)
	a.console.Warn("%v", err)
}

// initialBuild runs the first build of watch and serve and passes its
// outcome to onBuild. Recoverable errors such as a broken template are
// reported and nil is returned so watching can start; any other error is
// returned.
func (a *app) initialBuild(ctx context.Context, onBuild func(context.Context, error)) error {
	_, err := a.build(ctx)
	if err != nil {
		if !fnerrors.IsRecoverable(err) {
			return err
		}
		a.report(ctx, err)
	}
	if onBuild != nil {
		onBuild(ctx, err)
	}
	return nil
}

// displayPath shortens path to be relative to the working directory when
// it lies inside it.
func displayPath(path string) string {
	if rel, ok := relativeDir(path); ok {
		return filepath.FromSlash(rel)
	}
	return path
}
