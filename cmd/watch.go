package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/frontnote/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [files...]",
	Aliases: []string{"w"},
	Short:   "Rebuild the style guide when files change",
	Long: `Build the guide, then rebuild it whenever a scanned stylesheet, the
overview markdown, the template or one of its assets changes.

Examples:
  frontnote watch                 # Watch **/*.css
  frontnote watch -v "src/**/*"   # Watch matching files, print every write`,
	Args: cobra.ArbitraryArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.initialBuild(ctx, nil); err != nil {
		return err
	}

	fw, err := a.watch(ctx, nil)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

// watch starts a watcher that rebuilds the guide on every batch of
// relevant changes. onBuild, when set, receives the outcome of each
// rebuild. A failed rebuild is reported and watching continues.
func (a *app) watch(ctx context.Context, onBuild func(context.Context, error)) (*watcher.FileWatcher, error) {
	filter, err := a.watchFilter()
	if err != nil {
		return nil, err
	}

	fw, err := watcher.NewFileWatcher(a.config.Watch.Debounce,
		watcher.WithLogger(a.logger),
		watcher.WithExclude(".", a.exclude()))
	if err != nil {
		return nil, err
	}
	fw.AddFilter(filter)

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		a.logger.Info(ctx, "Rebuilding guide", "changes", len(events))

		_, err := a.build(ctx)
		if err != nil {
			a.report(ctx, err)
		}
		if onBuild != nil {
			onBuild(ctx, err)
		}
		return nil
	})

	for _, dir := range a.watchRoots() {
		if err := fw.AddRecursive(dir); err != nil {
			fw.Stop()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}

// watchRoots returns the working directory plus the template directory
// when it lies outside of it.
func (a *app) watchRoots() []string {
	roots := []string{"."}
	if a.config.Template != "" {
		dir := filepath.Dir(a.config.Template)
		if _, inside := relativeDir(dir); !inside && !sameDir(dir, ".") {
			roots = append(roots, dir)
		}
	}
	return roots
}

// watchFilter accepts scanned stylesheets, the overview, the template and
// the template assets. Excluded paths are always rejected.
func (a *app) watchFilter() (watcher.FileFilter, error) {
	sources, err := watcher.GlobFilter(".", a.config.Patterns())
	if err != nil {
		return nil, err
	}
	exclude, err := watcher.ExcludeFilter(".", a.exclude())
	if err != nil {
		return nil, err
	}

	filters := []watcher.FileFilter{
		sources,
		watcher.PathFilter(a.config.Overview, a.config.Template),
	}
	if a.config.Template != "" {
		assets, err := watcher.GlobFilter(filepath.Dir(a.config.Template), a.config.IncludeAssetPath)
		if err != nil {
			return nil, err
		}
		filters = append(filters, assets)
	}

	relevant := watcher.AnyFilter(filters...)
	return func(path string) bool {
		return relevant(path) && exclude(path)
	}, nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
