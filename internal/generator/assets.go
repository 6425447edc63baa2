package generator

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/scanner"
)

// copyAssets copies every template asset matching include_asset_path to
// the same relative path under the output directory.
func (g *Generator) copyAssets(ctx context.Context, gt *guideTemplate) ([]string, error) {
	files, err := g.listAssets(gt)
	if err != nil {
		return nil, err
	}

	copied := make([]string, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dst := filepath.Join(g.config.Out, filepath.FromSlash(rel))
		if err := copyFile(gt.assets, rel, dst); err != nil {
			return nil, err
		}

		src := rel
		if gt.dir != "" {
			src = filepath.Join(gt.dir, filepath.FromSlash(rel))
		}
		g.console.Copy(src, dst)
		copied = append(copied, dst)
	}
	return copied, nil
}

// listAssets returns the slash-separated paths, relative to the template
// directory, of the assets to copy.
func (g *Generator) listAssets(gt *guideTemplate) ([]string, error) {
	patterns := g.config.IncludeAssetPath
	if len(patterns) == 0 {
		return nil, nil
	}

	if gt.dir != "" {
		found, err := scanner.Discover(gt.dir, patterns, nil)
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(found))
		for _, path := range found {
			rel := filepath.ToSlash(path)
			if !fs.ValidPath(rel) {
				g.console.Warn("asset %s is outside the template directory, skipped", path)
				continue
			}
			files = append(files, rel)
		}
		return files, nil
	}

	matchers := make([]*scanner.Matcher, 0, len(patterns))
	for _, pattern := range patterns {
		m, err := scanner.CompileGlob(filepath.ToSlash(pattern))
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	var files []string
	err := fs.WalkDir(gt.assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, m := range matchers {
			if m.Match(path) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "list built-in assets", err)
	}
	return files, nil
}

func copyFile(fsys fs.FS, name, dst string) error {
	src, err := fsys.Open(name)
	if err != nil {
		return errors.ErrReadFailed(name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.ErrWriteFailed(dst, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.ErrWriteFailed(dst, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return errors.NewIOError(errors.ErrCodeCopyFailed, "copy asset", err).WithLocation(dst, 0)
	}
	if err := out.Close(); err != nil {
		return errors.ErrWriteFailed(dst, err)
	}
	return nil
}
