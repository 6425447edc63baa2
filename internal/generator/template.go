package generator

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/conneroisu/frontnote/internal/errors"
)

//go:embed all:template
var defaultTemplate embed.FS

const (
	defaultTemplateDir  = "template"
	defaultTemplateName = "index.html"
)

// guideTemplate is a parsed page template together with the file system
// its assets are copied from.
type guideTemplate struct {
	tmpl *template.Template
	// assets is rooted at the template's directory.
	assets fs.FS
	// dir is the template's directory on disk, "" for the built-in one.
	dir string
}

// loadTemplate parses the configured template, or the built-in one when
// none is configured.
func (g *Generator) loadTemplate() (*guideTemplate, error) {
	if g.config.Template == "" {
		assets, err := fs.Sub(defaultTemplate, defaultTemplateDir)
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeInternalError, "built-in template missing", err)
		}
		src, err := fs.ReadFile(assets, defaultTemplateName)
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeInternalError, "built-in template missing", err)
		}
		tmpl, err := g.parseTemplate(defaultTemplateName, "", string(src))
		if err != nil {
			return nil, err
		}
		return &guideTemplate{tmpl: tmpl, assets: assets}, nil
	}

	path := g.config.Template
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrFileNotFound(path, err)
		}
		return nil, errors.ErrReadFailed(path, err)
	}
	g.console.Read(path)

	tmpl, err := g.parseTemplate(filepath.Base(path), path, string(src))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	return &guideTemplate{tmpl: tmpl, assets: os.DirFS(dir), dir: dir}, nil
}

func (g *Generator) parseTemplate(name, path, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(Funcs(g.patterns)).Parse(src)
	if err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeTemplateInvalid,
			fmt.Sprintf("parse template %s", name), err).WithLocation(path, 0)
	}
	return tmpl, nil
}
