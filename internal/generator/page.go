package generator

import (
	"context"
	"html/template"
	"io"
	"strings"
	"unicode"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/frontnote/internal/parser"
	"github.com/conneroisu/frontnote/internal/types"
)

// PageData is what the guide template is executed with. The index page
// has Overview set and Index filled; file pages have Current set.
type PageData struct {
	Title    string
	Overview bool
	Index    template.HTML
	Current  *types.FileEntry
	Files    []*types.FileEntry
	CSS      template.HTML
	Script   template.HTML
	Version  string
}

// Page renders data through tmpl as a templ component so pages can be
// written to disk or served with templ.Handler alike.
func Page(tmpl *template.Template, data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return tmpl.Execute(w, data)
	})
}

// Funcs returns the helpers available to guide templates.
//
//	isCurrent  reports whether a nav entry is the page being rendered
//	lines      splits a title or comment on the line break marker
//	label      turns a file name like "button-group" into "Button Group"
//	attr       looks up the value of an attribute such as "@since 1.0"
//	code       dereferences a section's code sample
//	sample     marks a code sample as HTML for a live preview
func Funcs(patterns *parser.Patterns) template.FuncMap {
	if patterns == nil {
		patterns = parser.DefaultPatterns()
	}
	title := cases.Title(language.English)
	words := strings.NewReplacer("-", " ", "_", " ", ".", " ")

	return template.FuncMap{
		"isCurrent": IsCurrent,
		"lines":     patterns.SplitLines,
		"label": func(name string) string {
			return title.String(strings.Join(strings.Fields(words.Replace(name)), " "))
		},
		"attr": Attr,
		"code": func(code *string) string {
			if code == nil {
				return ""
			}
			return *code
		},
		"sample": func(code *string) template.HTML {
			if code == nil {
				return ""
			}
			return template.HTML(*code) //nolint:gosec // samples are the guide author's markup
		},
	}
}

// IsCurrent reports whether file is the entry the page is rendered for.
func IsCurrent(current, file *types.FileEntry) bool {
	return current != nil && file != nil && current.File == file.File
}

// Attr returns the value of the first attribute named key in section,
// "" when absent. "@since 1.0" has key "since" and value "1.0"; a bare
// "@deprecated" yields "deprecated" so it can be tested for presence.
func Attr(section types.ParsedSection, key string) string {
	for _, a := range section.Attributes {
		a = strings.TrimSpace(a)
		i := strings.IndexFunc(a, unicode.IsSpace)
		if i < 0 {
			if a == key {
				return a
			}
			continue
		}
		if a[:i] == key {
			return strings.TrimSpace(a[i:])
		}
	}
	return ""
}
