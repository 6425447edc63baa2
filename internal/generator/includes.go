package generator

import (
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StylesheetTags renders one <link rel="stylesheet"> per href, newline
// separated. Empty entries are skipped.
func StylesheetTags(hrefs []string) template.HTML {
	return renderTags(hrefs, func(href string) *html.Node {
		return &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: href},
			},
		}
	})
}

// ScriptTags renders one <script src> element per source.
func ScriptTags(srcs []string) template.HTML {
	return renderTags(srcs, func(src string) *html.Node {
		return &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Script,
			Data:     "script",
			Attr:     []html.Attribute{{Key: "src", Val: src}},
		}
	})
}

func renderTags(refs []string, node func(string) *html.Node) template.HTML {
	var b strings.Builder
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		// Rendering a detached element into a strings.Builder cannot fail.
		_ = html.Render(&b, node(ref))
	}
	return template.HTML(b.String()) //nolint:gosec // attribute values are escaped by html.Render
}
