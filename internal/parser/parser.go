// Package parser extracts tagged documentation comments from source text.
//
// Two kinds of block comments are recognised:
//
//	/* #overview
//	Project overview
//	*/
//
//	/*
//	#styleguide
//	Button
//
//	A simple styled button.
//	@category ui
//	```
//	<button class="btn">OK</button>
//	```
//	*/
//
// The Extractor finds the raw regions, the CommentParser turns each region
// into a types.ParsedSection (title, description, attributes and an optional
// code sample). Matching is purely regex and line based, so the scanned
// files may be written in any language that uses /* */ comments.
//
// Nothing in this package performs I/O or returns errors: missing or
// malformed blocks degrade to empty results. All types are safe for
// concurrent use.
package parser

import "github.com/conneroisu/frontnote/internal/types"

// Document holds the parsed regions of one file.
type Document struct {
	// Overview is the first #overview region, nil when the file has none.
	Overview *types.ParsedSection
	// Sections holds one entry per #styleguide region, in file order.
	Sections []types.ParsedSection
}

// Parser combines an Extractor and a CommentParser over one pattern set.
type Parser struct {
	extractor *Extractor
	comments  *CommentParser
}

// New creates a Parser. A nil pattern set selects the defaults.
func New(patterns *Patterns) *Parser {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Parser{
		extractor: NewExtractor(patterns),
		comments:  NewCommentParser(patterns),
	}
}

// Extractor returns the underlying region extractor.
func (p *Parser) Extractor() *Extractor {
	return p.extractor
}

// Parse extracts and parses every region of text.
func (p *Parser) Parse(text string) Document {
	doc := Document{
		Sections: p.comments.ParseAll(p.extractor.ExtractStyleguide(text)),
	}

	if overviews := p.extractor.ExtractOverview(text); len(overviews) > 0 {
		overview := p.comments.Parse(overviews[0].Text)
		doc.Overview = &overview
	}

	return doc
}
