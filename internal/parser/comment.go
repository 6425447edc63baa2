package parser

import (
	"strings"

	"github.com/conneroisu/frontnote/internal/types"
)

// splitState is the phase of the title/description split.
type splitState int

const (
	// accumulatingTitle collects non-blank lines until the first blank line
	// that follows at least one title line.
	accumulatingTitle splitState = iota
	// accumulatingDescription collects every remaining non-blank line.
	accumulatingDescription
)

// CommentParser decomposes one raw region into a ParsedSection. It holds
// no mutable state and may be shared between goroutines.
type CommentParser struct {
	patterns *Patterns
}

// NewCommentParser creates a comment parser. A nil pattern set selects the
// defaults.
func NewCommentParser(patterns *Patterns) *CommentParser {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &CommentParser{patterns: patterns}
}

// Parse runs the region through prefix stripping, attribute extraction,
// code extraction and the title/description split, in that order. Each step
// removes what it consumes. Malformed input degrades to empty fields.
func (p *CommentParser) Parse(raw string) types.ParsedSection {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.TrimSuffix(strings.TrimRight(text, " \t\n"), "*/")
	text = p.patterns.prefix.ReplaceAllString(text, "")

	text, attributes := extractAttributes(text)
	text, code := p.extractCode(text)
	title, comment := p.split(text)

	return types.ParsedSection{
		Title:      title,
		Comment:    comment,
		Attributes: attributes,
		Code:       code,
	}
}

// ParseAll parses each region in order.
func (p *CommentParser) ParseAll(regions []types.RawRegion) []types.ParsedSection {
	sections := make([]types.ParsedSection, 0, len(regions))
	for _, region := range regions {
		sections = append(sections, p.Parse(region.Text))
	}
	return sections
}

// extractAttributes collects attribute lines and empties them in place.
// The line breaks stay, so an emptied line still separates title and
// description.
func extractAttributes(text string) (string, []string) {
	lines := strings.Split(text, "\n")
	attributes := make([]string, 0)

	for i, line := range lines {
		if !IsAttributeLine(line) {
			continue
		}
		attributes = append(attributes, strings.TrimRight(StripAttributePrefix(line), " \t"))
		lines[i] = ""
	}

	return strings.Join(lines, "\n"), attributes
}

// extractCode keeps the first fenced span as the code sample and removes
// every fenced span from the text. Matching is lazy: a span ends at the
// nearest closing fence.
func (p *CommentParser) extractCode(text string) (string, *string) {
	span := p.patterns.code.FindString(text)
	if span == "" {
		return text, nil
	}

	code := p.patterns.codeWrapper.ReplaceAllString(span, "")
	return p.patterns.code.ReplaceAllString(text, ""), &code
}

func (p *CommentParser) split(text string) (string, string) {
	var title, comment []string
	state := accumulatingTitle

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		blank := IsBlankLine(line)

		switch state {
		case accumulatingTitle:
			if !blank {
				title = append(title, line)
			} else if len(title) > 0 {
				state = accumulatingDescription
			}
		case accumulatingDescription:
			if !blank {
				comment = append(comment, line)
			}
		}
	}

	return strings.Join(title, p.patterns.lineBreak), strings.Join(comment, p.patterns.lineBreak)
}
