package parser

import (
	"regexp"
	"strings"
)

const (
	// DefaultLineBreak joins the lines of a title or description.
	DefaultLineBreak = "<br>"
	// AttributePrefix starts every attribute line.
	AttributePrefix = "@"
	// Fence opens and closes a code sample.
	Fence = "```"
)

// Patterns is the fixed set of recognition patterns used by the extractor
// and the comment parser. A Patterns value is immutable once built and is
// safe for concurrent use.
type Patterns struct {
	styleguide     *regexp.Regexp
	overview       *regexp.Regexp
	styleguideOpen *regexp.Regexp
	overviewOpen   *regexp.Regexp
	prefix         *regexp.Regexp
	code           *regexp.Regexp
	codeWrapper    *regexp.Regexp
	lineBreak      string
}

// PatternOption customises a Patterns value at construction time.
type PatternOption func(*Patterns)

// WithLineBreak sets the marker used to join title and description lines.
// An empty marker is ignored.
func WithLineBreak(marker string) PatternOption {
	return func(p *Patterns) {
		if marker != "" {
			p.lineBreak = marker
		}
	}
}

var defaultPatterns = NewPatterns()

// DefaultPatterns returns the process-wide pattern set built at init.
func DefaultPatterns() *Patterns {
	return defaultPatterns
}

// NewPatterns compiles a pattern set. Only the line-break marker is
// configurable; the markers and delimiters are fixed.
func NewPatterns(opts ...PatternOption) *Patterns {
	p := &Patterns{
		// The lazy body stops at the nearest */, so the body may hold any
		// sequence except the terminator itself, including lone * or /.
		styleguide:     regexp.MustCompile(`(?s)/\*\s*s?#styleguide.*?\*/`),
		overview:       regexp.MustCompile(`(?s)/\*\s*s?#overview.*?\*/`),
		styleguideOpen: regexp.MustCompile(`/\*\s*s?#styleguide`),
		overviewOpen:   regexp.MustCompile(`/\*\s*s?#overview`),
		prefix:         regexp.MustCompile(`(?m)^[ \t]*/?\**[ \t]*(?:s?#styleguide|s?#overview)?/?[ \t]*`),
		code:           regexp.MustCompile("(?s)" + Fence + ".+?" + Fence),
		codeWrapper:    regexp.MustCompile(Fence + "\n?"),
		lineBreak:      DefaultLineBreak,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// LineBreak returns the marker joining title and description lines.
func (p *Patterns) LineBreak() string {
	return p.lineBreak
}

// SplitLines splits a title or description back into its lines.
func (p *Patterns) SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, p.lineBreak)
}

// region returns the full-region pattern for kind-specific extraction.
func (p *Patterns) region(overview bool) *regexp.Regexp {
	if overview {
		return p.overview
	}
	return p.styleguide
}

func (p *Patterns) opener(overview bool) *regexp.Regexp {
	if overview {
		return p.overviewOpen
	}
	return p.styleguideOpen
}

// IsBlankLine reports whether line is empty or whitespace only.
func IsBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

// IsAttributeLine reports whether line is an attribute: an @ followed by
// at least one more character.
func IsAttributeLine(line string) bool {
	return len(line) > len(AttributePrefix) && strings.HasPrefix(line, AttributePrefix)
}

// StripAttributePrefix removes the leading @ markers of an attribute line.
// Stripping an already stripped value leaves it unchanged.
func StripAttributePrefix(line string) string {
	return strings.TrimLeft(line, AttributePrefix)
}

// StripFences removes the ``` markers (and the newline directly following
// each) from a captured code span.
func StripFences(span string) string {
	return defaultPatterns.codeWrapper.ReplaceAllString(span, "")
}
