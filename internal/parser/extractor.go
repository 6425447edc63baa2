package parser

import (
	"sort"
	"strings"

	"github.com/conneroisu/frontnote/internal/types"
)

// UnterminatedBlock describes an opening marker that never reaches a */.
// Such blocks yield no region; callers may surface them as warnings.
type UnterminatedBlock struct {
	Kind types.RegionKind
	// Offset is the byte offset of the opening /* in the text.
	Offset int
	// Line is the 1-based line of the opening /*.
	Line int
}

// Extractor locates tagged comment regions in raw file text.
type Extractor struct {
	patterns *Patterns
}

// NewExtractor creates an extractor. A nil pattern set selects the defaults.
func NewExtractor(patterns *Patterns) *Extractor {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Extractor{patterns: patterns}
}

// ExtractOverview returns every #overview region in text, in order.
func (e *Extractor) ExtractOverview(text string) []types.RawRegion {
	return e.extract(text, types.KindOverview)
}

// ExtractStyleguide returns every #styleguide region in text, in order.
func (e *Extractor) ExtractStyleguide(text string) []types.RawRegion {
	return e.extract(text, types.KindStyleguide)
}

func (e *Extractor) extract(text string, kind types.RegionKind) []types.RawRegion {
	matches := e.patterns.region(kind == types.KindOverview).FindAllString(text, -1)

	regions := make([]types.RawRegion, 0, len(matches))
	for _, m := range matches {
		regions = append(regions, types.RawRegion{Kind: kind, Text: m})
	}
	return regions
}

// Unterminated reports the opening markers of both kinds that are not part
// of any extracted region, ordered by offset.
func (e *Extractor) Unterminated(text string) []UnterminatedBlock {
	var blocks []UnterminatedBlock
	for _, kind := range []types.RegionKind{types.KindOverview, types.KindStyleguide} {
		overview := kind == types.KindOverview
		spans := e.patterns.region(overview).FindAllStringIndex(text, -1)

		for _, open := range e.patterns.opener(overview).FindAllStringIndex(text, -1) {
			if covered(spans, open[0]) {
				continue
			}
			blocks = append(blocks, UnterminatedBlock{
				Kind:   kind,
				Offset: open[0],
				Line:   strings.Count(text[:open[0]], "\n") + 1,
			})
		}
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks
}

// covered reports whether offset falls inside one of the sorted spans.
func covered(spans [][]int, offset int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i][1] > offset })
	return i < len(spans) && spans[i][0] <= offset
}
