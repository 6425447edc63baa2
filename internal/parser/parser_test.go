package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStylesheet = `/* #overview
Project Styles

Shared look and feel.
*/

/* #overview
Ignored second overview
*/

/*
#styleguide
Button

A simple styled button.
@category ui
` + "```" + `
<button class="btn">OK</button>
` + "```" + `
*/
.btn { padding: 4px; }

/* #styleguide
Card
*/
.card { border: 1px solid; }
`

func TestParserParse(t *testing.T) {
	doc := New(nil).Parse(sampleStylesheet)

	require.NotNil(t, doc.Overview)
	assert.Equal(t, "Project Styles", doc.Overview.Title)
	assert.Equal(t, "Shared look and feel.", doc.Overview.Comment)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Button", doc.Sections[0].Title)
	assert.Equal(t, "A simple styled button.", doc.Sections[0].Comment)
	assert.Equal(t, []string{"category ui"}, doc.Sections[0].Attributes)
	require.NotNil(t, doc.Sections[0].Code)
	assert.Equal(t, "<button class=\"btn\">OK</button>\n", *doc.Sections[0].Code)

	assert.Equal(t, "Card", doc.Sections[1].Title)
	assert.Nil(t, doc.Sections[1].Code)
}

func TestParserParseWithoutMarkers(t *testing.T) {
	doc := New(nil).Parse(".a { color: red; }\n/* plain */")

	assert.Nil(t, doc.Overview)
	assert.NotNil(t, doc.Sections)
	assert.Empty(t, doc.Sections)
}

func TestParserCustomPatterns(t *testing.T) {
	p := New(NewPatterns(WithLineBreak(" | ")))

	doc := p.Parse("/* #styleguide\nA\nB\n*/")
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "A | B", doc.Sections[0].Title)
	assert.NotNil(t, p.Extractor())
}
