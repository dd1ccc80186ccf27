package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSectionText = "intro\n== alpha ==\n{|\n|}\n== beta ==\n{|\n|}"

func TestParseSections_Offsets(t *testing.T) {
	sections := ParseSections(twoSectionText)

	require.Len(t, sections, 2)

	assert.Equal(t, "alpha", sections[0].Title)
	assert.Equal(t, 2, sections[0].Level)
	assert.Equal(t, 6, sections[0].Start)
	assert.Equal(t, 24, sections[0].End)

	assert.Equal(t, "beta", sections[1].Title)
	assert.Equal(t, 24, sections[1].Start)
	assert.Equal(t, len(twoSectionText), sections[1].End)
}

func TestParseSections_Contiguous(t *testing.T) {
	text := "== a ==\nx\n=== b ===\ny\n== c ==\nz\n"
	sections := ParseSections(text)

	require.Len(t, sections, 3)
	for i := 0; i+1 < len(sections); i++ {
		assert.Equal(t, sections[i+1].Start, sections[i].End)
		assert.Equal(t, i, sections[i].Index)
	}
	assert.Equal(t, len(text), sections[2].End)
	assert.Equal(t, 3, sections[1].Level)
}

func TestParseSections_Deterministic(t *testing.T) {
	first := ParseSections(twoSectionText)
	second := ParseSections(twoSectionText)

	assert.Equal(t, first, second)
}

func TestParseSections_PreservesTitleCase(t *testing.T) {
	sections := ParseSections("==  Alpha Wiki  ==\n")

	require.Len(t, sections, 1)
	assert.Equal(t, "Alpha Wiki", sections[0].Title)
	assert.Equal(t, "alpha wiki", sections[0].Key())
}

func TestParseSections_TrailingWhitespace(t *testing.T) {
	sections := ParseSections("== en ==  \t\r\nbody")

	require.Len(t, sections, 1)
	assert.Equal(t, "en", sections[0].Title)
}

func TestParseSections_UnbalancedMarkers(t *testing.T) {
	sections := ParseSections("=== a ==\n")

	require.Len(t, sections, 1)
	assert.Equal(t, 2, sections[0].Level)
	assert.Equal(t, "= a", sections[0].Title)
}

func TestParseSections_NotHeadings(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare markers", "==\n"},
		{"blank title", "= =\n"},
		{"mid line", "text == x ==\n"},
		{"leading space", " == x ==\n"},
		{"no closing run", "== x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseSections(tt.text))
		})
	}
}

func TestParseSections_IgnoresMaskedBlocks(t *testing.T) {
	text := "<!--\n== hidden ==\n-->\n<nowiki>\n== raw ==\n</nowiki>\n<PRE>\n== pre ==\n</PRE>\n== shown ==\n"

	sections := ParseSections(text)

	require.Len(t, sections, 1)
	assert.Equal(t, "shown", sections[0].Title)
}

func TestParseSections_MaskingWithMultiByteText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		titles []string
	}{
		{
			name:   "dotted capital I before a comment",
			text:   strings.Repeat("İ", 20) + "\n== alpha ==\n<!--ccccccccccccc-->\n{|\n|}\n",
			titles: []string{"alpha"},
		},
		{
			name:   "letter that grows when lowered",
			text:   strings.Repeat("Ⱥ", 15) + "\n<nowiki>\n== raw ==\n</nowiki>\n== beta ==\n{|\n|}\n",
			titles: []string{"beta"},
		},
		{
			name:   "invalid UTF-8 before a comment",
			text:   "== alpha ==\n{|\n|}\n" + strings.Repeat("\xff", 10) + "<!--\n== beta ==\n-->\n",
			titles: []string{"alpha"},
		},
		{
			name:   "mixed bytes around pre block",
			text:   "İ\xffȺ\n<PRE>\n== hidden ==\n</PRE>\nżółw\n== gamma ==\n{|\n|}\n== delta ==\n",
			titles: []string{"gamma", "delta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := ParseSections(tt.text)

			titles := make([]string, 0, len(sections))
			for _, s := range sections {
				titles = append(titles, s.Title)
				assert.Equal(t, byte('='), tt.text[s.Start], "section %q must start at its heading", s.Title)
				assert.True(t, strings.HasPrefix(tt.text[s.Start:], "== "+s.Title+" =="))
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestMaskedRanges_OffsetsMatchOriginalText(t *testing.T) {
	text := strings.Repeat("İ", 5) + "<!--x-->" + strings.Repeat("\xff", 3) + "<NoWiki>y</NOWIKI>"

	ranges := maskedRanges(text)

	require.Len(t, ranges, 2)
	assert.Equal(t, "<!--x-->", text[ranges[0].from:ranges[0].to])
	assert.Equal(t, "<NoWiki>y</NOWIKI>", text[ranges[1].from:ranges[1].to])
}

func TestParseSections_UnterminatedComment(t *testing.T) {
	sections := ParseSections("== a ==\n<!-- open\n== b ==\n")

	require.Len(t, sections, 1)
	assert.Equal(t, "a", sections[0].Title)
}

func TestParseSections_MarkerIsNotASection(t *testing.T) {
	sections := ParseSections(InitializedMarker + "\n== en ==\n")

	require.Len(t, sections, 1)
	assert.Equal(t, "en", sections[0].Title)
}

func TestDocument_TerminatorOffset(t *testing.T) {
	doc := NewDocument(twoSectionText)
	sections := doc.Sections()

	pos, err := doc.TerminatorOffset(sections[0])

	require.NoError(t, err)
	assert.Equal(t, 21, pos)
	assert.Equal(t, TableTerminator, doc.Text[pos:pos+2])
}

func TestDocument_TerminatorOffset_StaysInsideSection(t *testing.T) {
	doc := NewDocument("== alpha ==\nno table here\n== beta ==\n{|\n|}")
	sections := doc.Sections()

	_, err := doc.TerminatorOffset(sections[0])

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStructural))

	var structErr *StructuralError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, "alpha", structErr.Section)
	assert.Equal(t, 0, structErr.Offset)
}

func TestDocument_SectionText(t *testing.T) {
	doc := NewDocument(twoSectionText)
	sections := doc.Sections()

	assert.Equal(t, "== alpha ==\n{|\n|}\n", doc.SectionText(sections[0]))
	assert.Equal(t, "== beta ==\n{|\n|}", doc.SectionText(sections[1]))
}

func TestDocument_Insert(t *testing.T) {
	doc := NewDocument("abcdef")

	updated := doc.Insert(3, "XYZ")

	assert.Equal(t, "abcXYZdef", updated.Text)
	assert.Equal(t, "abcdef", doc.Text)
}

func TestDocument_InsertDoesNotMoveEarlierSections(t *testing.T) {
	doc := NewDocument(twoSectionText)
	before := doc.Sections()

	pos, err := doc.TerminatorOffset(before[1])
	require.NoError(t, err)
	after := doc.Insert(pos, "|-\n|row\n").Sections()

	require.Len(t, after, 2)
	assert.Equal(t, before[0].Start, after[0].Start)
	assert.Equal(t, before[0].End, after[0].End)
	assert.Equal(t, before[1].Start, after[1].Start)
}
