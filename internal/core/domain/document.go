package domain

import "strings"

// TableTerminator is the wikitext token that closes a table.
// Rows are inserted immediately before it.
const TableTerminator = "|}"

// maxHeadingLevel is the deepest heading MediaWiki recognises (====== h6 ======).
const maxHeadingLevel = 6

// Document is the raw text of a wiki page for one synchronisation pass.
// The text is never modified in place; edits return a new Document.
type Document struct {
	// Text is the full wikitext of the page.
	Text string
}

// NewDocument wraps raw page text.
func NewDocument(text string) Document {
	return Document{Text: text}
}

// Section is a titled subdivision of a document, delimited by headings.
type Section struct {
	// Index is the zero-based position of the section in document order.
	Index int

	// Title is the heading text with the = markers stripped and trimmed.
	// The original casing is preserved; use Key for matching.
	Title string

	// Level is the number of = characters delimiting the heading (1-6).
	Level int

	// Start is the byte offset of the first character of the heading line.
	Start int

	// End is the Start of the next section, or len(Text) for the last one.
	End int
}

// Key returns the normalised title used to match data source identifiers.
func (s Section) Key() string {
	return NormaliseID(s.Title)
}

// Sections parses the document into its sections in top-to-bottom order.
// The result is recomputed on every call.
func (d Document) Sections() []Section {
	return ParseSections(d.Text)
}

// SectionText returns the raw text spanned by a section, heading included.
func (d Document) SectionText(s Section) string {
	return d.Text[s.Start:s.End]
}

// TerminatorOffset returns the absolute offset of the first table terminator
// inside the section's span. A section without one is malformed.
func (d Document) TerminatorOffset(s Section) (int, error) {
	idx := strings.Index(d.SectionText(s), TableTerminator)
	if idx < 0 {
		return -1, &StructuralError{
			Section: s.Title,
			Offset:  s.Start,
			Reason:  "no table terminator " + TableTerminator + " in section",
		}
	}
	return s.Start + idx, nil
}

// Insert returns a new document with s spliced in at pos.
func (d Document) Insert(pos int, s string) Document {
	return Document{Text: d.Text[:pos] + s + d.Text[pos:]}
}

// ParseSections returns the sections of text in document order.
//
// A heading is a line that begins and ends with runs of '=' (e.g. "== en ==").
// Trailing whitespace after the closing run is allowed. Headings inside HTML
// comments, <nowiki> or <pre> blocks are not sections.
func ParseSections(text string) []Section {
	masked := maskedRanges(text)

	var sections []Section
	for start := 0; start < len(text); {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}

		if text[start] == '=' && !inRanges(masked, start) {
			if title, level, ok := parseHeading(text[start:end]); ok {
				sections = append(sections, Section{
					Index: len(sections),
					Title: title,
					Level: level,
					Start: start,
				})
			}
		}

		start = end + 1
	}

	for i := range sections {
		if i+1 < len(sections) {
			sections[i].End = sections[i+1].Start
		} else {
			sections[i].End = len(text)
		}
	}

	return sections
}

// parseHeading recognises a single heading line.
func parseHeading(line string) (string, int, bool) {
	line = strings.TrimRight(line, " \t\r")

	left := 0
	for left < len(line) && line[left] == '=' {
		left++
	}
	right := 0
	for right < len(line)-left && line[len(line)-1-right] == '=' {
		right++
	}

	level := min(left, right, maxHeadingLevel)
	if level == 0 || len(line) <= 2*level {
		return "", 0, false
	}

	title := strings.TrimSpace(line[level : len(line)-level])
	if title == "" {
		return "", 0, false
	}
	return title, level, true
}

// span is a half-open byte range [from, to).
type span struct {
	from, to int
}

// blockMarkers are the constructs whose contents are never parsed as headings.
var blockMarkers = []struct {
	open, close string
}{
	{"<!--", "-->"},
	{"<nowiki>", "</nowiki>"},
	{"<pre>", "</pre>"},
}

// maskedRanges finds the regions of text that cannot contain headings.
// An unterminated block runs to the end of the text.
func maskedRanges(text string) []span {
	lower := asciiLower(text)

	var ranges []span
	for pos := 0; pos < len(lower); {
		next, which := -1, -1
		for i, m := range blockMarkers {
			idx := strings.Index(lower[pos:], m.open)
			if idx >= 0 && (next < 0 || pos+idx < next) {
				next, which = pos+idx, i
			}
		}
		if next < 0 {
			break
		}

		m := blockMarkers[which]
		closeIdx := strings.Index(lower[next+len(m.open):], m.close)
		end := len(lower)
		if closeIdx >= 0 {
			end = next + len(m.open) + closeIdx + len(m.close)
		}
		ranges = append(ranges, span{from: next, to: end})
		pos = end
	}
	return ranges
}

// asciiLower folds A-Z only, so byte offsets in the result are valid in text.
func asciiLower(text string) string {
	b := []byte(text)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func inRanges(ranges []span, pos int) bool {
	for _, r := range ranges {
		if pos >= r.from && pos < r.to {
			return true
		}
	}
	return false
}
