// Package render turns raw recommendation text into a structural document:
// paragraphs of lines of segments, where a segment is either plain text or a
// highlighted hotel name. Markup is produced from the structure, never by
// splicing strings, so answer text is always escaped on output.
package render

import "strings"

// Segment is a run of text inside a line.
type Segment struct {
	Text  string
	Hotel bool
}

// Line is the content between two line breaks.
type Line []Segment

// Paragraph is a run of lines between paragraph boundaries.
type Paragraph []Line

// Document is the formatted answer. It always holds at least one paragraph.
type Document struct {
	Paragraphs []Paragraph
}

const (
	literalBreak     = "\n"
	escapedBreak     = `\n`
	literalParagraph = "\n\n"
	escapedParagraph = `\n\n`
)

// Format segments text into paragraphs and lines, then highlights every
// occurrence of each name in hotels, in list order.
//
// Paragraph boundaries are double newlines, literal or backslash-escaped;
// remaining single newlines become line breaks.
func Format(text string, hotels []string) Document {
	doc := Document{Paragraphs: splitParagraphs(text)}
	for _, name := range hotels {
		if name == "" {
			continue
		}
		for p := range doc.Paragraphs {
			for l := range doc.Paragraphs[p] {
				doc.Paragraphs[p][l] = highlight(doc.Paragraphs[p][l], name)
			}
		}
	}
	return doc
}

func splitParagraphs(text string) []Paragraph {
	var (
		paragraphs []Paragraph
		lines      []Line
		current    strings.Builder
	)

	flushLine := func() {
		line := Line{}
		if current.Len() > 0 {
			line = Line{{Text: current.String()}}
		}
		lines = append(lines, line)
		current.Reset()
	}
	flushParagraph := func() {
		flushLine()
		paragraphs = append(paragraphs, Paragraph(lines))
		lines = nil
	}

	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, literalParagraph):
			flushParagraph()
			i += len(literalParagraph)
		case strings.HasPrefix(rest, escapedParagraph):
			flushParagraph()
			i += len(escapedParagraph)
		case strings.HasPrefix(rest, literalBreak):
			flushLine()
			i += len(literalBreak)
		case strings.HasPrefix(rest, escapedBreak):
			flushLine()
			i += len(escapedBreak)
		default:
			current.WriteByte(text[i])
			i++
		}
	}
	flushParagraph()

	return paragraphs
}

// highlight splits every plain segment of line around name. Segments that are
// already highlighted are left alone.
func highlight(line Line, name string) Line {
	out := make(Line, 0, len(line))
	for _, seg := range line {
		if seg.Hotel || !strings.Contains(seg.Text, name) {
			out = append(out, seg)
			continue
		}
		rest := seg.Text
		for {
			idx := strings.Index(rest, name)
			if idx < 0 {
				break
			}
			if idx > 0 {
				out = append(out, Segment{Text: rest[:idx]})
			}
			out = append(out, Segment{Text: name, Hotel: true})
			rest = rest[idx+len(name):]
		}
		if rest != "" {
			out = append(out, Segment{Text: rest})
		}
	}
	return out
}

// PlainText renders the document back to text with literal newlines.
func (d Document) PlainText() string {
	var b strings.Builder
	for p, para := range d.Paragraphs {
		if p > 0 {
			b.WriteString(literalParagraph)
		}
		for l, line := range para {
			if l > 0 {
				b.WriteString(literalBreak)
			}
			for _, seg := range line {
				b.WriteString(seg.Text)
			}
		}
	}
	return b.String()
}

// Highlights counts highlighted segments.
func (d Document) Highlights() int {
	count := 0
	for _, para := range d.Paragraphs {
		for _, line := range para {
			for _, seg := range line {
				if seg.Hotel {
					count++
				}
			}
		}
	}
	return count
}

// HotelNames lists highlighted names in document order, with repeats.
func (d Document) HotelNames() []string {
	var names []string
	for _, para := range d.Paragraphs {
		for _, line := range para {
			for _, seg := range line {
				if seg.Hotel {
					names = append(names, seg.Text)
				}
			}
		}
	}
	return names
}
