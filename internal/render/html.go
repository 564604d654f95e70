package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders the document as a sequence of <p> elements. Text is escaped by
// the renderer; hotel names are wrapped in a styled <span>.
func (d Document) HTML() string {
	var b strings.Builder
	for _, para := range d.Paragraphs {
		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&b, paragraphNode(para))
	}
	return b.String()
}

func paragraphNode(para Paragraph) *html.Node {
	p := element(atom.P)
	for i, line := range para {
		if i > 0 {
			p.AppendChild(element(atom.Br))
		}
		for _, seg := range line {
			text := &html.Node{Type: html.TextNode, Data: seg.Text}
			if !seg.Hotel {
				p.AppendChild(text)
				continue
			}
			span := element(atom.Span)
			span.Attr = []html.Attribute{{Key: "style", Val: HighlightStyle}}
			span.AppendChild(text)
			p.AppendChild(span)
		}
	}
	return p
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
