package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var hotelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(HighlightColor)).
	Bold(true)

// Terminal renders the document for a terminal, wrapping paragraphs to width
// when width is positive.
func Terminal(d Document, width int) string {
	block := lipgloss.NewStyle()
	if width > 0 {
		block = block.Width(width)
	}

	paragraphs := make([]string, 0, len(d.Paragraphs))
	for _, para := range d.Paragraphs {
		lines := make([]string, 0, len(para))
		for _, line := range para {
			var b strings.Builder
			for _, seg := range line {
				if seg.Hotel {
					b.WriteString(hotelStyle.Render(seg.Text))
					continue
				}
				b.WriteString(seg.Text)
			}
			lines = append(lines, b.String())
		}
		paragraphs = append(paragraphs, block.Render(strings.Join(lines, "\n")))
	}
	return strings.Join(paragraphs, "\n\n")
}
