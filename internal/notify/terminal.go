package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
)

// Terminal writes one styled line per event.
type Terminal struct {
	w        io.Writer
	messages Messages

	mu sync.Mutex
}

func NewTerminal(w io.Writer, locale Locale) *Terminal {
	return &Terminal{w: w, messages: MessagesFor(locale)}
}

func (t *Terminal) Notify(_ context.Context, event Event) {
	if t.w == nil {
		return
	}
	msg := t.messages.For(event)

	marker, style := "✓", infoStyle
	if event.Kind.Severity() == SeverityError {
		marker, style = "✗", errorStyle
	}

	line := style.Render(marker + " " + msg.Title)
	if msg.Detail != "" {
		line += " " + mutedStyle.Render(msg.Detail)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, line)
}
