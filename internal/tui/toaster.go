package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rbright/hoteladvisor/internal/notify"
)

// ToastMsg shows one notification in the status area.
type ToastMsg struct {
	Kind notify.Kind
	Text string
}

// Toaster is a notify.Notifier that forwards events into a running program.
// Events raised while no program is attached are dropped.
type Toaster struct {
	messages notify.Messages

	mu   sync.Mutex
	send func(tea.Msg)
}

func NewToaster(locale notify.Locale) *Toaster {
	return &Toaster{messages: notify.MessagesFor(locale)}
}

// Attach routes future events to send; nil detaches.
func (t *Toaster) Attach(send func(tea.Msg)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.send = send
}

func (t *Toaster) Notify(_ context.Context, event notify.Event) {
	t.mu.Lock()
	send := t.send
	t.mu.Unlock()
	if send == nil {
		return
	}
	send(ToastMsg{Kind: event.Kind, Text: t.messages.For(event).Text()})
}
