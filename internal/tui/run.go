package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rbright/hoteladvisor/internal/session"
)

type Options struct {
	Session     *session.Session
	// Toasts receives the session's notifications while the program runs.
	Toasts      *Toaster
	VoiceReason string
	Input       io.Reader
	Output      io.Writer
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(NewModel(ctx, opts.Session, opts.VoiceReason), programOpts...)
	if opts.Toasts != nil {
		opts.Toasts.Attach(p.Send)
		defer opts.Toasts.Attach(nil)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
