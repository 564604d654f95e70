package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rbright/hoteladvisor/internal/exchange"
	"github.com/rbright/hoteladvisor/internal/fsm"
	"github.com/rbright/hoteladvisor/internal/notify"
	"github.com/rbright/hoteladvisor/internal/render"
	"github.com/rbright/hoteladvisor/internal/session"
)

// answerMsg carries a completed (or rejected) submission.
type answerMsg struct {
	result exchange.Result
	err    error
}

// voiceDoneMsg ends a voice capture started at revision.
type voiceDoneMsg struct {
	revision uint64
	err      error
}

// actionDoneMsg reports save, play and copy outcomes.
type actionDoneMsg struct {
	action string
	detail string
	err    error
}

// Model is the root bubbletea model.
type Model struct {
	ctx         context.Context
	session     *session.Session
	voiceReason string

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	width     int
	height    int
	listening bool
	toast     string
	toastErr  bool
	status    string
}

// NewModel builds the model. voiceReason explains why voice is unavailable
// and is empty when it is.
func NewModel(ctx context.Context, s *session.Session, voiceReason string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about hotels in Tunisia..."
	ti.Prompt = "? "
	ti.CharLimit = 0
	ti.SetValue(s.Input.Query())
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	vp := viewport.New(80, 10)
	vp.KeyMap = viewport.KeyMap{}

	return Model{
		ctx:         ctx,
		session:     s,
		voiceReason: voiceReason,
		input:       ti,
		spinner:     sp,
		viewport:    vp,
		width:       80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ToastMsg:
		m.toast = msg.Text
		m.toastErr = msg.Kind.Severity() == notify.SeverityError
		return m, nil

	case answerMsg:
		if errors.Is(msg.err, exchange.ErrExchangeInFlight) {
			return m, nil
		}
		m.refreshAnswer()
		return m, nil

	case voiceDoneMsg:
		m.listening = false
		if m.session.Input.Revision() != msg.revision {
			m.input.SetValue(m.session.Input.Query())
			m.input.CursorEnd()
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = strings.TrimSpace(msg.action + " " + msg.detail)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		m.session.Input.SetQueryText(m.input.Value())
		m.status = ""
		return m, m.submit()
	case "ctrl+r":
		return m.startVoice()
	case "ctrl+s":
		return m, m.run("saved", func(ctx context.Context) (string, error) {
			return m.session.ExportAudio(ctx)
		})
	case "ctrl+p":
		return m, m.run("played", func(ctx context.Context) (string, error) {
			return "", m.session.PlayAudio(ctx)
		})
	case "ctrl+y":
		return m, m.run("copied", func(ctx context.Context) (string, error) {
			return "", m.session.CopyAnswer(ctx)
		})
	case "pgup":
		m.viewport.PageUp()
		return m, nil
	case "pgdown":
		m.viewport.PageDown()
		return m, nil
	default:
		if i, ok := presetKey(key); ok {
			if err := m.session.Input.SelectPreset(i); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.input.SetValue(m.session.Input.Query())
			m.input.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// presetKey maps alt+1..alt+9 and f1..f9 to a zero-based preset index.
func presetKey(key string) (int, bool) {
	var digit string
	switch {
	case strings.HasPrefix(key, "alt+"):
		digit = strings.TrimPrefix(key, "alt+")
	case strings.HasPrefix(key, "f"):
		digit = strings.TrimPrefix(key, "f")
	default:
		return 0, false
	}
	if len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return 0, false
	}
	return int(digit[0] - '1'), true
}

func (m Model) submit() tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		result, err := s.Ask(ctx)
		return answerMsg{result: result, err: err}
	}
}

func (m Model) startVoice() (tea.Model, tea.Cmd) {
	if m.listening {
		return m, nil
	}
	m.listening = m.session.Input.VoiceAvailable()
	if !m.listening && m.voiceReason != "" {
		m.status = "voice unavailable: " + m.voiceReason
	}
	ctx, s := m.ctx, m.session
	revision := s.Input.Revision()
	return m, func() tea.Msg {
		err := s.Input.BeginVoiceCapture(ctx)
		return voiceDoneMsg{revision: revision, err: err}
	}
}

func (m Model) run(action string, fn func(context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		detail, err := fn(ctx)
		return actionDoneMsg{action: action, detail: detail, err: err}
	}
}

// refreshAnswer mirrors the controller's visible answer into the viewport.
// A failed exchange leaves no answer, so the pane clears.
func (m *Model) refreshAnswer() {
	answer, ok := m.session.Exchange.Answer()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(render.Terminal(answer.Document, m.viewport.Width))
	m.viewport.GotoTop()
}

func (m *Model) layout() {
	m.input.Width = max(m.width-4, 10)
	// title, presets, input, blank, status
	chrome := 5 + len(m.session.Input.Presets())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 3)
	m.refreshAnswer()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Tunisia hotel advisor"))
	b.WriteString("\n")
	for i, preset := range m.session.Input.Presets() {
		b.WriteString(PresetStyle.Render(fmt.Sprintf("F%d %s", i+1, preset)))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	var parts []string
	switch m.session.Exchange.State() {
	case fsm.StatePending:
		parts = append(parts, m.spinner.View()+" asking")
	case fsm.StateFailed:
		parts = append(parts, "failed")
	}
	if m.listening {
		parts = append(parts, "listening")
	}
	if m.toast != "" {
		style := ToastStyle
		if m.toastErr {
			style = ErrorStyle
		}
		parts = append(parts, style.Render(m.toast))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "enter ask · ctrl+r voice · ctrl+s save · ctrl+p play · ctrl+y copy · esc quit")
	return StatusBarStyle.Width(m.width).Render(strings.Join(parts, " | "))
}
