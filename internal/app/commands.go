package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/rbright/hoteladvisor/internal/cli"
	"github.com/rbright/hoteladvisor/internal/doctor"
	"github.com/rbright/hoteladvisor/internal/input"
	"github.com/rbright/hoteladvisor/internal/notify"
	"github.com/rbright/hoteladvisor/internal/render"
	"github.com/rbright/hoteladvisor/internal/service"
	"github.com/rbright/hoteladvisor/internal/session"
	"github.com/rbright/hoteladvisor/internal/tui"
	"github.com/rbright/hoteladvisor/internal/version"
)

var errChecksFailed = errors.New("one or more checks failed")

func (r *Runner) Ask(ctx context.Context, g cli.Globals, opts cli.AskOptions) error {
	e, err := r.bootstrap(g, "ask")
	if err != nil {
		return err
	}
	defer e.close()

	notifier := notify.FromConfig(e.loaded.Config.Notify, r.Stderr, e.logger)
	defer notify.Wait(notifier)
	s := e.session(nil, notifier)

	if opts.Preset > 0 {
		_, err = s.AskPreset(ctx, opts.Preset-1)
	} else {
		s.Input.SetQueryText(opts.Question)
		_, err = s.Ask(ctx)
	}
	if err != nil {
		return err
	}
	return r.deliver(ctx, s, opts.AnswerOptions)
}

func (r *Runner) Listen(ctx context.Context, g cli.Globals, opts cli.AnswerOptions) error {
	e, err := r.bootstrap(g, "listen")
	if err != nil {
		return err
	}
	defer e.close()

	capability, reason := e.detectVoice()
	notifier := notify.FromConfig(e.loaded.Config.Notify, r.Stderr, e.logger)
	defer notify.Wait(notifier)
	s := e.session(capability, notifier)

	result, err := s.ListenAndAsk(ctx)
	if err != nil {
		if errors.Is(err, input.ErrCapabilityUnavailable) {
			return fmt.Errorf("%w: %s", err, reason)
		}
		return err
	}
	fmt.Fprintf(r.Stderr, "> %s\n", result.Query)
	return r.deliver(ctx, s, opts)
}

// deliver prints the current answer and runs the requested follow-ups.
// Playback runs last because it blocks.
func (r *Runner) deliver(ctx context.Context, s *session.Session, opts cli.AnswerOptions) error {
	answer, ok := s.Exchange.Answer()
	if !ok {
		return session.ErrNoAnswer
	}
	if opts.HTML {
		fmt.Fprintln(r.Stdout, answer.Markup)
	} else {
		fmt.Fprintln(r.Stdout, render.Terminal(answer.Document, terminalWidth(r.Stdout)))
	}

	if opts.Copy {
		if err := s.CopyAnswer(ctx); err != nil {
			return err
		}
	}
	if opts.SaveAudio {
		if _, err := s.ExportAudio(ctx); err != nil {
			return err
		}
	}
	if opts.Play {
		if err := s.PlayAudio(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) TUI(ctx context.Context, g cli.Globals) error {
	e, err := r.bootstrap(g, "tui")
	if err != nil {
		return err
	}
	defer e.close()

	cfg := e.loaded.Config
	notifyCfg := cfg.Notify
	// Terminal notices would corrupt the alternate screen; toasts replace them.
	if strings.EqualFold(strings.TrimSpace(notifyCfg.Backend), "terminal") {
		notifyCfg.Backend = "none"
	}
	toasts := tui.NewToaster(notify.ParseLocale(cfg.Notify.Locale))
	notifier := notify.Multi{toasts, notify.FromConfig(notifyCfg, r.Stderr, e.logger)}
	defer notify.Wait(notifier)

	capability, reason := e.detectVoice()
	return tui.Run(ctx, tui.Options{
		Session:     e.session(capability, notifier),
		Toasts:      toasts,
		VoiceReason: reason,
		Input:       r.Stdin,
		Output:      r.Stdout,
	})
}

func (r *Runner) Presets(context.Context) error {
	for i, preset := range input.Presets {
		fmt.Fprintf(r.Stdout, "%d. %s\n", i+1, preset)
	}
	return nil
}

func (r *Runner) Render(_ context.Context, _ cli.Globals, opts cli.RenderOptions) error {
	in := r.Stdin
	if in == nil {
		in = os.Stdin
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read answer: %w", err)
	}

	doc := render.Format(strings.TrimRight(string(raw), "\n"), render.Hotels)
	if opts.HTML {
		fmt.Fprintln(r.Stdout, doc.HTML())
		return nil
	}
	fmt.Fprintln(r.Stdout, render.Terminal(doc, terminalWidth(r.Stdout)))
	return nil
}

func (r *Runner) Stub(ctx context.Context, g cli.Globals, opts cli.StubOptions) error {
	e, err := r.bootstrap(g, "stub")
	if err != nil {
		return err
	}
	defer e.close()

	var clip []byte
	if opts.AudioPath != "" {
		clip, err = os.ReadFile(opts.AudioPath)
		if err != nil {
			return fmt.Errorf("read stub audio: %w", err)
		}
	}

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}
	server := &http.Server{
		Handler:           service.NewStubHandler(service.StubOptions{Audio: clip, Logger: e.logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(r.Stdout, "serving stub recommendations on http://%s/ask\n", listener.Addr())
	e.logger.Info("stub serving", "addr", listener.Addr().String(), "audio_bytes", len(clip))

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(listener) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("stub server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stub shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stub server: %w", err)
	}
	return nil
}

func (r *Runner) Devices(ctx context.Context) error {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return errors.New("no audio devices found")
	}

	for _, device := range devices {
		mark := " "
		if device.Default {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			mark, device.ID, device.Description, device.State,
			yesNo(device.Available), yesNo(device.Muted),
		)
	}
	return nil
}

func (r *Runner) Doctor(ctx context.Context, g cli.Globals) error {
	e, err := r.bootstrap(g, "doctor")
	if err != nil {
		return err
	}
	defer e.close()

	report := doctor.Run(ctx, e.loaded)
	fmt.Fprintln(r.Stdout, report.String())
	if !report.OK() {
		return errChecksFailed
	}
	return nil
}

func (r *Runner) Version(context.Context) error {
	fmt.Fprintln(r.Stdout, version.String())
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// terminalWidth returns the width of w when it is a terminal, else zero
// (no wrapping).
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
