// Package app binds the command tree to concrete components: configuration,
// logging, notifications, the recommendation client, and voice capture.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rbright/hoteladvisor/internal/cli"
	"github.com/rbright/hoteladvisor/internal/config"
	"github.com/rbright/hoteladvisor/internal/exchange"
	"github.com/rbright/hoteladvisor/internal/input"
	"github.com/rbright/hoteladvisor/internal/logging"
	"github.com/rbright/hoteladvisor/internal/media"
	"github.com/rbright/hoteladvisor/internal/notify"
	"github.com/rbright/hoteladvisor/internal/output"
	"github.com/rbright/hoteladvisor/internal/service"
	"github.com/rbright/hoteladvisor/internal/session"
	"github.com/rbright/hoteladvisor/internal/voice"
)

const programName = "hoteladvisor"

// Runner implements every command. Logger, when set, replaces the JSONL file
// logger.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := &Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute runs one command and maps its outcome to an exit status: 0 on
// success, 2 on invalid invocation, 1 on any other failure.
func (r *Runner) Execute(ctx context.Context, args []string) int {
	root := cli.NewRootCommand(programName, r, r.Stdout, r.Stderr)
	err := root.Run(ctx, append([]string{programName}, args...))
	if err == nil {
		return 0
	}

	fmt.Fprintf(r.Stderr, "error: %v\n", err)
	if isUsageFailure(err) {
		fmt.Fprintf(r.Stderr, "Run '%s --help' for usage.\n", programName)
		return 2
	}
	return 1
}

func isUsageFailure(err error) bool {
	return cli.IsUsageError(err) ||
		errors.Is(err, input.ErrUnknownPreset) ||
		errors.Is(err, exchange.ErrEmptyQuery)
}

// env is the per-command runtime built from the loaded configuration.
type env struct {
	loaded  config.Loaded
	logger  *slog.Logger
	logPath string
	close   func()
}

func (r *Runner) bootstrap(g cli.Globals, command string) (*env, error) {
	loaded, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	e := &env{loaded: loaded, logger: r.Logger, close: func() {}}
	if e.logger == nil {
		rt, err := logging.New(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		e.logger, e.logPath = rt.Logger, rt.Path
		e.close = func() { _ = rt.Close() }
	}

	for _, w := range loaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		e.logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	e.logger.Info("command start",
		"command", command,
		"config", loaded.Path,
		"env_file", loaded.EnvFile,
		"log", e.logPath,
	)
	return e, nil
}

// session wires the coordinator and controller for one command. The caller
// supplies the notifier so the TUI can route events into toasts.
func (e *env) session(capability voice.Capability, notifier notify.Notifier) *session.Session {
	cfg := e.loaded.Config
	client := service.NewClient(cfg.Service.AskURL(), cfg.Service.Timeout, e.logger)

	in := input.NewCoordinator(e.logger, capability, notifier, cfg.Voice.Language)
	ex := exchange.NewController(e.logger, client, notifier)
	return session.New(in, ex, session.Options{
		Player:    media.NewPlayer(),
		Copier:    output.NewClipboard(cfg.Clipboard.Argv, e.logger),
		ExportDir: config.ResolveExportDir(cfg.Export),
		Logger:    e.logger,
	})
}

// detectVoice detects dictation support and logs why it is missing.
func (e *env) detectVoice() (voice.Capability, string) {
	capability, reason := voice.Detect(e.loaded.Config, e.logger)
	if capability == nil {
		e.logger.Info("voice unavailable", "reason", reason)
	}
	return capability, reason
}
