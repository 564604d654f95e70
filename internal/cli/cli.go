// Package cli declares the hoteladvisor command tree. Actions are delegated to
// a Handlers implementation so the tree can be tested without side effects.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
)

// Globals are flags accepted by every command.
type Globals struct {
	ConfigPath string
}

// AnswerOptions control what happens with a fulfilled answer.
type AnswerOptions struct {
	HTML      bool
	SaveAudio bool
	Play      bool
	Copy      bool
}

type AskOptions struct {
	AnswerOptions
	// Preset is one-based; zero means none.
	Preset   int
	Question string
}

type RenderOptions struct {
	HTML bool
}

type StubOptions struct {
	Addr      string
	AudioPath string
}

// Handlers runs each command.
type Handlers interface {
	Ask(ctx context.Context, g Globals, opts AskOptions) error
	Listen(ctx context.Context, g Globals, opts AnswerOptions) error
	TUI(ctx context.Context, g Globals) error
	Presets(ctx context.Context) error
	Render(ctx context.Context, g Globals, opts RenderOptions) error
	Stub(ctx context.Context, g Globals, opts StubOptions) error
	Devices(ctx context.Context) error
	Doctor(ctx context.Context, g Globals) error
	Version(ctx context.Context) error
}

// UsageError marks invalid invocation; it maps to exit status 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// IsUsageError reports whether err stems from invalid invocation.
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}

// NewRootCommand builds the command tree. Help goes to stdout and parse
// errors to stderr; nothing in the tree calls os.Exit.
func NewRootCommand(name string, h Handlers, stdout io.Writer, stderr io.Writer) *cli.Command {
	root := &cli.Command{
		Name:      name,
		Usage:     "Ask for Tunisian hotel recommendations by text or voice",
		ArgsUsage: "<command>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (default: $XDG_CONFIG_HOME/hoteladvisor/config.jsonc)",
			},
		},
		HideVersion:    true,
		OnUsageError:   onUsageError,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return usageErrorf("unknown command: %s", cmd.Args().First())
			}
			return cli.ShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			askCommand(h),
			listenCommand(h),
			{
				Name:  "tui",
				Usage: "Interactive front-end with presets, voice, playback and export",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.TUI(ctx, globals(cmd))
				},
			},
			{
				Name:  "presets",
				Usage: "List the example questions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.Presets(ctx)
				},
			},
			{
				Name:  "render",
				Usage: "Format an answer read from stdin",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "html", Usage: "print HTML markup instead of terminal text"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.Render(ctx, globals(cmd), RenderOptions{HTML: cmd.Bool("html")})
				},
			},
			{
				Name:  "stub",
				Usage: "Serve canned recommendations on POST /ask for demos and tests",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8000", Usage: "listen address"},
					&cli.StringFlag{Name: "audio", Usage: "audio file attached to every answer"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.Stub(ctx, globals(cmd), StubOptions{
						Addr:      cmd.String("addr"),
						AudioPath: cmd.String("audio"),
					})
				},
			},
			{
				Name:  "devices",
				Usage: "List audio input devices",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.Devices(ctx)
				},
			},
			{
				Name:  "doctor",
				Usage: "Run configuration and environment checks",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := noArgs(cmd); err != nil {
						return err
					}
					return h.Doctor(ctx, globals(cmd))
				},
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return h.Version(ctx)
				},
			},
		},
	}
	for _, sub := range root.Commands {
		sub.OnUsageError = onUsageError
	}
	return root
}

func askCommand(h Handlers) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a question to the recommendation service",
		ArgsUsage: "[question...]",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "preset",
				Usage: "ask example question `N` (see presets)",
				Validator: func(n int) error {
					if n < 0 {
						return fmt.Errorf("--preset must be positive")
					}
					return nil
				},
			},
		}, answerFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			question := strings.Join(cmd.Args().Slice(), " ")
			preset := cmd.Int("preset")
			// A blank question is passed through; the exchange controller
			// rejects it and raises the empty-query notice.
			if preset > 0 && strings.TrimSpace(question) != "" {
				return usageErrorf("use either --preset or a question, not both")
			}
			return h.Ask(ctx, globals(cmd), AskOptions{
				AnswerOptions: answerOptions(cmd),
				Preset:        preset,
				Question:      question,
			})
		},
	}
}

func listenCommand(h Handlers) *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Dictate one question, then ask it",
		Flags: answerFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := noArgs(cmd); err != nil {
				return err
			}
			return h.Listen(ctx, globals(cmd), answerOptions(cmd))
		},
	}
}

func answerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "html", Usage: "print HTML markup instead of terminal text"},
		&cli.BoolFlag{Name: "save-audio", Usage: "save answer audio to the export directory"},
		&cli.BoolFlag{Name: "play", Usage: "play answer audio"},
		&cli.BoolFlag{Name: "copy", Usage: "copy the answer text to the clipboard"},
	}
}

func answerOptions(cmd *cli.Command) AnswerOptions {
	return AnswerOptions{
		HTML:      cmd.Bool("html"),
		SaveAudio: cmd.Bool("save-audio"),
		Play:      cmd.Bool("play"),
		Copy:      cmd.Bool("copy"),
	}
}

func globals(cmd *cli.Command) Globals {
	return Globals{ConfigPath: cmd.String("config")}
}

func noArgs(cmd *cli.Command) error {
	if cmd.Args().Present() {
		return usageErrorf("unexpected arguments after command %q: %s", cmd.Name, strings.Join(cmd.Args().Slice(), " "))
	}
	return nil
}

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &UsageError{Err: err}
}
