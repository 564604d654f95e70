// Package session composes the input coordinator and the exchange controller
// into the actions a front-end offers: ask, listen then ask, play, save and
// copy.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rbright/hoteladvisor/internal/exchange"
	"github.com/rbright/hoteladvisor/internal/input"
	"github.com/rbright/hoteladvisor/internal/logging"
	"github.com/rbright/hoteladvisor/internal/media"
)

var (
	ErrNothingHeard = errors.New("no speech recognized")
	ErrNoAnswer     = errors.New("no answer yet")
)

// Player plays decoded answer audio.
type Player interface {
	Play(ctx context.Context, clip media.Clip) error
}

// Copier puts text on the clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

type Options struct {
	Player    Player
	Copier    Copier
	ExportDir string
	Logger    *slog.Logger
}

type Session struct {
	Input    *input.Coordinator
	Exchange *exchange.Controller

	player    Player
	copier    Copier
	exportDir string
	logger    *slog.Logger
}

func New(in *input.Coordinator, ex *exchange.Controller, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		Input:     in,
		Exchange:  ex,
		player:    opts.Player,
		copier:    opts.Copier,
		exportDir: opts.ExportDir,
		logger:    logger,
	}
}

// ExportDir is where ExportAudio writes.
func (s *Session) ExportDir() string { return s.exportDir }

// Ask submits the current query.
func (s *Session) Ask(ctx context.Context) (exchange.Result, error) {
	return s.Exchange.Submit(ctx, s.Input.Query())
}

// AskPreset selects preset i and submits it.
func (s *Session) AskPreset(ctx context.Context, i int) (exchange.Result, error) {
	if err := s.Input.SelectPreset(i); err != nil {
		return exchange.Result{}, err
	}
	return s.Ask(ctx)
}

// ListenAndAsk captures one utterance and submits it. A session that ends
// without a transcript returns ErrNothingHeard and issues no request.
func (s *Session) ListenAndAsk(ctx context.Context) (exchange.Result, error) {
	before := s.Input.Revision()
	if err := s.Input.BeginVoiceCapture(ctx); err != nil {
		return exchange.Result{}, err
	}
	if s.Input.Revision() == before {
		if err := ctx.Err(); err != nil {
			return exchange.Result{}, err
		}
		return exchange.Result{}, ErrNothingHeard
	}
	return s.Ask(ctx)
}

// ExportAudio saves the current answer's audio.
func (s *Session) ExportAudio(ctx context.Context) (string, error) {
	return s.Exchange.ExportCurrent(ctx, s.exportDir)
}

// PlayAudio plays the current answer's audio and blocks until it finishes.
func (s *Session) PlayAudio(ctx context.Context) error {
	answer, ok := s.Exchange.Answer()
	if !ok {
		return ErrNoAnswer
	}
	if answer.Audio == nil {
		return exchange.ErrNoAudioAvailable
	}
	if s.player == nil {
		return fmt.Errorf("audio playback is not configured")
	}
	if err := s.player.Play(ctx, *answer.Audio); err != nil {
		s.logger.Error("answer playback failed", "error", err.Error())
		return fmt.Errorf("play answer audio: %w", err)
	}
	return nil
}

// CopyAnswer puts the current answer's plain text on the clipboard.
func (s *Session) CopyAnswer(ctx context.Context) error {
	answer, ok := s.Exchange.Answer()
	if !ok {
		return ErrNoAnswer
	}
	if s.copier == nil {
		return fmt.Errorf("clipboard is not configured")
	}
	return s.copier.Copy(ctx, answer.Document.PlainText())
}
