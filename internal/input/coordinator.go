// Package input owns the editable query and bridges a dictation capability
// into it.
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rbright/hoteladvisor/internal/fsm"
	"github.com/rbright/hoteladvisor/internal/logging"
	"github.com/rbright/hoteladvisor/internal/notify"
	"github.com/rbright/hoteladvisor/internal/voice"
)

// DefaultLanguage is the recognition language for voice capture.
const DefaultLanguage = "en-US"

var (
	ErrCapabilityUnavailable = errors.New("voice input is not available")
	ErrRecognitionFailure    = errors.New("speech recognition failed")
	ErrVoiceSessionActive    = errors.New("a voice session is already active")
	ErrUnknownPreset         = errors.New("unknown preset")
)

// Coordinator holds the query text. Voice results and manual edits both
// replace it; the last writer wins.
type Coordinator struct {
	logger     *slog.Logger
	capability voice.Capability
	notifier   notify.Notifier
	language   string
	presets    []string

	mu       sync.RWMutex
	query    string
	revision uint64
	voice    fsm.VoiceState
}

// NewCoordinator wires the coordinator. A nil capability means the host has
// no speech recognition.
func NewCoordinator(logger *slog.Logger, capability voice.Capability, notifier notify.Notifier, language string) *Coordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Coordinator{
		logger:     logger,
		capability: capability,
		notifier:   notify.OrNop(notifier),
		language:   language,
		presets:    Presets,
		voice:      fsm.VoiceIdle,
	}
}

// SetQueryText replaces the query verbatim. Validation happens on submit.
func (c *Coordinator) SetQueryText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = s
	c.revision++
}

func (c *Coordinator) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// Revision counts query writes, so callers can tell whether a voice session
// produced a transcript.
func (c *Coordinator) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Presets returns a copy of the example questions.
func (c *Coordinator) Presets() []string {
	return append([]string(nil), c.presets...)
}

// SelectPreset replaces the query with preset i (zero-based) and touches
// nothing else.
func (c *Coordinator) SelectPreset(i int) error {
	if i < 0 || i >= len(c.presets) {
		return fmt.Errorf("%w: %d (have %d)", ErrUnknownPreset, i, len(c.presets))
	}
	c.SetQueryText(c.presets[i])
	return nil
}

// VoiceAvailable reports whether a capability was detected at construction.
func (c *Coordinator) VoiceAvailable() bool {
	return c.capability != nil
}

// Listening reports whether a voice session is active.
func (c *Coordinator) Listening() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voice == fsm.VoiceListening
}

// BeginVoiceCapture runs one single-utterance session and blocks until it
// ends. On success the top transcript replaces the query. A natural end with
// no result returns nil and leaves the query unchanged.
func (c *Coordinator) BeginVoiceCapture(ctx context.Context) error {
	if c.capability == nil {
		c.logger.Info("voice unavailable")
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindCapabilityUnavailable})
		return ErrCapabilityUnavailable
	}

	if err := c.voiceTransition(fsm.VoiceEventBegin); err != nil {
		c.logger.Warn("voice capture rejected", "reason", "session_active")
		return ErrVoiceSessionActive
	}
	defer c.endSession()

	var recognitionErr error
	handler := voice.HandlerFuncs{
		Start: func() {
			c.notifier.Notify(ctx, notify.Event{Kind: notify.KindListeningStarted})
		},
		Result: func(transcript string) {
			c.mu.Lock()
			if c.voice == fsm.VoiceListening {
				c.query = transcript
				c.revision++
				c.voice, _ = fsm.VoiceTransition(c.voice, fsm.VoiceEventResult)
			}
			c.mu.Unlock()
		},
		Error: func(err error) {
			if recognitionErr != nil {
				return
			}
			recognitionErr = err
			_ = c.voiceTransition(fsm.VoiceEventError)
			c.notifier.Notify(ctx, notify.Event{Kind: notify.KindRecognitionError})
		},
		End: c.endSession,
	}

	settings := voice.Settings{Language: c.language, Continuous: false, InterimResults: false}
	err := c.capability.Listen(ctx, settings, handler)

	if recognitionErr != nil {
		return fmt.Errorf("%w: %w", ErrRecognitionFailure, recognitionErr)
	}
	if err != nil && ctx.Err() == nil {
		// The capability failed without reporting through the handler.
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindRecognitionError})
		return fmt.Errorf("%w: %w", ErrRecognitionFailure, err)
	}
	return nil
}

func (c *Coordinator) voiceTransition(event fsm.VoiceEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fsm.VoiceTransition(c.voice, event)
	if err != nil {
		return err
	}
	c.voice = next
	return nil
}

// endSession clears the active flag. It is safe to call more than once.
func (c *Coordinator) endSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voice == fsm.VoiceListening {
		c.voice, _ = fsm.VoiceTransition(c.voice, fsm.VoiceEventEnd)
	}
}
