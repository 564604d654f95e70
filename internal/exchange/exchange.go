// Package exchange owns the request lifecycle for one recommendation query at
// a time and turns a fulfilled answer into a rendered document and an audio
// clip.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/hoteladvisor/internal/fsm"
	"github.com/rbright/hoteladvisor/internal/media"
	"github.com/rbright/hoteladvisor/internal/notify"
	"github.com/rbright/hoteladvisor/internal/render"
	"github.com/rbright/hoteladvisor/internal/service"
)

// ExportFilename is the fixed name of the exported answer audio.
const ExportFilename = "tunisia-hotel-recommendation.mp3"

var (
	ErrEmptyQuery       = errors.New("query is empty")
	ErrTransportFailure = errors.New("recommendation service unreachable")
	ErrNoAudioAvailable = errors.New("answer carries no audio")
	ErrExchangeInFlight = errors.New("an exchange is already pending")
)

// Asker is the recommendation service boundary.
type Asker interface {
	Ask(ctx context.Context, query string) (service.Answer, error)
}

// AskFunc adapts a function to Asker.
type AskFunc func(context.Context, string) (service.Answer, error)

func (f AskFunc) Ask(ctx context.Context, query string) (service.Answer, error) {
	return f(ctx, query)
}

// Result is the outcome of the most recent completed exchange. Err is nil for
// a success and wraps ErrTransportFailure otherwise.
type Result struct {
	ID           string
	Query        string
	Text         string
	AudioPayload string
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Success reports whether the service answered.
func (r Result) Success() bool { return r.Err == nil }

// HasAudio reports whether the answer carried a non-empty audio payload.
func (r Result) HasAudio() bool {
	_, ok := media.NormalizeAudio(r.AudioPayload)
	return r.Success() && ok
}

// Answer is the rendered view of a successful Result. Audio is nil when the
// answer had no payload or the payload could not be decoded.
type Answer struct {
	Document render.Document
	Markup   string
	Audio    *media.Clip
}

// Option customizes a Controller.
type Option func(*Controller)

// WithHotels replaces the highlighted hotel list.
func WithHotels(hotels []string) Option {
	return func(c *Controller) {
		c.hotels = append([]string(nil), hotels...)
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller serializes exchanges: a submit while another is pending is
// rejected. The previous result stays readable until the next one completes.
type Controller struct {
	logger   *slog.Logger
	asker    Asker
	notifier notify.Notifier
	hotels   []string
	now      func() time.Time

	mu        sync.RWMutex
	state     fsm.State
	result    Result
	hasResult bool
	answer    Answer
	hasAnswer bool
}

func NewController(logger *slog.Logger, asker Asker, notifier notify.Notifier, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		logger:   logger,
		asker:    asker,
		notifier: notify.OrNop(notifier),
		hotels:   render.Hotels,
		now:      time.Now,
		state:    fsm.StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the lifecycle state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Result returns the most recent completed result.
func (c *Controller) Result() (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result, c.hasResult
}

// Answer returns the rendered answer of the most recent result, if it
// succeeded.
func (c *Controller) Answer() (Answer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.answer, c.hasAnswer
}

// Submit issues exactly one request for query and blocks until it completes.
// Empty queries never reach the service.
func (c *Controller) Submit(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		c.logger.Info("exchange rejected", "reason", "empty_query")
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindQueryEmpty})
		return Result{}, ErrEmptyQuery
	}

	id := uuid.NewString()
	if err := c.transition(fsm.EventSubmit); err != nil {
		c.logger.Warn("exchange rejected", "exchange_id", id, "reason", "in_flight", "state", c.State())
		return Result{}, ErrExchangeInFlight
	}

	started := c.now()
	c.logger.Info("exchange.start", "exchange_id", id, "query_length", len(query))

	reply, err := c.asker.Ask(ctx, query)

	result := Result{
		ID:         id,
		Query:      query,
		StartedAt:  started,
		FinishedAt: c.now(),
	}
	elapsed := result.FinishedAt.Sub(started).Milliseconds()

	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrTransportFailure, err)
		c.complete(fsm.EventFail, result, Answer{}, false)
		c.logger.Error("exchange.failed", "exchange_id", id, "elapsed_ms", elapsed, "error", err.Error())
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindConnectivityError})
		return result, result.Err
	}

	result.Text = reply.Text
	result.AudioPayload = reply.AudioBase64
	answer := c.render(result)
	c.complete(fsm.EventFulfill, result, answer, true)

	c.logger.Info("exchange.fulfilled",
		"exchange_id", id,
		"elapsed_ms", elapsed,
		"text_length", len(reply.Text),
		"highlights", answer.Document.Highlights(),
		"audio", answer.Audio != nil,
	)
	c.notifier.Notify(ctx, notify.Event{Kind: notify.KindSuccess})
	return result, nil
}

func (c *Controller) render(result Result) Answer {
	doc := render.Format(result.Text, c.hotels)
	answer := Answer{Document: doc, Markup: doc.HTML()}

	if _, ok := media.NormalizeAudio(result.AudioPayload); !ok {
		return answer
	}
	clip, err := media.Decode(result.AudioPayload)
	if err != nil {
		c.logger.Warn("answer audio undecodable", "exchange_id", result.ID, "error", err.Error())
		return answer
	}
	answer.Audio = &clip
	return answer
}

func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) complete(event fsm.Event, result Result, answer Answer, hasAnswer bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next, err := fsm.Transition(c.state, event); err == nil {
		c.state = next
	} else {
		c.logger.Error("exchange state drift", "state", c.state, "event", event, "error", err.Error())
		c.state = fsm.StateFailed
	}
	c.result = result
	c.hasResult = true
	c.answer = answer
	c.hasAnswer = hasAnswer
}

// ExportAudio decodes the audio of result and writes it to dir under
// ExportFilename, returning the written path.
func (c *Controller) ExportAudio(ctx context.Context, result Result, dir string) (string, error) {
	if !result.HasAudio() {
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindNoAudio})
		return "", ErrNoAudioAvailable
	}

	clip, err := media.Decode(result.AudioPayload)
	if err != nil {
		c.logger.Warn("export audio undecodable", "exchange_id", result.ID, "error", err.Error())
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindNoAudio})
		return "", fmt.Errorf("%w: %w", ErrNoAudioAvailable, err)
	}

	path, err := writeExport(dir, clip.Data)
	if err != nil {
		c.logger.Error("export audio failed", "exchange_id", result.ID, "dir", dir, "error", err.Error())
		c.notifier.Notify(ctx, notify.Event{Kind: notify.KindExportFailed})
		return "", err
	}

	c.logger.Info("audio exported", "exchange_id", result.ID, "path", path, "bytes", len(clip.Data))
	c.notifier.Notify(ctx, notify.Event{Kind: notify.KindAudioDownloaded, Subject: path})
	return path, nil
}

// ExportCurrent exports the audio of the most recent result.
func (c *Controller) ExportCurrent(ctx context.Context, dir string) (string, error) {
	result, _ := c.Result()
	return c.ExportAudio(ctx, result, dir)
}

func writeExport(dir string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, ExportFilename)
	tmp, err := os.CreateTemp(dir, ".hoteladvisor-export-*")
	if err != nil {
		return "", fmt.Errorf("create export temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
