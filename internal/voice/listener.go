package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/rbright/hoteladvisor/internal/logging"
)

// Source is a live PCM capture.
type Source interface {
	Chunks() <-chan []byte
	Stop() error
}

// OpenFunc starts a capture.
type OpenFunc func(ctx context.Context) (Source, error)

// PulseSource opens the configured PulseAudio input, falling back as
// audio.SelectDevice does.
func PulseSource(input string, fallback string, logger *slog.Logger) OpenFunc {
	return func(ctx context.Context) (Source, error) {
		selection, err := audio.SelectDevice(ctx, input, fallback)
		if err != nil {
			return nil, err
		}
		if selection.Warning != "" && logger != nil {
			logger.Warn(selection.Warning)
		}
		capture, err := audio.StartCapture(ctx, selection.Device)
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Debug("voice capture device", "device", selection.Device.String())
		}
		return capture, nil
	}
}

// ListenerOption customizes a Listener.
type ListenerOption func(*Listener)

// WithAudioDump writes every captured utterance as WAV into the debug dir.
func WithAudioDump(enabled bool) ListenerOption {
	return func(l *Listener) { l.dumpAudio = enabled }
}

// Listener implements Capability on top of a capture source, an energy
// endpointer and a recognizer backend.
type Listener struct {
	open       OpenFunc
	recognizer Recognizer
	endpoint   audio.EndpointConfig
	logger     *slog.Logger
	dumpAudio  bool
}

func NewListener(open OpenFunc, recognizer Recognizer, endpoint audio.EndpointConfig, logger *slog.Logger, opts ...ListenerOption) *Listener {
	if logger == nil {
		logger = logging.Discard()
	}
	l := &Listener{
		open:       open,
		recognizer: recognizer,
		endpoint:   endpoint,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen captures one utterance. Silence without speech, an empty transcript
// and ctx cancellation all end the session without a result or error
// callback.
func (l *Listener) Listen(ctx context.Context, settings Settings, handler Handler) (err error) {
	defer handler.OnEnd()

	fail := func(e error) error {
		l.logger.Error("voice.error", "backend", l.recognizer.Name(), "error", e.Error())
		handler.OnError(e)
		return e
	}

	if settings.Continuous {
		return fail(ErrContinuousUnsupported)
	}

	source, err := l.open(ctx)
	if err != nil {
		return fail(fmt.Errorf("open microphone: %w", err))
	}

	stream, err := l.recognizer.Begin(ctx, settings)
	if err != nil {
		_ = source.Stop()
		return fail(fmt.Errorf("start %s recognition: %w", l.recognizer.Name(), err))
	}

	l.logger.Info("voice.start", "backend", l.recognizer.Name(), "language", settings.Language)
	handler.OnStart()

	endpointer := audio.NewEndpointer(l.endpoint)
	var captured []byte

	sendErr := l.pump(ctx, source, stream, endpointer, &captured)
	_ = source.Stop()
	l.writeDebugAudio(captured)

	if ctx.Err() != nil {
		stream.Cancel()
		l.logger.Info("voice.end", "reason", "cancelled")
		return ctx.Err()
	}
	if sendErr != nil {
		stream.Cancel()
		return fail(fmt.Errorf("stream audio: %w", sendErr))
	}
	if !endpointer.HeardSpeech() {
		stream.Cancel()
		l.logger.Info("voice.end", "reason", string(endpointer.Reason()), "elapsed_ms", endpointer.Elapsed().Milliseconds())
		return nil
	}

	text, err := stream.Finish(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fail(fmt.Errorf("%s recognition: %w", l.recognizer.Name(), err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		l.logger.Info("voice.end", "reason", "empty_transcript")
		return nil
	}

	l.logger.Info("voice.result",
		"backend", l.recognizer.Name(),
		"reason", string(endpointer.Reason()),
		"elapsed_ms", endpointer.Elapsed().Milliseconds(),
		"transcript_length", len(text),
	)
	handler.OnResult(text)
	return nil
}

// pump forwards chunks until the endpointer ends the utterance, the source
// runs dry, ctx is done or a send fails.
func (l *Listener) pump(ctx context.Context, source Source, stream Stream, endpointer *audio.Endpointer, captured *[]byte) error {
	chunks := source.Chunks()
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-chunks:
			if !ok {
				return nil
			}
			if len(chunk) == 0 {
				continue
			}
			if l.dumpAudio {
				*captured = append(*captured, chunk...)
			}
			if err := stream.Send(chunk); err != nil {
				return err
			}
			if endpointer.Push(chunk) {
				return nil
			}
		}
	}
}

func (l *Listener) writeDebugAudio(pcm []byte) {
	if !l.dumpAudio || len(pcm) == 0 {
		return
	}

	file, err := logging.CreateDebugFile("utterance", "wav")
	if err != nil {
		l.logger.Warn("unable to create debug audio dump", "error", err.Error())
		return
	}
	defer file.Close()

	if err := audio.WritePCM16WAV(file, pcm, audio.SampleRate, audio.Channels); err != nil {
		l.logger.Warn("unable to write debug audio dump", "error", err.Error())
	}
}
