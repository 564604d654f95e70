// Package voice provides the single-utterance dictation capability: capture
// from the microphone until end of speech, then recognize with a configured
// backend.
package voice

import (
	"context"
	"errors"
)

// ErrContinuousUnsupported is returned when a caller asks for more than one
// utterance per session.
var ErrContinuousUnsupported = errors.New("continuous recognition is not supported")

// Settings configure one recognition session.
type Settings struct {
	Language       string
	Continuous     bool
	InterimResults bool
}

// Handler receives session callbacks. OnStart fires once capture is live.
// At most one of OnResult or OnError fires. OnEnd always fires last,
// whichever way the session ended.
type Handler interface {
	OnStart()
	OnResult(transcript string)
	OnError(err error)
	OnEnd()
}

// Capability recognizes one utterance. Listen blocks until OnEnd has fired.
type Capability interface {
	Listen(ctx context.Context, settings Settings, handler Handler) error
}

// HandlerFuncs adapts optional functions to Handler.
type HandlerFuncs struct {
	Start  func()
	Result func(string)
	Error  func(error)
	End    func()
}

func (h HandlerFuncs) OnStart() {
	if h.Start != nil {
		h.Start()
	}
}

func (h HandlerFuncs) OnResult(transcript string) {
	if h.Result != nil {
		h.Result(transcript)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func (h HandlerFuncs) OnEnd() {
	if h.End != nil {
		h.End()
	}
}

// Recognizer opens one recognition stream per utterance.
type Recognizer interface {
	Name() string
	Begin(ctx context.Context, settings Settings) (Stream, error)
}

// Stream accepts 16kHz mono s16 PCM and yields the final transcript.
type Stream interface {
	Send(chunk []byte) error
	Finish(ctx context.Context) (string, error)
	Cancel()
}
