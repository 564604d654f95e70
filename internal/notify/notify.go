// Package notify delivers short user-facing notices for terminal events of a
// query: empty input, voice availability, recognition, connectivity, success
// and audio export. Controllers depend only on the Notifier port.
package notify

import (
	"context"
	"sync"
)

// Kind identifies what happened.
type Kind string

const (
	KindQueryEmpty            Kind = "query_empty"
	KindCapabilityUnavailable Kind = "capability_unavailable"
	KindListeningStarted      Kind = "listening_started"
	KindRecognitionError      Kind = "recognition_error"
	KindConnectivityError     Kind = "connectivity_error"
	KindSuccess               Kind = "success"
	KindAudioDownloaded       Kind = "audio_downloaded"
	KindNoAudio               Kind = "no_audio"
	KindExportFailed          Kind = "export_failed"
)

// Kinds lists every kind in display-table order.
var Kinds = []Kind{
	KindQueryEmpty,
	KindCapabilityUnavailable,
	KindListeningStarted,
	KindRecognitionError,
	KindConnectivityError,
	KindSuccess,
	KindAudioDownloaded,
	KindNoAudio,
	KindExportFailed,
}

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Severity classifies the kind for presentation.
func (k Kind) Severity() Severity {
	switch k {
	case KindQueryEmpty, KindCapabilityUnavailable, KindRecognitionError,
		KindConnectivityError, KindNoAudio, KindExportFailed:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Event is one notification. Subject carries optional context such as the
// exported file path; it never holds raw transport errors.
type Event struct {
	Kind    Kind
	Subject string
}

// Notifier receives structured events from controllers.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Func adapts a function to Notifier.
type Func func(context.Context, Event)

func (f Func) Notify(ctx context.Context, event Event) { f(ctx, event) }

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

// Wait blocks until n and any notifiers it fans out to have finished
// asynchronous work such as cue playback.
func Wait(n Notifier) {
	switch v := n.(type) {
	case Multi:
		for _, inner := range v {
			Wait(inner)
		}
	case interface{ Wait() }:
		v.Wait()
	}
}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a snapshot of recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
