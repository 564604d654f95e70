package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// EndpointConfig tunes energy-based end-of-speech detection.
type EndpointConfig struct {
	// Threshold is the RMS level (s16 scale) above which a chunk counts as speech.
	Threshold float64
	// Silence is how long the level must stay below Threshold after speech.
	Silence time.Duration
	// NoSpeech ends the utterance when nothing was heard this long.
	NoSpeech time.Duration
	// MaxDuration caps the whole utterance.
	MaxDuration time.Duration
}

// EndReason explains why an utterance ended.
type EndReason string

const (
	EndNone     EndReason = ""
	EndSilence  EndReason = "silence"
	EndNoSpeech EndReason = "no_speech"
	EndMaxLen   EndReason = "max_duration"
)

// Endpointer consumes 16kHz mono s16 chunks and decides when a single
// utterance is over.
type Endpointer struct {
	cfg EndpointConfig

	elapsed time.Duration
	quiet   time.Duration
	heard   bool
	reason  EndReason
}

func NewEndpointer(cfg EndpointConfig) *Endpointer {
	return &Endpointer{cfg: cfg}
}

// Push accounts one chunk and reports whether the utterance has ended.
func (e *Endpointer) Push(chunk []byte) bool {
	if e.reason != EndNone {
		return true
	}

	d := chunkDuration(chunk)
	e.elapsed += d

	if RMS(chunk) >= e.cfg.Threshold {
		e.heard = true
		e.quiet = 0
	} else {
		e.quiet += d
	}

	switch {
	case e.heard && e.cfg.Silence > 0 && e.quiet >= e.cfg.Silence:
		e.reason = EndSilence
	case !e.heard && e.cfg.NoSpeech > 0 && e.elapsed >= e.cfg.NoSpeech:
		e.reason = EndNoSpeech
	case e.cfg.MaxDuration > 0 && e.elapsed >= e.cfg.MaxDuration:
		e.reason = EndMaxLen
	}
	return e.reason != EndNone
}

// HeardSpeech reports whether any chunk crossed the threshold.
func (e *Endpointer) HeardSpeech() bool { return e.heard }

func (e *Endpointer) Reason() EndReason { return e.reason }

func (e *Endpointer) Elapsed() time.Duration { return e.elapsed }

// RMS returns the root-mean-square level of little-endian s16 samples.
func RMS(chunk []byte) float64 {
	n := len(chunk) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(chunk[2*i:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

func chunkDuration(chunk []byte) time.Duration {
	samples := len(chunk) / 2 / Channels
	return time.Duration(samples) * time.Second / SampleRate
}
