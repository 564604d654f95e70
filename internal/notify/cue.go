package notify

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rbright/hoteladvisor/internal/audio"
)

const cueSampleRate = 16000

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

var (
	listenCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 880, duration: 70 * time.Millisecond, volume: 0.18},
		{frequencyHz: 1175, duration: 70 * time.Millisecond, volume: 0.18},
	})
	successCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 740, duration: 65 * time.Millisecond, volume: 0.18},
		{frequencyHz: 988, duration: 90 * time.Millisecond, volume: 0.18},
	})
	errorCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 480, duration: 75 * time.Millisecond, volume: 0.18},
		{frequencyHz: 360, duration: 90 * time.Millisecond, volume: 0.18},
	})
)

// Cue plays a short tone for events that benefit from an audible signal.
// Playback is asynchronous and serialized.
type Cue struct {
	logger *slog.Logger
	play   func(ctx context.Context, samples []int16) error

	mu      sync.Mutex
	pending sync.WaitGroup
}

func NewCue(logger *slog.Logger) *Cue {
	return &Cue{
		logger: logger,
		play: func(ctx context.Context, samples []int16) error {
			return audio.PlaySamples(ctx, samples, cueSampleRate, "hoteladvisor cue")
		},
	}
}

func (c *Cue) Notify(_ context.Context, event Event) {
	samples := cueSamples(event.Kind)
	if len(samples) == 0 {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		c.mu.Lock()
		defer c.mu.Unlock()

		// Cues outlive the triggering request context.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.play(ctx, samples); err != nil {
			logDispatchFailure(c.logger, "cue", err)
		}
	}()
}

// Wait blocks until queued cues finish.
func (c *Cue) Wait() {
	c.pending.Wait()
}

func cueSamples(kind Kind) []int16 {
	switch kind {
	case KindListeningStarted:
		return listenCuePCM
	case KindSuccess, KindAudioDownloaded:
		return successCuePCM
	case KindRecognitionError, KindConnectivityError:
		return errorCuePCM
	default:
		return nil
	}
}

func synthesizeCue(parts []toneSpec) []int16 {
	gap := make([]int16, samplesForDuration(22*time.Millisecond))

	var pcm []int16
	for i, part := range parts {
		if i > 0 {
			pcm = append(pcm, gap...)
		}
		pcm = append(pcm, synthesizeTone(part)...)
	}
	return pcm
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	// 5ms linear attack and release, shorter for very short tones.
	ramp := min(max(n/10, 1), cueSampleRate/200)

	pcm := make([]int16, n)
	for i := range n {
		envelope := 1.0
		if i < ramp {
			envelope = float64(i) / float64(ramp)
		}
		if tail := n - i - 1; tail < ramp {
			envelope = math.Min(envelope, float64(tail)/float64(ramp))
		}
		t := float64(i) / cueSampleRate
		pcm[i] = int16(math.Round(math.Sin(2*math.Pi*spec.frequencyHz*t) * spec.volume * envelope * 32767))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
