package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/pulse"
)

// Playback describes one PCM16 little-endian stream to play.
type Playback struct {
	Source     io.Reader
	SampleRate int
	Channels   int
	MediaName  string
	// Icon is the Pulse application icon name.
	Icon string
}

// Play streams p to the default Pulse sink and blocks until it drains or ctx
// is done.
func Play(ctx context.Context, p Playback) error {
	if p.Source == nil {
		return errors.New("playback source is nil")
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", p.SampleRate)
	}

	layout := pulse.PlaybackMono
	switch p.Channels {
	case 1:
	case 2:
		layout = pulse.PlaybackStereo
	default:
		return fmt.Errorf("unsupported channel count %d", p.Channels)
	}

	icon := p.Icon
	if icon == "" {
		icon = "audio-speakers"
	}
	client, err := newClient(icon)
	if err != nil {
		return err
	}
	defer client.Close()

	stream, err := client.NewPlayback(
		pulse.Int16Reader(int16Reader(p.Source)),
		layout,
		pulse.PlaybackSampleRate(p.SampleRate),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackMediaName(p.MediaName),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stream.Stop()
		case <-done:
		}
	}()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play stream: %w", err)
	}
	return ctx.Err()
}

// PlaySamples plays an in-memory mono clip.
func PlaySamples(ctx context.Context, samples []int16, sampleRate int, mediaName string) error {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(s))
	}
	return Play(ctx, Playback{
		Source:     bytes.NewReader(raw),
		SampleRate: sampleRate,
		Channels:   1,
		MediaName:  mediaName,
		Icon:       "dialog-information",
	})
}

// int16Reader adapts a little-endian byte stream to pulse's sample callback.
func int16Reader(src io.Reader) func([]int16) (int, error) {
	var raw []byte
	return func(buf []int16) (int, error) {
		if cap(raw) < len(buf)*2 {
			raw = make([]byte, len(buf)*2)
		}
		raw = raw[:len(buf)*2]

		n, err := io.ReadFull(src, raw)
		samples := n / 2
		for i := 0; i < samples; i++ {
			buf[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
		}
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return samples, pulse.EndOfData
		case err != nil:
			return samples, err
		}
		return samples, nil
	}
}
