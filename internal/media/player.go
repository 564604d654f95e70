package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/hajimehoshi/go-mp3"
	"github.com/rbright/hoteladvisor/internal/audio"
)

const playbackMediaName = "hoteladvisor recommendation"

// Player plays decoded answer audio through PulseAudio.
type Player struct {
	play func(context.Context, audio.Playback) error
}

func NewPlayer() *Player {
	return &Player{play: audio.Play}
}

// Play decodes clip and blocks until playback drains or ctx is done. Text to
// speech engines sometimes write RIFF data under an MP3 tag, so WAV content is
// detected by its header rather than by the media type.
func (p *Player) Play(ctx context.Context, clip Clip) error {
	playback, err := playbackFor(clip)
	if err != nil {
		return err
	}
	return p.play(ctx, playback)
}

func playbackFor(clip Clip) (audio.Playback, error) {
	if len(clip.Data) == 0 {
		return audio.Playback{}, ErrNoAudio
	}

	if audio.IsWAV(clip.Data) {
		wav, err := audio.DecodeWAV(clip.Data)
		if err != nil {
			return audio.Playback{}, fmt.Errorf("decode wav audio: %w", err)
		}
		return audio.Playback{
			Source:     bytes.NewReader(wav.PCM),
			SampleRate: wav.SampleRate,
			Channels:   wav.Channels,
			MediaName:  playbackMediaName,
		}, nil
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(clip.Data))
	if err != nil {
		return audio.Playback{}, fmt.Errorf("decode %s audio: %w", clip.MediaType, err)
	}
	// go-mp3 always yields 16-bit little-endian stereo.
	return audio.Playback{
		Source:     decoder,
		SampleRate: decoder.SampleRate(),
		Channels:   2,
		MediaName:  playbackMediaName,
	}, nil
}
