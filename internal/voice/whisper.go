package voice

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/sashabaranov/go-openai"
)

// Whisper buffers the utterance and uploads it as one WAV file when speech
// ends.
type Whisper struct {
	client *openai.Client
	model  string
}

// NewWhisper builds an OpenAI-compatible transcription backend. An empty
// baseURL targets api.openai.com.
func NewWhisper(apiKey string, baseURL string, model string) *Whisper {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if strings.TrimSpace(model) == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClientWithConfig(cfg), model: model}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Begin(_ context.Context, settings Settings) (Stream, error) {
	return &whisperStream{whisper: w, language: whisperLanguage(settings.Language)}, nil
}

type whisperStream struct {
	whisper  *Whisper
	language string

	mu  sync.Mutex
	pcm bytes.Buffer
}

func (s *whisperStream) Send(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.pcm.Write(chunk)
	return err
}

func (s *whisperStream) Finish(ctx context.Context) (string, error) {
	s.mu.Lock()
	wav := audio.EncodeWAV(s.pcm.Bytes(), audio.SampleRate, audio.Channels)
	s.pcm.Reset()
	s.mu.Unlock()

	resp, err := s.whisper.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.whisper.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wav),
		Language: s.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (s *whisperStream) Cancel() {
	s.mu.Lock()
	s.pcm.Reset()
	s.mu.Unlock()
}

// whisperLanguage reduces a BCP 47 tag such as en-US to the ISO-639-1 code
// the transcription API expects.
func whisperLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
