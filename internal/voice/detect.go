package voice

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/rbright/hoteladvisor/internal/config"
)

// Detect builds the dictation capability once at startup. It returns nil and
// a reason when voice input cannot work in this environment.
func Detect(cfg config.Config, logger *slog.Logger) (Capability, string) {
	recognizer, reason := recognizerFor(cfg.Voice)
	if recognizer == nil {
		return nil, reason
	}

	endpoint := audio.EndpointConfig{
		Threshold:   float64(cfg.Voice.Threshold),
		Silence:     cfg.Voice.Silence,
		NoSpeech:    cfg.Voice.NoSpeechTimeout,
		MaxDuration: cfg.Voice.MaxDuration,
	}
	return NewListener(
		PulseSource(cfg.Voice.Input, cfg.Voice.Fallback, logger),
		recognizer,
		endpoint,
		logger,
		WithAudioDump(cfg.Debug.AudioDump),
	), ""
}

func recognizerFor(cfg config.VoiceConfig) (Recognizer, string) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", config.VoiceBackendNone:
		return nil, "voice backend disabled"
	case config.VoiceBackendWhisper, config.VoiceBackendDeepgram:
	default:
		return nil, fmt.Sprintf("unknown voice backend %q", cfg.Backend)
	}

	keyEnv := cfg.APIKeyEnv()
	key := strings.TrimSpace(os.Getenv(keyEnv))
	if key == "" {
		return nil, fmt.Sprintf("%s is not set", keyEnv)
	}

	if backend == config.VoiceBackendDeepgram {
		return NewDeepgram(key, cfg.Deepgram.URL, cfg.Deepgram.Model), ""
	}
	return NewWhisper(key, cfg.Whisper.BaseURL, cfg.Whisper.Model), ""
}
