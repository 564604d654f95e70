package config

import "time"

// Default returns the configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		Service: ServiceConfig{
			BaseURL: "http://127.0.0.1:8000",
			AskPath: "/ask",
		},
		Voice: VoiceConfig{
			Backend:         VoiceBackendWhisper,
			Language:        "en-US",
			Input:           "default",
			Fallback:        "default",
			MaxDuration:     15 * time.Second,
			Silence:         1200 * time.Millisecond,
			NoSpeechTimeout: 6 * time.Second,
			Threshold:       600,
			Whisper: WhisperConfig{
				Model:     "whisper-1",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			Deepgram: DeepgramConfig{
				URL:       "wss://api.deepgram.com/v1/listen",
				Model:     "nova-2",
				APIKeyEnv: "DEEPGRAM_API_KEY",
			},
		},
		Notify: NotifyConfig{
			Backend: "terminal",
			Locale:  "bilingual",
			AppName: "hoteladvisor",
			Timeout: 4 * time.Second,
			Sound:   true,
		},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		Log:       LogConfig{Level: "info"},
	}
}
