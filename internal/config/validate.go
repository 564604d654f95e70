package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

var (
	voiceBackends  = []string{VoiceBackendWhisper, VoiceBackendDeepgram, VoiceBackendNone}
	notifyBackends = []string{"terminal", "desktop", "hypr", "none"}
	notifyLocales  = []string{"bilingual", "en"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	base, err := url.Parse(strings.TrimSpace(cfg.Service.BaseURL))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("service.base_url must be an absolute http(s) URL, got %q", cfg.Service.BaseURL)
	}
	if !strings.HasPrefix(cfg.Service.AskPath, "/") {
		return nil, fmt.Errorf("service.ask_path must start with '/'")
	}
	if cfg.Service.HealthPath != "" && !strings.HasPrefix(cfg.Service.HealthPath, "/") {
		return nil, fmt.Errorf("service.health_path must start with '/'")
	}
	if cfg.Service.Timeout < 0 {
		return nil, fmt.Errorf("service.timeout must be >= 0")
	}

	voice := cfg.Voice
	if err := oneOf("voice.backend", voice.Backend, voiceBackends); err != nil {
		return nil, err
	}
	if strings.TrimSpace(voice.Language) == "" {
		return nil, fmt.Errorf("voice.language must not be empty")
	}
	if voice.MaxDuration <= 0 {
		return nil, fmt.Errorf("voice.max_duration must be > 0")
	}
	if voice.Silence <= 0 {
		return nil, fmt.Errorf("voice.silence must be > 0")
	}
	if voice.NoSpeechTimeout <= 0 {
		return nil, fmt.Errorf("voice.no_speech_timeout must be > 0")
	}
	if voice.Threshold <= 0 || voice.Threshold > 32767 {
		return nil, fmt.Errorf("voice.threshold must be within 1..32767")
	}
	if voice.NoSpeechTimeout > voice.MaxDuration {
		warnings = append(warnings, Warning{Message: "voice.no_speech_timeout exceeds voice.max_duration; max_duration wins"})
	}
	if keyEnv := voice.APIKeyEnv(); keyEnv != "" && strings.TrimSpace(os.Getenv(keyEnv)) == "" {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("%s is not set; voice input is unavailable for voice.backend=%s", keyEnv, voice.Backend)})
	}

	if err := oneOf("notify.backend", cfg.Notify.Backend, notifyBackends); err != nil {
		return nil, err
	}
	if err := oneOf("notify.locale", cfg.Notify.Locale, notifyLocales); err != nil {
		return nil, err
	}
	if strings.EqualFold(cfg.Notify.Backend, "desktop") && strings.TrimSpace(cfg.Notify.AppName) == "" {
		return nil, fmt.Errorf("notify.app_name must not be empty when notify.backend=desktop")
	}
	if cfg.Notify.Timeout < 0 {
		return nil, fmt.Errorf("notify.timeout must be >= 0")
	}

	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}
	if err := oneOf("log.level", cfg.Log.Level, logLevels); err != nil {
		return nil, err
	}

	return warnings, nil
}

func oneOf(field string, value string, allowed []string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", field, strings.Join(allowed, ", "))
}
