// Package config resolves, parses, validates, and defaults hoteladvisor
// configuration.
package config

import (
	"strings"
	"time"
)

// Config is the fully materialized runtime configuration.
type Config struct {
	Service   ServiceConfig
	Voice     VoiceConfig
	Notify    NotifyConfig
	Export    ExportConfig
	Clipboard CommandConfig
	Log       LogConfig
	Debug     DebugConfig
}

// ServiceConfig locates the recommendation service.
type ServiceConfig struct {
	BaseURL    string
	AskPath    string
	HealthPath string
	// Timeout bounds one exchange; zero waits for the service indefinitely.
	Timeout time.Duration
}

// AskURL joins the base URL and ask path.
func (s ServiceConfig) AskURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.AskPath
}

// HealthURL returns the readiness URL, or "" when no health path is set.
func (s ServiceConfig) HealthURL() string {
	if strings.TrimSpace(s.HealthPath) == "" {
		return ""
	}
	return strings.TrimRight(s.BaseURL, "/") + s.HealthPath
}

// VoiceConfig controls dictation capture and the recognizer backend.
type VoiceConfig struct {
	Backend         string
	Language        string
	Input           string
	Fallback        string
	MaxDuration     time.Duration
	Silence         time.Duration
	NoSpeechTimeout time.Duration
	Threshold       int
	Whisper         WhisperConfig
	Deepgram        DeepgramConfig
}

// APIKeyEnv returns the environment variable holding the active backend key.
func (v VoiceConfig) APIKeyEnv() string {
	switch strings.ToLower(strings.TrimSpace(v.Backend)) {
	case VoiceBackendWhisper:
		return v.Whisper.APIKeyEnv
	case VoiceBackendDeepgram:
		return v.Deepgram.APIKeyEnv
	default:
		return ""
	}
}

const (
	VoiceBackendWhisper  = "whisper"
	VoiceBackendDeepgram = "deepgram"
	VoiceBackendNone     = "none"
)

type WhisperConfig struct {
	Model     string
	BaseURL   string
	APIKeyEnv string
}

type DeepgramConfig struct {
	URL       string
	Model     string
	APIKeyEnv string
}

// NotifyConfig controls user-facing notices and cue sounds.
type NotifyConfig struct {
	Backend string
	Locale  string
	AppName string
	Timeout time.Duration
	Sound   bool
}

// ExportConfig controls where answer audio is saved.
type ExportConfig struct {
	Dir string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

type LogConfig struct {
	Level string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	AudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
