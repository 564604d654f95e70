package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "http://127.0.0.1:8000/ask", Default().Service.AskURL())
	require.Zero(t, Default().Service.Timeout)
}

func TestValidateWarnsWhenVoiceKeyMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "OPENAI_API_KEY is not set")
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "relative base url", mutate: func(c *Config) { c.Service.BaseURL = "127.0.0.1:8000" }, wantErr: "service.base_url"},
		{name: "ftp base url", mutate: func(c *Config) { c.Service.BaseURL = "ftp://host" }, wantErr: "service.base_url"},
		{name: "ask path", mutate: func(c *Config) { c.Service.AskPath = "ask" }, wantErr: "service.ask_path"},
		{name: "health path", mutate: func(c *Config) { c.Service.HealthPath = "healthz" }, wantErr: "service.health_path"},
		{name: "negative timeout", mutate: func(c *Config) { c.Service.Timeout = -time.Second }, wantErr: "service.timeout"},
		{name: "voice backend", mutate: func(c *Config) { c.Voice.Backend = "vosk" }, wantErr: "voice.backend"},
		{name: "voice language", mutate: func(c *Config) { c.Voice.Language = " " }, wantErr: "voice.language"},
		{name: "max duration", mutate: func(c *Config) { c.Voice.MaxDuration = 0 }, wantErr: "voice.max_duration"},
		{name: "silence", mutate: func(c *Config) { c.Voice.Silence = 0 }, wantErr: "voice.silence"},
		{name: "no speech", mutate: func(c *Config) { c.Voice.NoSpeechTimeout = 0 }, wantErr: "voice.no_speech_timeout"},
		{name: "threshold", mutate: func(c *Config) { c.Voice.Threshold = 40000 }, wantErr: "voice.threshold"},
		{name: "notify backend", mutate: func(c *Config) { c.Notify.Backend = "toast" }, wantErr: "notify.backend"},
		{name: "notify locale", mutate: func(c *Config) { c.Notify.Locale = "fr" }, wantErr: "notify.locale"},
		{name: "desktop app name", mutate: func(c *Config) {
			c.Notify.Backend = "desktop"
			c.Notify.AppName = ""
		}, wantErr: "notify.app_name"},
		{name: "clipboard", mutate: func(c *Config) { c.Clipboard.Argv = nil }, wantErr: "clipboard_cmd"},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseJSONCWithCommentsAndTrailingCommas(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-test")
	content := `
{
  // local service
  "service": {
    "base_url": "http://localhost:9000/",
    "timeout": "30s",
  },
  "voice": {
    "backend": "deepgram", /* streaming */
    "silence": 900,
    "deepgram": { "model": "nova-3" },
  },
  "notify": { "backend": "desktop", "locale": "en", "sound": false },
  "export": { "dir": "/tmp/exports" },
  "clipboard_cmd": "xclip -selection 'clip board'",
  "debug": { "audio_dump": true },
}
`
	cfg, warnings, err := Parse([]byte(content), Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "http://localhost:9000/ask", cfg.Service.AskURL())
	require.Equal(t, 30*time.Second, cfg.Service.Timeout)
	require.Equal(t, VoiceBackendDeepgram, cfg.Voice.Backend)
	require.Equal(t, 900*time.Millisecond, cfg.Voice.Silence)
	require.Equal(t, "nova-3", cfg.Voice.Deepgram.Model)
	require.Equal(t, "DEEPGRAM_API_KEY", cfg.Voice.Deepgram.APIKeyEnv)
	require.Equal(t, "desktop", cfg.Notify.Backend)
	require.False(t, cfg.Notify.Sound)
	require.Equal(t, "/tmp/exports", cfg.Export.Dir)
	require.Equal(t, []string{"xclip", "-selection", "clip board"}, cfg.Clipboard.Argv)
	require.True(t, cfg.Debug.AudioDump)
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, _, err := Parse([]byte("  \n"), Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, _, err := Parse([]byte(`{"service": {"endpoint": "x"}}`), Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseRejectsMultipleValues(t *testing.T) {
	_, _, err := Parse([]byte(`{} {}`), Default())
	require.Error(t, err)
}

func TestParseReportsTypeErrorPosition(t *testing.T) {
	_, _, err := Parse([]byte("{\n  \"voice\": {\"threshold\": \"loud\"}\n}"), Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, _, err := Parse([]byte(`{"voice": {"silence": "soon"}}`), Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid duration")
}

func TestParseRejectsBadClipboardCommand(t *testing.T) {
	_, _, err := Parse([]byte(`{"clipboard_cmd": "wl-copy \"unterminated"}`), Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "clipboard_cmd")
}

func TestJSONCDurationAcceptsMilliseconds(t *testing.T) {
	var d jsoncDuration
	require.NoError(t, json.Unmarshal([]byte(`1500`), &d))
	require.Equal(t, 1500*time.Millisecond, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`"2m"`), &d))
	require.Equal(t, 2*time.Minute, time.Duration(d))

	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := []byte("line1\nline2\nline3")
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8)
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}

func TestParseArgv(t *testing.T) {
	t.Setenv("CLIP_TARGET", "primary")
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "simple", input: "wl-copy --trim-newline", want: []string{"wl-copy", "--trim-newline"}},
		{name: "quoted spaces", input: `mycmd --name "hello world"`, want: []string{"mycmd", "--name", "hello world"}},
		{name: "single quote", input: `mycmd --name 'hello world'`, want: []string{"mycmd", "--name", "hello world"}},
		{name: "escaped space", input: `mycmd hello\ world`, want: []string{"mycmd", "hello world"}},
		{name: "env expansion", input: `xclip -selection $CLIP_TARGET`, want: []string{"xclip", "-selection", "primary"}},
		{name: "leading comment", input: `# wl-copy --trim-newline`, want: nil},
		{name: "unterminated quote", input: `mycmd "oops`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseArgv(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMustParseArgvPanicsOnInvalidInput(t *testing.T) {
	require.Panics(t, func() {
		_ = mustParseArgv(`mycmd "unterminated`)
	})
}

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "hoteladvisor", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "hoteladvisor", "config.jsonc"), resolved)
}

func TestResolveExportDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DOWNLOAD_DIR", "")

	require.Equal(t, "/srv/audio", ResolveExportDir(ExportConfig{Dir: "/srv/audio"}))
	require.Equal(t, filepath.Join(home, "audio"), ResolveExportDir(ExportConfig{Dir: "~/audio"}))
	require.Equal(t, ".", ResolveExportDir(ExportConfig{}))

	require.NoError(t, os.MkdirAll(filepath.Join(home, "Downloads"), 0o700))
	require.Equal(t, filepath.Join(home, "Downloads"), ResolveExportDir(ExportConfig{}))

	t.Setenv("XDG_DOWNLOAD_DIR", "/data/dl")
	require.Equal(t, "/data/dl", ResolveExportDir(ExportConfig{}))
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  "service": { "base_url": "http://10.0.0.5:8000" },
  "voice": { "backend": "none" },
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, "http://10.0.0.5:8000/ask", loaded.Config.Service.AskURL())
	require.Equal(t, VoiceBackendNone, loaded.Config.Voice.Backend)
	require.Empty(t, loaded.EnvFile)
}

func TestLoadAppliesDotenvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=from-dotenv\nHOTELADVISOR_TEST_PRESET=from-dotenv\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "")
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))
	t.Setenv("HOTELADVISOR_TEST_PRESET", "from-env")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".env"), loaded.EnvFile)
	require.Equal(t, "from-dotenv", os.Getenv("OPENAI_API_KEY"))
	require.Equal(t, "from-env", os.Getenv("HOTELADVISOR_TEST_PRESET"))
	require.Empty(t, loaded.Warnings)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"notify": {"backend": "pager"}}`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "notify.backend")
}
