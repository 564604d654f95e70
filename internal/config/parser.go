package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

type jsoncConfig struct {
	Service      *jsoncService `json:"service"`
	Voice        *jsoncVoice   `json:"voice"`
	Notify       *jsoncNotify  `json:"notify"`
	Export       *jsoncExport  `json:"export"`
	ClipboardCmd *string       `json:"clipboard_cmd"`
	Log          *jsoncLog     `json:"log"`
	Debug        *jsoncDebug   `json:"debug"`
}

type jsoncService struct {
	BaseURL    *string        `json:"base_url"`
	AskPath    *string        `json:"ask_path"`
	HealthPath *string        `json:"health_path"`
	Timeout    *jsoncDuration `json:"timeout"`
}

type jsoncVoice struct {
	Backend         *string        `json:"backend"`
	Language        *string        `json:"language"`
	Input           *string        `json:"input"`
	Fallback        *string        `json:"fallback"`
	MaxDuration     *jsoncDuration `json:"max_duration"`
	Silence         *jsoncDuration `json:"silence"`
	NoSpeechTimeout *jsoncDuration `json:"no_speech_timeout"`
	Threshold       *int           `json:"threshold"`
	Whisper         *struct {
		Model     *string `json:"model"`
		BaseURL   *string `json:"base_url"`
		APIKeyEnv *string `json:"api_key_env"`
	} `json:"whisper"`
	Deepgram *struct {
		URL       *string `json:"url"`
		Model     *string `json:"model"`
		APIKeyEnv *string `json:"api_key_env"`
	} `json:"deepgram"`
}

type jsoncNotify struct {
	Backend *string        `json:"backend"`
	Locale  *string        `json:"locale"`
	AppName *string        `json:"app_name"`
	Timeout *jsoncDuration `json:"timeout"`
	Sound   *bool          `json:"sound"`
}

type jsoncExport struct {
	Dir *string `json:"dir"`
}

type jsoncLog struct {
	Level *string `json:"level"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

// jsoncDuration accepts Go duration strings ("1.5s") or integer milliseconds.
type jsoncDuration time.Duration

func (d *jsoncDuration) UnmarshalJSON(data []byte) error {
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		*d = jsoncDuration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("expected duration string or integer milliseconds")
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = jsoncDuration(parsed)
	return nil
}

// Parse reads JSONC content (comments and trailing commas allowed) over base
// and validates the result.
func Parse(content []byte, base Config) (Config, []Warning, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	standard, err := hujson.Standardize(content)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(standard))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(standard, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(standard, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if s := payload.Service; s != nil {
		setString(&cfg.Service.BaseURL, s.BaseURL)
		setString(&cfg.Service.AskPath, s.AskPath)
		setString(&cfg.Service.HealthPath, s.HealthPath)
		setDuration(&cfg.Service.Timeout, s.Timeout)
	}

	if v := payload.Voice; v != nil {
		setString(&cfg.Voice.Backend, v.Backend)
		setString(&cfg.Voice.Language, v.Language)
		setString(&cfg.Voice.Input, v.Input)
		setString(&cfg.Voice.Fallback, v.Fallback)
		setDuration(&cfg.Voice.MaxDuration, v.MaxDuration)
		setDuration(&cfg.Voice.Silence, v.Silence)
		setDuration(&cfg.Voice.NoSpeechTimeout, v.NoSpeechTimeout)
		if v.Threshold != nil {
			cfg.Voice.Threshold = *v.Threshold
		}
		if w := v.Whisper; w != nil {
			setString(&cfg.Voice.Whisper.Model, w.Model)
			setString(&cfg.Voice.Whisper.BaseURL, w.BaseURL)
			setString(&cfg.Voice.Whisper.APIKeyEnv, w.APIKeyEnv)
		}
		if d := v.Deepgram; d != nil {
			setString(&cfg.Voice.Deepgram.URL, d.URL)
			setString(&cfg.Voice.Deepgram.Model, d.Model)
			setString(&cfg.Voice.Deepgram.APIKeyEnv, d.APIKeyEnv)
		}
	}

	if n := payload.Notify; n != nil {
		setString(&cfg.Notify.Backend, n.Backend)
		setString(&cfg.Notify.Locale, n.Locale)
		setString(&cfg.Notify.AppName, n.AppName)
		setDuration(&cfg.Notify.Timeout, n.Timeout)
		if n.Sound != nil {
			cfg.Notify.Sound = *n.Sound
		}
	}

	if payload.Export != nil {
		setString(&cfg.Export.Dir, payload.Export.Dir)
	}

	if payload.ClipboardCmd != nil {
		raw := *payload.ClipboardCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return fmt.Errorf("invalid clipboard_cmd: %w", err)
		}
		cfg.Clipboard = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Log != nil {
		setString(&cfg.Log.Level, payload.Log.Level)
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.AudioDump = *payload.Debug.AudioDump
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setDuration(dst *time.Duration, src *jsoncDuration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return errors.New("multiple JSON values are not allowed")
	}
	return err
}

// wrapJSONDecodeError prefixes decode errors with a line and column. The
// standardized content keeps the original byte offsets.
func wrapJSONDecodeError(content []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content []byte, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	limit := min(int(offset), len(content))

	line, col := 1, 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
