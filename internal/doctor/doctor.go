// Package doctor runs readiness diagnostics for config, the recommendation
// service, voice input, notifications, clipboard and export.
package doctor

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/hoteladvisor/internal/audio"
	"github.com/rbright/hoteladvisor/internal/config"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes every check against a loaded config.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded)}

	checks = append(checks, checkService(ctx, cfg.Service))

	if !strings.EqualFold(cfg.Voice.Backend, config.VoiceBackendNone) {
		checks = append(checks, checkEnvSet(cfg.Voice.APIKeyEnv()))
		checks = append(checks, checkAudioSelection(ctx, cfg.Voice))
	}

	switch strings.ToLower(cfg.Notify.Backend) {
	case "desktop":
		checks = append(checks, checkBinary("busctl", "desktop notifications"))
	case "hypr":
		checks = append(checks, checkBinary("hyprctl", "hyprland notifications"))
	}

	checks = append(checks, checkCommand(cfg.Clipboard.Argv, "clipboard_cmd"))
	checks = append(checks, checkExportDir(config.ResolveExportDir(cfg.Export)))

	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("using defaults (%q not found)", loaded.Path)
	}
	if loaded.EnvFile != "" {
		message += fmt.Sprintf(", env from %q", loaded.EnvFile)
	}
	if n := len(loaded.Warnings); n > 0 {
		message += fmt.Sprintf(", %d warning(s)", n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkService probes the health path when one is configured and otherwise
// only dials the service address.
func checkService(ctx context.Context, cfg config.ServiceConfig) Check {
	if healthURL := cfg.HealthURL(); healthURL != "" {
		return checkHealth(ctx, healthURL)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return Check{Name: "service", Pass: false, Message: fmt.Sprintf("invalid base_url %q", cfg.BaseURL)}
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	dialer := net.Dialer{Timeout: probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return Check{Name: "service", Pass: false, Message: fmt.Sprintf("cannot reach %s: %v", host, err)}
	}
	_ = conn.Close()
	return Check{Name: "service", Pass: true, Message: fmt.Sprintf("listening at %s (ask endpoint %s)", host, cfg.AskURL())}
}

func checkHealth(ctx context.Context, healthURL string) Check {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return Check{Name: "service", Pass: false, Message: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Check{Name: "service", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 256))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Check{Name: "service", Pass: false, Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, healthURL)}
	}
	return Check{Name: "service", Pass: true, Message: fmt.Sprintf("healthy at %s", healthURL)}
}

func checkEnvSet(name string) Check {
	if name == "" {
		return Check{Name: "voice.api_key", Pass: false, Message: "no api_key_env configured"}
	}
	if strings.TrimSpace(os.Getenv(name)) == "" {
		return Check{Name: name, Pass: false, Message: "not set; voice input is unavailable"}
	}
	return Check{Name: name, Pass: true, Message: "set"}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.VoiceConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "voice.input", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "voice.input", Pass: true, Message: message}
}

func checkExportDir(dir string) Check {
	info, err := os.Stat(dir)
	if err != nil {
		return Check{Name: "export.dir", Pass: false, Message: err.Error()}
	}
	if !info.IsDir() {
		return Check{Name: "export.dir", Pass: false, Message: fmt.Sprintf("%s is not a directory", dir)}
	}
	probe, err := os.CreateTemp(dir, ".hoteladvisor-doctor-*")
	if err != nil {
		return Check{Name: "export.dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return Check{Name: "export.dir", Pass: true, Message: fmt.Sprintf("writable %s", abs)}
}
