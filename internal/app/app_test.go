package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/hoteladvisor/internal/exchange"
	"github.com/rbright/hoteladvisor/internal/input"
	"github.com/rbright/hoteladvisor/internal/service"
)

type runnerEnv struct {
	configPath string
	exportDir  string
	stateDir   string
}

func setupRunnerEnv(t *testing.T, serviceURL string) runnerEnv {
	t.Helper()

	stateDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	exportDir := filepath.Join(t.TempDir(), "exports")
	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	content := fmt.Sprintf(`{
  // test wiring
  "service": { "base_url": %q },
  "voice": { "backend": "none" },
  "notify": { "backend": "terminal", "locale": "en", "sound": false },
  "export": { "dir": %q },
}`, serviceURL, exportDir)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return runnerEnv{configPath: configPath, exportDir: exportDir, stateDir: stateDir}
}

func startStub(t *testing.T, audio []byte) string {
	t.Helper()
	srv := httptest.NewServer(service.NewStubHandler(service.StubOptions{Audio: audio}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	r := &Runner{Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}
	code := r.Execute(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func TestExecuteHelp(t *testing.T) {
	code, stdout, stderr := run(t, "", "--help")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "USAGE:")
	require.Contains(t, stdout, "listen")
	require.Empty(t, stderr)
}

func TestExecuteVersion(t *testing.T) {
	code, stdout, stderr := run(t, "", "version")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "hoteladvisor")
	require.Empty(t, stderr)
}

func TestExecuteUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "", "definitely-not-a-command")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "unknown command")
	require.Contains(t, stderr, "--help")
}

func TestAskPrintsFormattedAnswer(t *testing.T) {
	env := setupRunnerEnv(t, startStub(t, nil))

	code, stdout, stderr := run(t, "", "--config", env.configPath, "ask", "family", "hotels", "in", "sousse")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "Iberostar Averroes has direct beach access")
	require.Contains(t, stderr, "Recommendations ready")

	logData, err := os.ReadFile(filepath.Join(env.stateDir, "hoteladvisor", "log.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(logData), `"command":"ask"`)
}

func TestAskHTMLAndSaveAudio(t *testing.T) {
	env := setupRunnerEnv(t, startStub(t, []byte("ID3 stub audio")))

	code, stdout, stderr := run(t, "", "--config", env.configPath, "ask", "--html", "--save-audio", "pools in hammamet")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "<p>")
	require.Contains(t, stdout, "Iberostar Selection Diar El Andalous</span>")
	require.Contains(t, stderr, "Audio saved")

	data, err := os.ReadFile(filepath.Join(env.exportDir, exchange.ExportFilename))
	require.NoError(t, err)
	require.Equal(t, "ID3 stub audio", string(data))
}

func TestAskSaveAudioWithoutAudioFails(t *testing.T) {
	env := setupRunnerEnv(t, startStub(t, nil))

	code, stdout, stderr := run(t, "", "--config", env.configPath, "ask", "--save-audio", "djerba")
	require.Equal(t, 1, code)
	require.Contains(t, stdout, "Fiesta Beach Djerba")
	require.Contains(t, stderr, exchange.ErrNoAudioAvailable.Error())
}

func TestAskPreset(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Query
		_, _ = w.Write([]byte(`{"text": "ok"}`))
	}))
	t.Cleanup(srv.Close)
	env := setupRunnerEnv(t, srv.URL)

	code, stdout, stderr := run(t, "", "--config", env.configPath, "ask", "--preset", "2")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, input.Presets[1], got)
	require.Contains(t, stdout, "ok")
}

func TestAskUnknownPresetIsUsageFailure(t *testing.T) {
	env := setupRunnerEnv(t, startStub(t, nil))

	code, _, stderr := run(t, "", "--config", env.configPath, "ask", "--preset", "9")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, input.ErrUnknownPreset.Error())
}

func TestAskBlankQuestionRaisesEmptyQueryNotice(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"text": "unused"}`))
	}))
	t.Cleanup(srv.Close)
	env := setupRunnerEnv(t, srv.URL)

	for _, args := range [][]string{{"ask", "   "}, {"ask"}} {
		code, stdout, stderr := run(t, "", append([]string{"--config", env.configPath}, args...)...)
		require.Equal(t, 2, code, args)
		require.Empty(t, stdout)
		require.Contains(t, stderr, exchange.ErrEmptyQuery.Error())
		require.Equal(t, 1, strings.Count(stderr, "Please enter your hotel query first"), stderr)
	}
	require.Zero(t, requests)
}

func TestAskServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "model offline"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	env := setupRunnerEnv(t, srv.URL)

	code, stdout, stderr := run(t, "", "--config", env.configPath, "ask", "hotels in tunis")
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "HTTP 500")
}

func TestListenWithoutVoiceBackend(t *testing.T) {
	env := setupRunnerEnv(t, startStub(t, nil))

	code, stdout, stderr := run(t, "", "--config", env.configPath, "listen")
	require.Equal(t, 1, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "voice backend disabled")
}

func TestPresetsListsNumberedQuestions(t *testing.T) {
	code, stdout, _ := run(t, "", "presets")
	require.Equal(t, 0, code)
	for i, preset := range input.Presets {
		require.Contains(t, stdout, fmt.Sprintf("%d. %s\n", i+1, preset))
	}
}

func TestRenderReadsStdin(t *testing.T) {
	code, stdout, _ := run(t, "Stay at Fiesta Beach Djerba.\\n\\nCheap & cheerful <3", "render", "--html")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Fiesta Beach Djerba</span>")
	require.Contains(t, stdout, "Cheap &amp; cheerful &lt;3")
	require.Equal(t, 2, strings.Count(stdout, "<p>"))

	code, stdout, _ = run(t, "Stay at Fiesta Beach Djerba.", "render")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Stay at Fiesta Beach Djerba.")
	require.NotContains(t, stdout, "<p>")
}

func TestConfigLoadFailure(t *testing.T) {
	setupRunnerEnv(t, "http://127.0.0.1:1")
	bad := filepath.Join(t.TempDir(), "bad.jsonc")
	require.NoError(t, os.WriteFile(bad, []byte(`{"service": {"endpoint": "x"}}`), 0o600))

	code, _, stderr := run(t, "", "--config", bad, "ask", "djerba")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "parse config")
}
