package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rbright/hoteladvisor/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMessageTablesCoverEveryKind(t *testing.T) {
	for _, locale := range []Locale{LocaleBilingual, LocaleEnglish} {
		table := MessagesFor(locale)
		for _, kind := range Kinds {
			msg, ok := table[kind]
			require.True(t, ok, "%s missing %s", locale, kind)
			require.NotEmpty(t, msg.Title)
			require.NotEmpty(t, msg.Detail)
		}
	}
}

func TestBilingualMessagesUseArabicTitles(t *testing.T) {
	msg := MessagesFor(LocaleBilingual).For(Event{Kind: KindConnectivityError})
	require.Equal(t, "خطأ في الاتصال", msg.Title)
	require.Equal(t, "Could not connect to the server. Please try again.", msg.Detail)
}

func TestMessagesForAppendsSubject(t *testing.T) {
	msg := MessagesFor(LocaleEnglish).For(Event{Kind: KindAudioDownloaded, Subject: "/tmp/a.mp3"})
	require.Equal(t, "Audio file downloaded successfully! /tmp/a.mp3", msg.Detail)
}

func TestParseLocale(t *testing.T) {
	require.Equal(t, LocaleEnglish, ParseLocale(" EN "))
	require.Equal(t, LocaleBilingual, ParseLocale("bilingual"))
	require.Equal(t, LocaleBilingual, ParseLocale(""))
}

func TestMessageText(t *testing.T) {
	require.Equal(t, "a · b", Message{Title: "a", Detail: "b"}.Text())
	require.Equal(t, "a", Message{Title: "a"}.Text())
	require.Equal(t, "b", Message{Detail: "b"}.Text())
}

func TestSeverity(t *testing.T) {
	require.Equal(t, SeverityError, KindConnectivityError.Severity())
	require.Equal(t, SeverityError, KindQueryEmpty.Severity())
	require.Equal(t, SeverityInfo, KindSuccess.Severity())
	require.Equal(t, SeverityInfo, KindListeningStarted.Severity())
}

func TestMultiFansOutInOrder(t *testing.T) {
	var order []string
	first := Func(func(context.Context, Event) { order = append(order, "first") })
	second := Func(func(context.Context, Event) { order = append(order, "second") })

	Multi{first, nil, second}.Notify(context.Background(), Event{Kind: KindSuccess})
	require.Equal(t, []string{"first", "second"}, order)
}

func TestOrNop(t *testing.T) {
	require.IsType(t, Nop{}, OrNop(nil))
	rec := &Recorder{}
	require.Same(t, rec, OrNop(rec))
}

func TestRecorderCounts(t *testing.T) {
	rec := &Recorder{}
	rec.Notify(context.Background(), Event{Kind: KindSuccess})
	rec.Notify(context.Background(), Event{Kind: KindSuccess})
	rec.Notify(context.Background(), Event{Kind: KindNoAudio})

	require.Equal(t, 2, rec.Count(KindSuccess))
	require.Equal(t, 1, rec.Count(KindNoAudio))
	require.Len(t, rec.Events(), 3)
}

func TestTerminalWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, LocaleEnglish)

	term.Notify(context.Background(), Event{Kind: KindSuccess})
	term.Notify(context.Background(), Event{Kind: KindConnectivityError})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "✓ Recommendations ready")
	require.Contains(t, lines[1], "✗ Connection error")
}

func TestHyprDispatchesNotify(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installStub(t, "hyprctl", `printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"`)

	h := NewHypr(1500*time.Millisecond, LocaleEnglish, nil)
	h.Notify(context.Background(), Event{Kind: KindListeningStarted})
	h.Notify(context.Background(), Event{Kind: KindRecognitionError})

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "--quiet dispatch notify 1 1500 rgb(89b4fa) 🎤 Listening… · Speak now to ask about Tunisian hotels", lines[0])
	require.Equal(t, "--quiet dispatch notify 3 1500 rgb(f38ba8) Speech recognition error · Could not recognize speech. Please try again.", lines[1])
}

func TestDesktopReplacesPreviousNotification(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("BUSCTL_ARGS_FILE", argsFile)
	installStub(t, "busctl", `
printf '%s\n' "$*" >> "${BUSCTL_ARGS_FILE}"
echo "u 42"
`)

	d := NewDesktop("", 3*time.Second, LocaleEnglish, nil)
	d.Notify(context.Background(), Event{Kind: KindSuccess})
	d.Notify(context.Background(), Event{Kind: KindQueryEmpty})

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "Notify susssasa{sv}i hoteladvisor 0  Recommendations ready Hotel recommendations received successfully! 0 1 urgency y 1 3000")
	require.Contains(t, lines[1], "hoteladvisor 42  Query required")
	require.Contains(t, lines[1], "urgency y 2")
}

func TestDesktopNotifyRejectsUnexpectedResponse(t *testing.T) {
	installStub(t, "busctl", `echo "nope"`)

	_, err := desktopNotify(context.Background(), "app", 0, "s", "b", "1", 100)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid response")
}

func TestDesktopNotifyIncludesCommandOutputOnFailure(t *testing.T) {
	installStub(t, "busctl", `echo "bus unavailable" >&2; exit 1`)

	_, err := desktopNotify(context.Background(), "app", 0, "s", "b", "1", 100)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bus unavailable")
}

func TestCuePlaysOnlyAudibleKinds(t *testing.T) {
	var plays atomic.Int32
	cue := &Cue{play: func(_ context.Context, samples []int16) error {
		if len(samples) > 0 {
			plays.Add(1)
		}
		return nil
	}}

	cue.Notify(context.Background(), Event{Kind: KindListeningStarted})
	cue.Notify(context.Background(), Event{Kind: KindQueryEmpty})
	cue.Notify(context.Background(), Event{Kind: KindSuccess})
	cue.Wait()

	require.Equal(t, int32(2), plays.Load())
}

func TestCuePlaybackFailureIsSwallowed(t *testing.T) {
	cue := &Cue{play: func(context.Context, []int16) error { return errors.New("no sink") }}
	cue.Notify(context.Background(), Event{Kind: KindConnectivityError})
	cue.Wait()
}

func TestSynthesizeToneDuration(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	require.Len(t, got, samplesForDuration(100*time.Millisecond))
	require.Zero(t, got[0])
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSynthesizeCueIncludesGaps(t *testing.T) {
	parts := []toneSpec{
		{frequencyHz: 440, duration: 50 * time.Millisecond, volume: 0.2},
		{frequencyHz: 660, duration: 50 * time.Millisecond, volume: 0.2},
	}
	want := 2*samplesForDuration(50*time.Millisecond) + samplesForDuration(22*time.Millisecond)
	require.Len(t, synthesizeCue(parts), want)
}

func TestFromConfigSelectsBackends(t *testing.T) {
	cfg := config.Default().Notify
	cfg.Sound = false

	cfg.Backend = "terminal"
	require.IsType(t, &Terminal{}, FromConfig(cfg, &bytes.Buffer{}, nil))

	cfg.Backend = "desktop"
	require.IsType(t, &Desktop{}, FromConfig(cfg, nil, nil))

	cfg.Backend = "hypr"
	require.IsType(t, &Hypr{}, FromConfig(cfg, nil, nil))

	cfg.Backend = "none"
	require.IsType(t, Nop{}, FromConfig(cfg, nil, nil))

	cfg.Backend = "terminal"
	cfg.Sound = true
	multi, ok := FromConfig(cfg, &bytes.Buffer{}, nil).(Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
}

func installStub(t *testing.T, name string, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}

func TestWaitReachesCuesInsideMulti(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	cue := &Cue{play: func(context.Context, []int16) error {
		<-release
		finished.Store(true)
		return nil
	}}
	n := Multi{&Recorder{}, cue}

	n.Notify(context.Background(), Event{Kind: KindSuccess})
	close(release)
	Wait(n)
	require.True(t, finished.Load())

	Wait(Nop{})
	Wait(nil)
}
