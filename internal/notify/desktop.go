package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// dispatchTimeout bounds every external notification command.
const dispatchTimeout = 400 * time.Millisecond

// Desktop sends freedesktop notifications over the session bus with busctl.
// Each event replaces the previous notification.
type Desktop struct {
	appName  string
	timeout  time.Duration
	messages Messages
	logger   *slog.Logger

	mu     sync.Mutex
	lastID uint32
}

func NewDesktop(appName string, timeout time.Duration, locale Locale, logger *slog.Logger) *Desktop {
	if strings.TrimSpace(appName) == "" {
		appName = "hoteladvisor"
	}
	return &Desktop{appName: appName, timeout: timeout, messages: MessagesFor(locale), logger: logger}
}

func (d *Desktop) Notify(ctx context.Context, event Event) {
	msg := d.messages.For(event)

	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	id, err := desktopNotify(runCtx, d.appName, d.lastID, msg.Title, msg.Detail, urgency(event.Kind), int(d.timeout.Milliseconds()))
	if err != nil {
		logDispatchFailure(d.logger, "desktop", err)
		return
	}
	d.lastID = id
}

func urgency(kind Kind) string {
	if kind.Severity() == SeverityError {
		return "2"
	}
	return "1"
}

// desktopNotify calls org.freedesktop.Notifications.Notify and returns the id
// assigned by the server.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, body string, urgency string, timeoutMS int) (uint32, error) {
	args := []string{
		"--user",
		"call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		body,
		"0", // actions
		"1", "urgency", "y", urgency,
		strconv.Itoa(timeoutMS),
	}

	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		return 0, commandError("desktop notify", err, out)
	}

	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("desktop notify invalid response: %q", strings.TrimSpace(string(out)))
	}
	value, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("desktop notify parse id %q: %w", fields[1], err)
	}
	return uint32(value), nil
}

func commandError(what string, err error, out []byte) error {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return fmt.Errorf("%s failed: %w", what, err)
	}
	return fmt.Errorf("%s failed: %w (%s)", what, err, trimmed)
}

func logDispatchFailure(logger *slog.Logger, backend string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.Debug("notification dispatch failed", "backend", backend, "error", err.Error())
}
