package notify

import (
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// Hypr shows events with Hyprland's built-in notification overlay.
type Hypr struct {
	timeout  time.Duration
	messages Messages
	logger   *slog.Logger
}

func NewHypr(timeout time.Duration, locale Locale, logger *slog.Logger) *Hypr {
	return &Hypr{timeout: timeout, messages: MessagesFor(locale), logger: logger}
}

func (h *Hypr) Notify(ctx context.Context, event Event) {
	icon, color := 1, "rgb(89b4fa)"
	if event.Kind.Severity() == SeverityError {
		icon, color = 3, "rgb(f38ba8)"
	}

	runCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	text := h.messages.For(event).Text()
	args := []string{"--quiet", "dispatch", "notify", strconv.Itoa(icon), strconv.Itoa(int(h.timeout.Milliseconds())), color, text}
	if out, err := exec.CommandContext(runCtx, "hyprctl", args...).CombinedOutput(); err != nil {
		logDispatchFailure(h.logger, "hypr", commandError("hyprctl notify", err, out))
	}
}
