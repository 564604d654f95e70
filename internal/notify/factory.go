package notify

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rbright/hoteladvisor/internal/config"
)

// FromConfig builds the notifier selected by cfg. Terminal output goes to w.
func FromConfig(cfg config.NotifyConfig, w io.Writer, logger *slog.Logger) Notifier {
	locale := ParseLocale(cfg.Locale)

	var out Multi
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "none":
	case "desktop":
		out = append(out, NewDesktop(cfg.AppName, cfg.Timeout, locale, logger))
	case "hypr":
		out = append(out, NewHypr(cfg.Timeout, locale, logger))
	default:
		out = append(out, NewTerminal(w, locale))
	}
	if cfg.Sound {
		out = append(out, NewCue(logger))
	}

	if len(out) == 0 {
		return Nop{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
