// Package output copies the rendered answer to the system clipboard.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNothingToCopy is returned for an empty answer.
var ErrNothingToCopy = errors.New("nothing to copy")

const clipboardTimeout = 2 * time.Second

// Clipboard pipes text into a configured command such as wl-copy.
type Clipboard struct {
	argv   []string
	logger *slog.Logger
}

func NewClipboard(argv []string, logger *slog.Logger) *Clipboard {
	return &Clipboard{argv: append([]string(nil), argv...), logger: logger}
}

// Copy writes text to the clipboard command's stdin.
func (c *Clipboard) Copy(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNothingToCopy
	}

	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, c.argv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("answer copied", "command", c.argv[0], "bytes", len(text))
	}
	return nil
}

// runCommandWithInput executes argv with input on stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			return fmt.Errorf("run %s: %w (%s)", argv[0], err, trimmed)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
