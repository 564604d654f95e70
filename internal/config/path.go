package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "hoteladvisor"

// ResolvePath applies CLI, XDG and home fallback rules for config.jsonc.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, appDir, "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", appDir, "config.jsonc"), nil
}

// ResolveExportDir returns the directory audio exports are written to:
// the configured dir, then XDG_DOWNLOAD_DIR, then ~/Downloads, then ".".
func ResolveExportDir(cfg ExportConfig) string {
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		return expandHome(dir)
	}
	if dir := strings.TrimSpace(os.Getenv("XDG_DOWNLOAD_DIR")); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		downloads := filepath.Join(home, "Downloads")
		if info, err := os.Stat(downloads); err == nil && info.IsDir() {
			return downloads
		}
	}
	return "."
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
}
