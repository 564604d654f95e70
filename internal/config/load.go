package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
	// EnvFile is the .env file applied to the process, if any.
	EnvFile string
}

// Load resolves, reads, parses, and validates the runtime configuration.
// A .env file beside the config is applied first; variables already present in
// the environment are never overridden.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	envFile, err := loadDotenv(filepath.Join(filepath.Dir(resolvedPath), ".env"))
	if err != nil {
		return Loaded{}, err
	}

	base := Default()
	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
		}
		warnings, verr := Validate(base)
		if verr != nil {
			return Loaded{}, verr
		}
		warnings = append([]Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		}}, warnings...)
		return Loaded{Path: resolvedPath, Config: base, Warnings: warnings, EnvFile: envFile}, nil
	}

	cfg, warnings, err := Parse(content, base)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
		EnvFile:  envFile,
	}, nil
}

func loadDotenv(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load env file %q: %w", path, err)
	}
	return path, nil
}
