package config

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// parseArgv splits a command string with POSIX shell quoting rules.
// Variables such as $HOME are expanded from the process environment.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	argv, err := shell.Fields(input, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", input, err)
	}
	return argv, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
