package main

import (
	"errors"
	"os"
	"os/exec"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainHelp(t *testing.T) {
	output, err := runMainSubprocess(t, "--help")
	require.NoError(t, err, string(output))
	require.Contains(t, string(output), "USAGE:")
	require.Contains(t, string(output), "ask")
}

func TestMainPresets(t *testing.T) {
	output, err := runMainSubprocess(t, "presets")
	require.NoError(t, err, string(output))
	require.Contains(t, string(output), "1. ")
}

func TestMainInvalidCommandExitsWithUsageStatus(t *testing.T) {
	output, err := runMainSubprocess(t, "not-a-command")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.ExitCode())
	require.Contains(t, string(output), "unknown command")
}

func TestMainHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	os.Args = []string{"hoteladvisor"}
	if i := slices.Index(args, "--"); i >= 0 {
		os.Args = append(os.Args, args[i+1:]...)
	}
	main()
}

func runMainSubprocess(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()

	cmd := exec.Command(os.Args[0], append([]string{"-test.run=TestMainHelperProcess", "--"}, args...)...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd.CombinedOutput()
}
