package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"isc.org/dhcpdleases"
)

// Runs the application with the arguments and the signal delivered to it.
func runApp(t *testing.T, sig os.Signal, args ...string) (string, error) {
	t.Helper()
	signals := make(chan os.Signal, 1)
	if sig != nil {
		signals <- sig
	}
	app := setupApp(false, signals)
	var stdout bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"dhcpd-leases-agent"}, args...))
	return stdout.String(), err
}

// Writes an empty lease file in a temporary directory.
func newLeaseFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dhcpd.leases")
	require.NoError(t, os.WriteFile(path, []byte("lease 192.0.2.1 {\n}\n"), 0o600))
	return path
}

// This test checks if -h reports all expected command-line switches.
func TestCommandLineSwitches(t *testing.T) {
	stdout, err := runApp(t, nil, "-h")
	require.NoError(t, err)
	for _, expected := range []string{
		"-v", "--version", "-f", "--lease-file", "--prometheus-address",
		"--prometheus-port", "--prometheus-interval", "--env-file",
	} {
		require.Contains(t, stdout, expected)
	}
}

// This test checks if --version (and -v) report expected version.
func TestCommandLineVersion(t *testing.T) {
	for _, flag := range []string{"-v", "--version"} {
		stdout, err := runApp(t, nil, flag)
		require.NoError(t, err)
		require.Equal(t, dhcpdleases.Version, strings.TrimSpace(stdout))
	}
}

// Test that the agent asks for the restart after SIGHUP.
func TestRunAgentSighup(t *testing.T) {
	_, err := runApp(t, syscall.SIGHUP, "-f", newLeaseFile(t), "--prometheus-address", "127.0.0.1", "--prometheus-port", "0")
	var sighup *sighupError
	require.ErrorAs(t, err, &sighup)
}

// Test that the agent stops after SIGTERM.
func TestRunAgentTerminate(t *testing.T) {
	_, err := runApp(t, syscall.SIGTERM, "-f", newLeaseFile(t), "--prometheus-address", "127.0.0.1", "--prometheus-port", "0")
	var ctrlc *ctrlcError
	require.ErrorAs(t, err, &ctrlc)
}

// Test that the agent does not start when the lease file directory is
// missing.
func TestRunAgentMissingDirectory(t *testing.T) {
	_, err := runApp(t, syscall.SIGTERM, "-f", filepath.Join(t.TempDir(), "missing", "dhcpd.leases"))
	require.ErrorContains(t, err, "cannot resolve the lease file path")
}

// Test that the settings are read from the environment file.
func TestEnvironmentFile(t *testing.T) {
	t.Setenv("DHCPD_LEASES_PROMETHEUS_PORT", "")
	os.Unsetenv("DHCPD_LEASES_PROMETHEUS_PORT")

	envFile := filepath.Join(t.TempDir(), "agent.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DHCPD_LEASES_PROMETHEUS_PORT=0\n"), 0o600))

	_, err := runApp(t, syscall.SIGTERM, "-f", newLeaseFile(t), "--prometheus-address", "127.0.0.1", "--env-file="+envFile)
	var ctrlc *ctrlcError
	require.ErrorAs(t, err, &ctrlc)
	require.Equal(t, "0", os.Getenv("DHCPD_LEASES_PROMETHEUS_PORT"))

	_, err = runApp(t, syscall.SIGTERM, "--env-file="+filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "environment file is invalid")
}
