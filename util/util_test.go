package dhcpdutil

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Test converting the logging level names.
func TestParseLogLevel(t *testing.T) {
	testCases := map[string]log.Level{
		"":        log.InfoLevel,
		"INFO":    log.InfoLevel,
		"debug":   log.DebugLevel,
		" WARN ":  log.WarnLevel,
		"warning": log.WarnLevel,
		"ERROR":   log.ErrorLevel,
	}
	for name, expected := range testCases {
		level, err := ParseLogLevel(name)
		require.NoError(t, err)
		require.Equal(t, expected, level)
	}

	level, err := ParseLogLevel("TRACE")
	require.ErrorContains(t, err, "unsupported logging level 'TRACE'")
	require.Equal(t, log.InfoLevel, level)
}

// Test that the logging level is taken from the environment.
func TestSetupLogging(t *testing.T) {
	previous := log.GetLevel()
	defer log.SetLevel(previous)

	t.Setenv(LogLevelEnvironmentVariable, "DEBUG")
	SetupLogging()
	require.Equal(t, log.DebugLevel, log.GetLevel())

	t.Setenv(LogLevelEnvironmentVariable, "bogus")
	SetupLogging()
	require.Equal(t, log.InfoLevel, log.GetLevel())
}
