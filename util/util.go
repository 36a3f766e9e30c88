package dhcpdutil

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Environment variable holding the logging level.
const LogLevelEnvironmentVariable = "DHCPD_LEASES_LOG_LEVEL"

// Converts the logging level name into the logrus level. The empty name
// means the info level.
func ParseLogLevel(name string) (log.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "INFO":
		return log.InfoLevel, nil
	case "DEBUG":
		return log.DebugLevel, nil
	case "WARN", "WARNING":
		return log.WarnLevel, nil
	case "ERROR":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, errors.Errorf("unsupported logging level '%s'; allowed values are: DEBUG, INFO, WARN, ERROR", name)
	}
}

// Configures the logger. The level is read from the environment and the
// colors are enabled only when the standard output is a terminal.
func SetupLogging() {
	level, err := ParseLogLevel(os.Getenv(LogLevelEnvironmentVariable))
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		ForceColors:     term.IsTerminal(int(os.Stdout.Fd())),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			// Grab filename and line of current frame and add it to log entry
			_, filename := path.Split(f.File)
			return "", fmt.Sprintf("%20v:%-5d", filename, f.Line)
		},
	})
	if err != nil {
		log.WithError(err).Warn("Invalid logging level; using INFO")
	}
}
