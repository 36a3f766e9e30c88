package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"isc.org/dhcpdleases"
	"isc.org/dhcpdleases/agent"
	dhcpdutil "isc.org/dhcpdleases/util"
)

// Default location of the environment file.
const defaultEnvironmentFile = "/etc/dhcpd-leases/agent.env"

// Sighup error is used to indicate that the agent received a SIGHUP
// signal.
type sighupError struct{}

// Returns sighupError error text.
func (e *sighupError) Error() string {
	return "received SIGHUP signal"
}

// Error used to indicate that Ctrl-C was pressed or SIGTERM was received
// to terminate the agent.
type ctrlcError struct{}

// Returns ctrlcError error text.
func (e *ctrlcError) Error() string {
	return "received Ctrl-C signal"
}

// Helper function that starts the lease file watcher and the Prometheus
// exporter, and waits for a signal.
func runAgent(settings *cli.Context, reload bool, signals <-chan os.Signal) error {
	if !reload {
		log.Infof("Starting DHCP lease agent, version %s, build date %s", dhcpdleases.Version, dhcpdleases.BuildDate)
	}

	path := agent.NewProcessManager().ResolveLeaseFile(settings.String("lease-file"))
	watcher, err := agent.NewLeaseFileWatcher(path)
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Stop()

	exporter := agent.NewPromDHCPDExporter(settings, watcher)
	exporter.Start()
	defer exporter.Shutdown()

	sig := <-signals
	if sig == syscall.SIGHUP {
		log.Info("Reloading DHCP lease agent after receiving SIGHUP signal")
		return &sighupError{}
	}
	log.WithField("signal", sig).Info("Received termination signal")
	return &ctrlcError{}
}

// Prepare urfave cli app with all flags and commands defined.
func setupApp(reload bool, signals <-chan os.Signal) *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, c.App.Version)
	}

	cli.HelpFlag = &cli.BoolFlag{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   "Show help",
	}

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version",
	}

	app := &cli.App{
		Name:     "DHCP Lease Agent",
		Usage:    "Watches the ISC DHCP server lease file and exports the lease statistics to Prometheus",
		Version:  dhcpdleases.Version,
		HelpName: "dhcpd-leases-agent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lease-file",
				Usage:   "The lease file location; if not provided, it is detected from the running dhcpd process",
				Aliases: []string{"f"},
				EnvVars: []string{"DHCPD_LEASES_FILE"},
			},
			&cli.StringFlag{
				Name:    "prometheus-address",
				Value:   "0.0.0.0",
				Usage:   "The IP or hostname to listen on for incoming Prometheus connections",
				EnvVars: []string{"DHCPD_LEASES_PROMETHEUS_ADDRESS"},
			},
			&cli.IntFlag{
				Name:    "prometheus-port",
				Value:   9548,
				Usage:   "The port to listen on for incoming Prometheus connections",
				EnvVars: []string{"DHCPD_LEASES_PROMETHEUS_PORT"},
			},
			&cli.IntFlag{
				Name:    "prometheus-interval",
				Value:   10,
				Usage:   "How often the agent collects the lease statistics, in seconds",
				EnvVars: []string{"DHCPD_LEASES_PROMETHEUS_INTERVAL"},
			},
			&cli.GenericFlag{
				Name:  "env-file",
				Usage: "Read the environment variables from the environment file; the default location is used if the value is not provided",
				Value: dhcpdutil.NewOptionalStringFlag(defaultEnvironmentFile),
			},
			&cli.StringFlag{
				Name:    "",
				Usage:   "Logging level can be specified using env variable only. Allowed values: are DEBUG, INFO, WARN, ERROR",
				Value:   "INFO",
				EnvVars: []string{dhcpdutil.LogLevelEnvironmentVariable},
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("env-file") {
				envFile := c.Generic("env-file").(*dhcpdutil.OptionalStringFlag).String()
				err := dhcpdutil.LoadEnvironmentFileToSetter(
					envFile,
					// Loads environment variables into context.
					dhcpdutil.NewCLIContextEnvironmentVariableSetter(c),
					// Loads environment variables into process.
					dhcpdutil.NewProcessEnvironmentVariableSetter(),
				)
				if err != nil {
					return errors.WithMessagef(err, "the '%s' environment file is invalid", envFile)
				}

				// Reconfigures logging using new environment variables.
				dhcpdutil.SetupLogging()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return runAgent(c, reload, signals)
		},
	}

	return app
}

// Main agent function. The agent is restarted with the re-read settings
// after receiving SIGHUP.
func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	reload := false
	for {
		dhcpdutil.SetupLogging()
		app := setupApp(reload, signals)
		err := app.Run(os.Args)
		var sighup *sighupError
		var ctrlc *ctrlcError
		switch {
		case err == nil:
			return
		case errors.As(err, &ctrlc):
			os.Exit(130)
		case errors.As(err, &sighup):
			reload = true
		default:
			log.Fatal(err)
		}
	}
}
