package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"isc.org/dhcpdleases"
	"isc.org/dhcpdleases/agent"
	dhcpddata "isc.org/dhcpdleases/daemondata/dhcpd"
	dhcpdutil "isc.org/dhcpdleases/util"
)

// Layout of the time specified with the --at flag.
const atLayout = "2006/01/02 15:04:05"

// Reads the lease file specified in the command line, detected from the
// running DHCP server or located in the default location.
func loadLeases(c *cli.Context) (dhcpddata.Leases, error) {
	path := agent.NewProcessManager().ResolveLeaseFile(c.String("lease-file"))
	result, err := dhcpddata.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return result.Leases, nil
}

// Returns the time specified with the --at flag or the current time.
func parseAt(c *cli.Context) (dhcpddata.Date, error) {
	if !c.IsSet("at") {
		return dhcpddata.NewDateFromTime(time.Now()), nil
	}
	at, err := time.Parse(atLayout, c.String("at"))
	if err != nil {
		return dhcpddata.Date{}, errors.Wrapf(err, "invalid time '%s'; expected format is YYYY/MM/DD HH:MM:SS", c.String("at"))
	}
	return dhcpddata.NewDateFromTime(at), nil
}

// Checks that the looked up value is valid for the lease field.
func validateFieldValue(field dhcpddata.LeasesField, value string) error {
	switch field {
	case dhcpddata.FieldLeasedIP:
		if !govalidator.IsIP(value) {
			return errors.Errorf("'%s' is not a valid IP address", value)
		}
	case dhcpddata.FieldMAC:
		if !govalidator.IsMAC(value) {
			return errors.Errorf("'%s' is not a valid MAC address", value)
		}
	default:
		if value == "" {
			return errors.Errorf("%s cannot be empty", field)
		}
	}
	return nil
}

// Execute list command. It prints all lease declarations, optionally
// restricted to the subnet.
func runList(c *cli.Context) error {
	leases, err := loadLeases(c)
	if err != nil {
		return err
	}
	if c.IsSet("subnet") {
		subnet, err := dhcpdutil.ParseSubnet(c.String("subnet"))
		if err != nil {
			return err
		}
		leases = leases.InSubnet(subnet)
	}
	return writeLeases(c.App.Writer, c.String("format"), leases)
}

// Execute active command. It prints the lease active at the specified
// time for the looked up value.
func runActive(c *cli.Context) error {
	field, err := dhcpddata.ParseLeasesField(c.String("by"))
	if err != nil {
		return err
	}
	value := c.String("value")
	if err = validateFieldValue(field, value); err != nil {
		return err
	}
	at, err := parseAt(c)
	if err != nil {
		return err
	}
	leases, err := loadLeases(c)
	if err != nil {
		return err
	}
	lease, ok := leases.ActiveBy(field, value, at)
	if !ok {
		return errors.Errorf("no active lease for %s '%s' at %s", field, value, at)
	}
	return writeLeases(c.App.Writer, c.String("format"), dhcpddata.Leases{lease})
}

// Execute history command. It prints all lease declarations for the
// address in the declaration order.
func runHistory(c *cli.Context) error {
	ip, mac := c.String("ip"), c.String("mac")
	if (ip == "") == (mac == "") {
		return errors.New("exactly one of --ip and --mac must be specified")
	}
	field, value := dhcpddata.FieldLeasedIP, ip
	if mac != "" {
		field, value = dhcpddata.FieldMAC, mac
	}
	if err := validateFieldValue(field, value); err != nil {
		return err
	}
	leases, err := loadLeases(c)
	if err != nil {
		return err
	}
	if field == dhcpddata.FieldMAC {
		leases = leases.ByMACAll(value)
	} else {
		leases = leases.ByLeasedAll(value)
	}
	return writeLeases(c.App.Writer, c.String("format"), leases)
}

// Execute hostnames or client-hostnames command.
func runNames(c *cli.Context, field dhcpddata.LeasesField) error {
	leases, err := loadLeases(c)
	if err != nil {
		return err
	}
	names := leases.Hostnames()
	if field == dhcpddata.FieldClientHostname {
		names = leases.ClientHostnames()
	}
	return writeNames(c.App.Writer, c.String("format"), names)
}

// Execute utilization command. It prints the number of the active leases
// in the subnet relative to the subnet size.
func runUtilization(c *cli.Context) error {
	subnet, err := dhcpdutil.ParseSubnet(c.String("subnet"))
	if err != nil {
		return err
	}
	at, err := parseAt(c)
	if err != nil {
		return err
	}
	leases, err := loadLeases(c)
	if err != nil {
		return err
	}
	active := leases.InSubnet(subnet).ActiveAt(at)
	first, last := dhcpdutil.SubnetRange(subnet)
	return writeUtilization(c.App.Writer, c.String("format"), utilizationView{
		Subnet:       subnet.String(),
		FirstAddress: first.String(),
		LastAddress:  last.String(),
		Total:        dhcpdutil.SubnetSize(subnet).String(),
		Active:       len(active),
		Utilization:  dhcpdutil.SubnetUtilization(len(active), subnet),
	})
}

// Creates the flag specifying the point in time of the query.
func newAtFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "at",
		Usage: "The point in time in the YYYY/MM/DD HH:MM:SS format (UTC); the current time is used if not provided",
	}
}

// Configures the logger. The logs are written to stderr so they are not
// mixed with the command output.
func setupLogging() {
	dhcpdutil.SetupLogging()
	log.SetOutput(os.Stderr)
}

// Prepare urfave cli app with all flags and commands defined.
func setupApp() *cli.App {
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
		Name:  "DHCP Leases",
		Usage: "A tool for inspecting the ISC DHCP server lease file.",
		Description: `The tool reads the lease file written by the ISC DHCP server and
   answers which addresses are leased, to whom, and in which binding state.

   The lease file is taken from the --lease-file flag. If it is not provided,
   the tool looks for a running dhcpd process and uses its -lf argument.
   Otherwise, the default location is used.`,
		Version:  fmt.Sprintf("%s (build date %s)", dhcpdleases.Version, dhcpdleases.BuildDate),
		HelpName: "dhcpd-leases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lease-file",
				Usage:   "The lease file location",
				Aliases: []string{"f"},
				EnvVars: []string{"DHCPD_LEASES_FILE"},
			},
			&cli.StringFlag{
				Name:    "format",
				Usage:   "The output format; it can be one of 'text', 'json'",
				Value:   formatText,
				EnvVars: []string{"DHCPD_LEASES_FORMAT"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Read the environment variables from the environment file",
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
				err := dhcpdutil.LoadEnvironmentFileToSetter(
					c.String("env-file"),
					// Loads environment variables into context.
					dhcpdutil.NewCLIContextEnvironmentVariableSetter(c),
					// Loads environment variables into process.
					dhcpdutil.NewProcessEnvironmentVariableSetter(),
				)
				if err != nil {
					return errors.WithMessagef(err, "the '%s' environment file is invalid", c.String("env-file"))
				}
				// Reconfigures logging using new environment variables.
				setupLogging()
			}
			if !slices.Contains([]string{formatText, formatJSON}, c.String("format")) {
				return errors.Errorf("unsupported output format '%s'", c.String("format"))
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "Print all lease declarations in the file order",
				UsageText: "dhcpd-leases list [--subnet prefix]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "subnet",
						Usage:   "Print only the leases from the subnet, e.g. 192.0.2.0/24",
						Aliases: []string{"s"},
					},
				},
				Action: runList,
			},
			{
				Name:      "active",
				Usage:     "Print the lease active at the specified time",
				UsageText: "dhcpd-leases active --by ip|mac|hostname|client-hostname --value value [--at time]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "by",
						Usage:    "The looked up lease field; it can be one of 'ip', 'mac', 'hostname', 'client-hostname'",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "value",
						Usage:    "The looked up value",
						Required: true,
					},
					newAtFlag(),
				},
				Action: runActive,
			},
			{
				Name:      "history",
				Usage:     "Print all lease declarations for the address",
				UsageText: "dhcpd-leases history --ip address | --mac address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ip",
						Usage: "The leased IP address",
					},
					&cli.StringFlag{
						Name:  "mac",
						Usage: "The client MAC address",
					},
				},
				Action: runHistory,
			},
			{
				Name:      "hostnames",
				Usage:     "Print the distinct hostnames",
				UsageText: "dhcpd-leases hostnames",
				Action: func(c *cli.Context) error {
					return runNames(c, dhcpddata.FieldHostname)
				},
			},
			{
				Name:      "client-hostnames",
				Usage:     "Print the distinct client hostnames",
				UsageText: "dhcpd-leases client-hostnames",
				Action: func(c *cli.Context) error {
					return runNames(c, dhcpddata.FieldClientHostname)
				},
			},
			{
				Name:      "utilization",
				Usage:     "Print the number of the active leases in the subnet",
				UsageText: "dhcpd-leases utilization --subnet prefix [--at time]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "subnet",
						Usage:    "The subnet prefix, e.g. 192.0.2.0/24",
						Aliases:  []string{"s"},
						Required: true,
					},
					newAtFlag(),
				},
				Action: runUtilization,
			},
		},
	}

	return app
}

func main() {
	// Setup logging
	setupLogging()

	app := setupApp()
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
