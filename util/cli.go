package dhcpdutil

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// The CLI flag that accepts an optional string value. If not provided
// the default one will be used.
type OptionalStringFlag struct {
	value string
}

// Constructs the optional string flag.
func NewOptionalStringFlag(defaultValue string) *OptionalStringFlag {
	return &OptionalStringFlag{
		value: defaultValue,
	}
}

// Implements the cli.Generic interface. Sets a flag value if non-empty
// string provided. There is a workaround for the cli package internals that
// only boolean flag can accept no arguments.
func (f *OptionalStringFlag) Set(value string) error {
	if value != "true" && value != "" {
		f.value = value
	}
	return nil
}

// Implements the cli.Generic interface. Prints the value.
func (f *OptionalStringFlag) String() string {
	return f.value
}

// Implements the Boolean flag interface because only boolean flag can accept
// no arguments.
func (f *OptionalStringFlag) IsBoolFlag() bool {
	return true
}

// The flags exposing the environment variables they are read from.
type environmentVariablesFlag interface {
	cli.Flag
	GetEnvVars() []string
}

// Sets the flag values of the CLI context from the environment variables.
// The environment file is loaded after the command line is parsed, so its
// entries have to be applied to the flags explicitly.
type cliContextEnvironmentVariableSetter struct {
	context *cli.Context
}

// Constructs the setter applying the environment variables to the flags
// of the CLI application.
func NewCLIContextEnvironmentVariableSetter(context *cli.Context) EnvironmentVariableSetter {
	return &cliContextEnvironmentVariableSetter{context: context}
}

// Implements the EnvironmentVariableSetter interface. The value is set to
// the flag bound to the environment variable unless the flag was specified
// explicitly. The variables not bound to any flag are ignored.
func (s *cliContextEnvironmentVariableSetter) Set(key, value string) error {
	for _, flag := range s.context.App.Flags {
		envFlag, ok := flag.(environmentVariablesFlag)
		if !ok || !slices.Contains(envFlag.GetEnvVars(), key) {
			continue
		}
		name := envFlag.Names()[0]
		if name == "" || s.context.IsSet(name) {
			return nil
		}
		return errors.Wrapf(s.context.Set(name, value), "cannot set the '%s' flag", name)
	}
	return nil
}
