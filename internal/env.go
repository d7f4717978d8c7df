// Package internal holds the process-wide configuration shared by the commands.
//
// Every setting is a Flag. A value is resolved, lowest precedence first, from the flag
// default, the YAML file named by --config (keys are flag names), the flag's environment
// variable and finally the command line.
package internal

import (
	"fmt"
	"os"

	"rudpchat/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Resolved configuration values.
var (
	LogLevel   string
	ConfigFile string

	Address string
	Port    int
	Window  int

	Username string

	TimeoutMS   int
	MaxRetries  int
	BufferTTLMS int

	MaxClients int
)

// Flag describes one configuration setting.
type Flag struct {
	Name      string
	Shorthand string
	EnvVar    string
	Usage     string
	// Value points at the variable the flag is bound to: *string or *int.
	Value   interface{}
	Default interface{}
}

// Flag definitions.
var (
	LogLevelFlag = Flag{
		Name: "log-level", EnvVar: "RUDPCHAT_LOG_LEVEL", Value: &LogLevel, Default: "info",
		Usage: "log level: trace, debug, info, warn or error",
	}
	ConfigFileFlag = Flag{
		Name: "config", EnvVar: "RUDPCHAT_CONFIG", Value: &ConfigFile, Default: "",
		Usage: "YAML file with default flag values",
	}
	AddressFlag = Flag{
		Name: "address", Shorthand: "a", EnvVar: "RUDPCHAT_ADDRESS", Value: &Address, Default: "localhost",
		Usage: "server ip or hostname",
	}
	PortFlag = Flag{
		Name: "port", Shorthand: "p", EnvVar: "RUDPCHAT_PORT", Value: &Port, Default: 15000,
		Usage: "server port",
	}
	WindowFlag = Flag{
		Name: "window", Shorthand: "w", EnvVar: "RUDPCHAT_WINDOW", Value: &Window, Default: 3,
		Usage: "window size (accepted, delivery is stop-and-wait)",
	}
	UsernameFlag = Flag{
		Name: "user", Shorthand: "u", EnvVar: "RUDPCHAT_USER", Value: &Username, Default: "",
		Usage: "username of the client",
	}
	TimeoutMSFlag = Flag{
		Name: "timeout-ms", EnvVar: "RUDPCHAT_TIMEOUT_MS", Value: &TimeoutMS, Default: 500,
		Usage: "retransmission timeout in milliseconds",
	}
	MaxRetriesFlag = Flag{
		Name: "max-retries", EnvVar: "RUDPCHAT_MAX_RETRIES", Value: &MaxRetries, Default: 20,
		Usage: "retransmissions per packet before giving up, 0 retries forever",
	}
	BufferTTLMSFlag = Flag{
		Name: "buffer-ttl-ms", EnvVar: "RUDPCHAT_BUFFER_TTL_MS", Value: &BufferTTLMS, Default: 30000,
		Usage: "idle reassembly buffers are dropped after this many milliseconds, 0 keeps them",
	}
	MaxClientsFlag = Flag{
		Name: "max-clients", EnvVar: "RUDPCHAT_MAX_CLIENTS", Value: &MaxClients, Default: 10,
		Usage: "maximum number of joined users",
	}
)

var registered = make(map[string]*Flag)

// RegisterCommandFlags binds flags to cmd as persistent flags.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	for _, f := range flags {
		usage := f.Usage
		if f.EnvVar != "" {
			usage = fmt.Sprintf("%s [$%s]", usage, f.EnvVar)
		}
		switch v := f.Value.(type) {
		case *string:
			def, _ := f.Default.(string)
			cmd.PersistentFlags().StringVarP(v, f.Name, f.Shorthand, def, usage)
		case *int:
			def, _ := f.Default.(int)
			cmd.PersistentFlags().IntVarP(v, f.Name, f.Shorthand, def, usage)
		default:
			return errors.Errorf("flag %s: unsupported value type %T", f.Name, f.Value)
		}
		registered[f.Name] = f
	}
	return nil
}

// Resolve applies the config file and environment variables to every flag of cmd that was
// not set on the command line.
func Resolve(cmd *cobra.Command) error {
	if val, ok := os.LookupEnv(ConfigFileFlag.EnvVar); ok && !cmd.Flags().Changed(ConfigFileFlag.Name) {
		ConfigFile = val
	}
	fileValues, err := loadConfigFile(ConfigFile)
	if err != nil {
		return errors.Wrap(err, "load config file failed")
	}
	for name, f := range registered {
		if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
			continue
		}
		if val, ok := os.LookupEnv(f.EnvVar); ok && f.EnvVar != "" {
			if err := cmd.Flags().Set(name, val); err != nil {
				return errors.Wrapf(err, "apply $%s failed", f.EnvVar)
			}
			continue
		}
		if val, ok := fileValues[name]; ok {
			if err := cmd.Flags().Set(name, fmt.Sprint(val)); err != nil {
				return errors.Wrapf(err, "apply %s from %s failed", name, ConfigFile)
			}
		}
	}
	return nil
}

func loadConfigFile(path string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	if path == "" {
		return values, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file failed")
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, "parse YAML config failed")
	}
	return values, nil
}

type env struct {
	LogLevel    string `validate:"oneof=trace debug info warn error"`
	Address     string `validate:"required"`
	Port        int    `validate:"min=1,max=65535"`
	Window      int    `validate:"min=1"`
	TimeoutMS   int    `validate:"min=1"`
	MaxRetries  int    `validate:"min=0"`
	BufferTTLMS int    `validate:"min=0"`
	MaxClients  int    `validate:"min=1"`
}

// ValidateEnv checks the resolved configuration.
func ValidateEnv() error {
	return validate.Validate().Struct(env{
		LogLevel:    LogLevel,
		Address:     Address,
		Port:        Port,
		Window:      Window,
		TimeoutMS:   TimeoutMS,
		MaxRetries:  MaxRetries,
		BufferTTLMS: BufferTTLMS,
		MaxClients:  MaxClients,
	})
}
