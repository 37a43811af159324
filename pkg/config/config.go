package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Defaults matching the upstream Nagios 4 container image
const (
	DefaultContainer       = "nagios"
	DefaultService         = "nagios"
	DefaultRelation        = "monitors"
	DefaultNagiosDir       = "/etc/nagios4"
	DefaultConfigSubdir    = "conf.d"
	DefaultExtraConfigName = "extra.cfg"
	DefaultStateFileName   = ".nagios-charm-state.yaml"
	DefaultChangeTimeout   = 30 * time.Second
	DefaultLockWait        = 30 * time.Second
)

// CharmConfig represents the top-level settings file structure
type CharmConfig struct {
	Charm   CharmOptions      `yaml:"charm"`
	Pebble  PebbleOptions     `yaml:"pebble"`
	Logging logging.ZapConfig `yaml:"logging"`
}

// CharmOptions describe the workload and where its files live
type CharmOptions struct {
	Container       string        `yaml:"container"`
	Service         string        `yaml:"service"`
	Command         string        `yaml:"command,omitempty"`
	Relation        string        `yaml:"relation,omitempty"`
	NagiosDir       string        `yaml:"nagios_dir,omitempty"`
	ConfigDir       string        `yaml:"config_dir,omitempty"`
	ExtraConfigFile string        `yaml:"extra_config_file,omitempty"`
	StateFile       string        `yaml:"state_file,omitempty"`
	LockWait        time.Duration `yaml:"lock_wait,omitempty"`
}

// PebbleOptions configure the connection to the workload supervisor
type PebbleOptions struct {
	Socket        string        `yaml:"socket,omitempty"`
	ChangeTimeout time.Duration `yaml:"change_timeout,omitempty"`
}

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *CharmConfig {
	config := &CharmConfig{}
	if err := setConfigDefaults(config); err != nil {
		panic(err)
	}
	return config
}

// LoadConfigFromFile loads charm settings from a YAML file
func LoadConfigFromFile(filename string) (*CharmConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config CharmConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	if err := setConfigDefaults(&config); err != nil {
		return nil, errors.NewValidationError("failed to apply configuration defaults", err)
	}

	return &config, nil
}

// ResolveStateFile makes a relative state file path absolute under charmDir
func (c *CharmConfig) ResolveStateFile(charmDir string) string {
	if filepath.IsAbs(c.Charm.StateFile) || charmDir == "" {
		return c.Charm.StateFile
	}
	return filepath.Join(charmDir, c.Charm.StateFile)
}

// setConfigDefaults applies default values to configuration
func setConfigDefaults(config *CharmConfig) error {
	charm := &config.Charm

	if charm.Container == "" {
		charm.Container = DefaultContainer
	}
	if charm.Service == "" {
		charm.Service = DefaultService
	}
	if charm.Relation == "" {
		charm.Relation = DefaultRelation
	}
	if charm.NagiosDir == "" {
		charm.NagiosDir = DefaultNagiosDir
	}
	if charm.Command == "" {
		charm.Command = fmt.Sprintf("/usr/sbin/nagios4 %s", path.Join(charm.NagiosDir, "nagios.cfg"))
	}
	if charm.ConfigDir == "" {
		charm.ConfigDir = path.Join(charm.NagiosDir, DefaultConfigSubdir)
	}
	if charm.ExtraConfigFile == "" {
		charm.ExtraConfigFile = path.Join(charm.ConfigDir, DefaultExtraConfigName)
	}
	if charm.StateFile == "" {
		charm.StateFile = DefaultStateFileName
	}
	if charm.LockWait == 0 {
		charm.LockWait = DefaultLockWait
	}

	if config.Pebble.Socket == "" {
		config.Pebble.Socket = fmt.Sprintf("/charm/containers/%s/pebble.socket", charm.Container)
	}
	if config.Pebble.ChangeTimeout == 0 {
		config.Pebble.ChangeTimeout = DefaultChangeTimeout
	}

	defaults := logging.DefaultZapConfig()
	if config.Logging.Level == "" {
		config.Logging.Level = defaults.Level
	}
	if config.Logging.Format == "" {
		config.Logging.Format = defaults.Format
	}
	if config.Logging.Output == "" {
		config.Logging.Output = defaults.Output
	}

	return nil
}

// ValidateConfig validates the entire configuration structure
func ValidateConfig(config *CharmConfig) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	collection := errors.NewErrorCollection()
	collection.Add(validateCharmOptions(&config.Charm))
	collection.Add(validatePebbleOptions(&config.Pebble))
	collection.Add(validateLoggingConfig(&config.Logging))

	if err := collection.ToError(); err != nil {
		return errors.NewValidationError("invalid configuration", err)
	}
	return nil
}

type namedValue struct {
	name  string
	value string
}

func validateCharmOptions(charm *CharmOptions) error {
	collection := errors.NewErrorCollection()

	for _, option := range []namedValue{
		{"container", charm.Container},
		{"service", charm.Service},
		{"relation", charm.Relation},
		{"command", charm.Command},
	} {
		if strings.TrimSpace(option.value) == "" {
			collection.Add(errors.NewValidationError(option.name+" cannot be empty", nil).
				WithContext("option", option.name))
		}
	}

	// Workload paths are inside the container and always slash separated
	for _, option := range []namedValue{
		{"nagios_dir", charm.NagiosDir},
		{"config_dir", charm.ConfigDir},
		{"extra_config_file", charm.ExtraConfigFile},
	} {
		if !path.IsAbs(option.value) {
			collection.Add(errors.NewValidationError(fmt.Sprintf("%s must be an absolute path: %s", option.name, option.value), nil).
				WithContext("option", option.name))
		}
	}

	if charm.LockWait < 0 {
		collection.Add(errors.NewValidationError("lock wait cannot be negative", nil))
	}

	return collection.ToError()
}

func validatePebbleOptions(pebble *PebbleOptions) error {
	if pebble.Socket == "" {
		return errors.NewValidationError("pebble socket cannot be empty", nil)
	}
	if pebble.ChangeTimeout < 0 {
		return errors.NewValidationError("pebble change timeout cannot be negative", nil)
	}
	return nil
}

func validateLoggingConfig(config *logging.ZapConfig) error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	valid := false
	for _, level := range validLogLevels {
		if config.Level == level {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewValidationError(
			fmt.Sprintf("invalid log level: %s", config.Level),
			nil,
		).WithContext("valid_levels", "debug, info, warn, error")
	}

	switch config.Format {
	case "json", "console":
	default:
		return errors.NewValidationError(fmt.Sprintf("invalid log format: %s", config.Format), nil).
			WithContext("valid_formats", "json, console")
	}

	return nil
}
