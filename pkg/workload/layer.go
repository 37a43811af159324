package workload

import (
	"github.com/core-tools/nagios-k8s-charm/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Service startup modes
const (
	StartupEnabled  = "enabled"
	StartupDisabled = "disabled"
)

// Layer override modes
const (
	OverrideMerge   = "merge"
	OverrideReplace = "replace"
)

// Layer is a supervisor configuration layer in Pebble's layer schema
type Layer struct {
	Summary     string             `yaml:"summary,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Services    map[string]Service `yaml:"services,omitempty"`
}

// Service is a single process definition inside a layer
type Service struct {
	Override    string            `yaml:"override"`
	Summary     string            `yaml:"summary,omitempty"`
	Command     string            `yaml:"command,omitempty"`
	Startup     string            `yaml:"startup,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// Validate checks that every service can be applied
func (l *Layer) Validate() error {
	if l == nil {
		return errors.NewValidationError("layer cannot be nil", nil)
	}

	for name, service := range l.Services {
		if name == "" {
			return errors.NewValidationError("service name cannot be empty", nil)
		}
		switch service.Override {
		case OverrideMerge, OverrideReplace:
		default:
			return errors.NewValidationError("invalid service override: "+service.Override, nil).
				WithContext("service", name).
				WithContext("valid_overrides", "merge, replace")
		}
		switch service.Startup {
		case "", StartupEnabled, StartupDisabled:
		default:
			return errors.NewValidationError("invalid service startup: "+service.Startup, nil).
				WithContext("service", name)
		}
		if service.Override == OverrideReplace && service.Command == "" {
			return errors.NewValidationError("replacing service requires a command", nil).WithContext("service", name)
		}
	}

	return nil
}

// Marshal encodes the layer as YAML
func (l *Layer) Marshal() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode layer", err)
	}
	return data, nil
}
