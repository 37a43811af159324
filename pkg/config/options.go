package config

import (
	"encoding/json"
	"fmt"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
)

// Option names declared in config.yaml
const (
	OptionExtraConfig = "extraconfig"
)

// Options are the operator-set charm options
type Options struct {
	ExtraConfig string
}

// ParseOptions decodes the JSON printed by `config-get --format=json`.
// Unknown options are ignored; unset options keep their zero value.
func ParseOptions(data []byte) (Options, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Options{}, errors.NewValidationError("failed to parse charm options", err)
	}

	var options Options
	if value, ok := raw[OptionExtraConfig]; ok && value != nil {
		s, ok := value.(string)
		if !ok {
			return Options{}, errors.NewValidationError(
				fmt.Sprintf("option %s must be a string, got %T", OptionExtraConfig, value), nil)
		}
		options.ExtraConfig = s
	}

	return options, nil
}
