package lifecycle

import (
	"github.com/core-tools/nagios-k8s-charm/pkg/workload"
)

// EnvExtraConfig carries the extraconfig option into the Nagios process
const EnvExtraConfig = "extraconfig"

// ServiceDefinition describes the supervised Nagios process
type ServiceDefinition struct {
	Name    string
	Command string
}

// NagiosLayer builds the layer declaring the Nagios service
func NagiosLayer(def ServiceDefinition, extraConfig string) *workload.Layer {
	return &workload.Layer{
		Summary:     def.Name + " layer",
		Description: "pebble config layer for " + def.Name,
		Services: map[string]workload.Service{
			def.Name: {
				Override: workload.OverrideReplace,
				Summary:  def.Name,
				Command:  def.Command,
				Startup:  workload.StartupEnabled,
				Environment: map[string]string{
					EnvExtraConfig: extraConfig,
				},
			},
		},
	}
}
