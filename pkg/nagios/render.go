package nagios

import (
	"path"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
)

// CheckPrefix is prepended to every NRPE check name to form the command and
// service description.
const CheckPrefix = "nrpe_"

// ConfigExtension is the suffix of every per-target configuration file.
const ConfigExtension = ".cfg"

// MonitoredTarget is a host announced over the monitors relation
type MonitoredTarget struct {
	TargetID       string   // Host name and config file stem
	IngressAddress string   // Address Nagios probes
	Checks         []string // NRPE check names, in announced order
}

// hostDefaults are the static host attributes, in rendering order.
var hostDefaults = []attribute{
	{"max_check_attempts", "5"},
	{"check_period", "24x7"},
	{"contact_groups", "admins"},
	{"notification_options", "d,u,r"},
	{"notification_interval", "30"},
	{"notification_period", "24x7"},
	{"icon_image", "base/ubuntu.png"},
	{"icon_image_alt", "Ubuntu Linux"},
	{"vrml_image", "ubuntu.png"},
	{"statusmap_image", "base/ubuntu.gd2"},
}

// HostObject builds the host block for target.
func HostObject(target MonitoredTarget) *ObjectDefinition {
	host := NewObjectDefinition(ObjectTypeHost).
		Set("host_name", target.TargetID).
		Set("use", "generic-host").
		Set("address", target.IngressAddress)
	for _, a := range hostDefaults {
		host.Set(a.key, a.value)
	}
	return host
}

// ServiceObject builds the service block for one NRPE check on target.
func ServiceObject(targetID, check string) *ObjectDefinition {
	return NewObjectDefinition(ObjectTypeService).
		Set("host_name", targetID).
		Set("use", "generic-service").
		Set("check_command", CheckPrefix+check).
		Set("service_description", CheckPrefix+check)
}

// Objects returns the host block followed by one service block per check.
func Objects(target MonitoredTarget) []*ObjectDefinition {
	objects := make([]*ObjectDefinition, 0, len(target.Checks)+1)
	objects = append(objects, HostObject(target))
	for _, check := range target.Checks {
		objects = append(objects, ServiceObject(target.TargetID, check))
	}
	return objects
}

// Render validates target and returns the content of its configuration file.
// The result depends only on target.
func Render(target MonitoredTarget) (string, error) {
	if err := ValidateTarget(target); err != nil {
		return "", err
	}
	return FormatObjects(Objects(target)), nil
}

// ConfigPath returns the file holding the configuration of targetID inside
// dir. Workload paths are always slash separated.
func ConfigPath(dir, targetID string) (string, error) {
	if err := ValidateTargetID(targetID); err != nil {
		return "", errors.NewValidationError("cannot derive config path", err).WithContext("target_id", targetID)
	}
	return path.Join(dir, targetID+ConfigExtension), nil
}
