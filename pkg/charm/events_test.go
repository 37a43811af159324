package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected Event
	}{
		{
			name:     "pebble ready",
			env:      map[string]string{"JUJU_DISPATCH_PATH": "hooks/nagios-pebble-ready", "JUJU_WORKLOAD_NAME": "nagios"},
			expected: Event{Kind: EventPebbleReady, Hook: "nagios-pebble-ready", WorkloadName: "nagios"},
		},
		{
			name:     "pebble ready without workload name",
			env:      map[string]string{"JUJU_DISPATCH_PATH": "hooks/nagios-pebble-ready"},
			expected: Event{Kind: EventPebbleReady, Hook: "nagios-pebble-ready", WorkloadName: "nagios"},
		},
		{
			name:     "config changed",
			env:      map[string]string{"JUJU_DISPATCH_PATH": "hooks/config-changed"},
			expected: Event{Kind: EventConfigChanged, Hook: "config-changed"},
		},
		{
			name: "relation joined",
			env: map[string]string{
				"JUJU_DISPATCH_PATH": "hooks/monitors-relation-joined",
				"JUJU_RELATION_ID":   "monitors:3",
				"JUJU_REMOTE_UNIT":   "nrpe/0",
			},
			expected: Event{Kind: EventMonitorsChanged, Hook: "monitors-relation-joined", RelationID: "monitors:3", Unit: "nrpe/0"},
		},
		{
			name: "relation changed",
			env: map[string]string{
				"JUJU_DISPATCH_PATH": "hooks/monitors-relation-changed",
				"JUJU_RELATION_ID":   "monitors:3",
				"JUJU_REMOTE_UNIT":   "nrpe/1",
			},
			expected: Event{Kind: EventMonitorsChanged, Hook: "monitors-relation-changed", RelationID: "monitors:3", Unit: "nrpe/1"},
		},
		{
			name: "relation departed uses departing unit",
			env: map[string]string{
				"JUJU_DISPATCH_PATH":  "hooks/monitors-relation-departed",
				"JUJU_RELATION_ID":    "monitors:3",
				"JUJU_DEPARTING_UNIT": "nrpe/2",
			},
			expected: Event{Kind: EventMonitorsDeparted, Hook: "monitors-relation-departed", RelationID: "monitors:3", Unit: "nrpe/2"},
		},
		{
			name:     "hook name fallback",
			env:      map[string]string{"JUJU_HOOK_NAME": "config-changed"},
			expected: Event{Kind: EventConfigChanged, Hook: "config-changed"},
		},
		{
			name:     "other relation",
			env:      map[string]string{"JUJU_DISPATCH_PATH": "hooks/ingress-relation-changed"},
			expected: Event{Kind: EventUnknown, Hook: "ingress-relation-changed"},
		},
		{
			name:     "unhandled hook",
			env:      map[string]string{"JUJU_DISPATCH_PATH": "hooks/update-status"},
			expected: Event{Kind: EventUnknown, Hook: "update-status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.env[key] }
			assert.Equal(t, tt.expected, EventFromEnv(getenv, "monitors"))
		})
	}
}
