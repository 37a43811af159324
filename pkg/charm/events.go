package charm

import (
	"path"
	"strings"
)

// EventKind identifies the events this charm reacts to
type EventKind string

const (
	EventUnknown          EventKind = "unknown"
	EventPebbleReady      EventKind = "pebble_ready"
	EventConfigChanged    EventKind = "config_changed"
	EventMonitorsChanged  EventKind = "monitors_changed"
	EventMonitorsDeparted EventKind = "monitors_departed"
)

// Environment variables set by the Juju agent for every dispatch
const (
	EnvDispatchPath   = "JUJU_DISPATCH_PATH"
	EnvHookName       = "JUJU_HOOK_NAME"
	EnvRelationID     = "JUJU_RELATION_ID"
	EnvRemoteUnit     = "JUJU_REMOTE_UNIT"
	EnvDepartingUnit  = "JUJU_DEPARTING_UNIT"
	EnvWorkloadName   = "JUJU_WORKLOAD_NAME"
	EnvCharmDir       = "JUJU_CHARM_DIR"
	EnvUnitName       = "JUJU_UNIT_NAME"
	pebbleReadySuffix = "-pebble-ready"
)

// Event is one dispatched hook
type Event struct {
	Kind         EventKind
	Hook         string // Hook name as dispatched, e.g. "monitors-relation-changed"
	RelationID   string // Set for relation events
	Unit         string // Remote unit for relation events
	WorkloadName string // Container name for pebble-ready
}

// EventFromEnv maps the hook being dispatched to an Event. relation is the
// name of the monitors relation endpoint. Hooks the charm does not handle
// yield EventUnknown.
func EventFromEnv(getenv func(string) string, relation string) Event {
	hook := path.Base(getenv(EnvDispatchPath))
	if hook == "." || hook == "/" || hook == "" {
		hook = getenv(EnvHookName)
	}

	event := Event{Kind: EventUnknown, Hook: hook}

	switch {
	case strings.HasSuffix(hook, pebbleReadySuffix):
		event.Kind = EventPebbleReady
		event.WorkloadName = getenv(EnvWorkloadName)
		if event.WorkloadName == "" {
			event.WorkloadName = strings.TrimSuffix(hook, pebbleReadySuffix)
		}

	case hook == "config-changed":
		event.Kind = EventConfigChanged

	case hook == relation+"-relation-joined", hook == relation+"-relation-changed":
		event.Kind = EventMonitorsChanged
		event.RelationID = getenv(EnvRelationID)
		event.Unit = getenv(EnvRemoteUnit)

	case hook == relation+"-relation-departed":
		event.Kind = EventMonitorsDeparted
		event.RelationID = getenv(EnvRelationID)
		event.Unit = getenv(EnvRemoteUnit)
		if event.Unit == "" {
			event.Unit = getenv(EnvDepartingUnit)
		}
	}

	return event
}
