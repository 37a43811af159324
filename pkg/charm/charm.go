package charm

import (
	"context"

	"github.com/core-tools/nagios-k8s-charm/pkg/config"
	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/lifecycle"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"
	"github.com/core-tools/nagios-k8s-charm/pkg/state"
	"github.com/core-tools/nagios-k8s-charm/pkg/workload"
)

// HookTools is the part of the Juju hook environment handlers consult
type HookTools interface {
	RelationGet(ctx context.Context, relationID, unit string) (map[string]string, error)
	ConfigGet(ctx context.Context) ([]byte, error)
	StatusSet(ctx context.Context, status, message string) error
}

// StateStore loads and saves charm state around a handler run
type StateStore interface {
	Update(ctx context.Context, fn func(*state.State) error) error
}

type handlerFunc func(ctx context.Context, event Event, st *state.State) error

// Charm reacts to dispatched events. Events arrive one at a time; every
// handler is safe to run again for a redelivered event.
type Charm struct {
	settings  config.CharmOptions
	workload  workload.Workload
	lifecycle *lifecycle.Controller
	store     StateStore
	hooks     HookTools
	logger    logging.Logger
	handlers  map[EventKind]handlerFunc
}

func NewCharm(settings config.CharmOptions, w workload.Workload, store StateStore, hooks HookTools, logger logging.Logger) *Charm {
	c := &Charm{
		settings:  settings,
		workload:  w,
		lifecycle: lifecycle.NewController(w, settings.Service, logging.WithPrefix(logger, "lifecycle: ")),
		store:     store,
		hooks:     hooks,
		logger:    logger,
	}
	c.handlers = map[EventKind]handlerFunc{
		EventPebbleReady:      c.onPebbleReady,
		EventConfigChanged:    c.onConfigChanged,
		EventMonitorsChanged:  c.onMonitorsChanged,
		EventMonitorsDeparted: c.onMonitorsDeparted,
	}
	return c
}

// Handle runs the handler for event. State is saved only when the handler
// succeeds; a returned error fails the hook.
func (c *Charm) Handle(ctx context.Context, event Event) error {
	handler, ok := c.handlers[event.Kind]
	if !ok {
		c.logger.Debugf("Ignoring event, hook: %s", event.Hook)
		return nil
	}

	c.logger.Infof("Handling event, kind: %s, hook: %s, unit: %s", event.Kind, event.Hook, event.Unit)

	err := c.store.Update(ctx, func(st *state.State) error {
		return handler(ctx, event, st)
	})
	if err != nil {
		c.logger.Errorf("Event handler failed, kind: %s, hook: %s, error: %v", event.Kind, event.Hook, err)
		return errors.NewInternalError("event handler failed", err).
			WithContext("kind", string(event.Kind)).
			WithContext("hook", event.Hook)
	}
	return nil
}

func (c *Charm) options(ctx context.Context) (config.Options, error) {
	data, err := c.hooks.ConfigGet(ctx)
	if err != nil {
		return config.Options{}, errors.NewInternalError("failed to read charm options", err)
	}
	return config.ParseOptions(data)
}

func (c *Charm) layer(extraConfig string) *workload.Layer {
	return lifecycle.NagiosLayer(lifecycle.ServiceDefinition{
		Name:    c.settings.Service,
		Command: c.settings.Command,
	}, extraConfig)
}
