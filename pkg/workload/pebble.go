package workload

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"

	"github.com/canonical/pebble/client"
)

// pebbleErrorNotFound is the error kind Pebble reports for missing paths
const pebbleErrorNotFound = "not-found"

// DefaultChangeTimeout bounds how long start and stop wait for Pebble
const DefaultChangeTimeout = 30 * time.Second

// pebbleClient is the subset of the Pebble client used here
type pebbleClient interface {
	SysInfo() (*client.SysInfo, error)
	AddLayer(opts *client.AddLayerOptions) error
	AutoStart(opts *client.ServiceOptions) (string, error)
	Start(opts *client.ServiceOptions) (string, error)
	Stop(opts *client.ServiceOptions) (string, error)
	Services(opts *client.ServicesOptions) ([]*client.ServiceInfo, error)
	WaitChange(id string, opts *client.WaitChangeOptions) (*client.Change, error)
	Push(opts *client.PushOptions) error
	RemovePath(opts *client.RemovePathOptions) error
}

// PebbleOptions configures the Pebble backed workload
type PebbleOptions struct {
	Socket        string        // Path of the workload container's Pebble socket
	ChangeTimeout time.Duration // Wait limit for start/stop changes
}

// PebbleWorkload implements Workload over the Pebble API
type PebbleWorkload struct {
	client        pebbleClient
	changeTimeout time.Duration
	logger        logging.Logger
}

// NewPebbleWorkload connects a client to the socket in options
func NewPebbleWorkload(options PebbleOptions, logger logging.Logger) (*PebbleWorkload, error) {
	if options.Socket == "" {
		return nil, errors.NewValidationError("pebble socket path is required", nil)
	}

	c, err := client.New(&client.Config{Socket: options.Socket})
	if err != nil {
		return nil, errors.NewSupervisionError("failed to create pebble client", err).WithContext("socket", options.Socket)
	}

	return newPebbleWorkload(c, options.ChangeTimeout, logger), nil
}

func newPebbleWorkload(c pebbleClient, changeTimeout time.Duration, logger logging.Logger) *PebbleWorkload {
	if changeTimeout <= 0 {
		changeTimeout = DefaultChangeTimeout
	}
	return &PebbleWorkload{
		client:        c,
		changeTimeout: changeTimeout,
		logger:        logger,
	}
}

func (w *PebbleWorkload) CanConnect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, err := w.client.SysInfo(); err != nil {
		w.logger.Debugf("Pebble is not reachable, error: %v", err)
		return false
	}
	return true
}

func (w *PebbleWorkload) AddLayer(ctx context.Context, label string, layer *Layer, combine bool) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	data, err := layer.Marshal()
	if err != nil {
		return err
	}

	w.logger.Debugf("Adding layer, label: %s, combine: %t", label, combine)

	err = w.client.AddLayer(&client.AddLayerOptions{
		Combine:   combine,
		Label:     label,
		LayerData: data,
	})
	if err != nil {
		return errors.NewSupervisionError("failed to add layer", err).WithContext("label", label)
	}
	return nil
}

func (w *PebbleWorkload) Autostart(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	changeID, err := w.client.AutoStart(&client.ServiceOptions{})
	if err != nil {
		return errors.NewSupervisionError("failed to autostart services", err)
	}
	return w.waitChange(changeID, "autostart")
}

func (w *PebbleWorkload) GetService(ctx context.Context, name string) (*ServiceInfo, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	services, err := w.client.Services(&client.ServicesOptions{Names: []string{name}})
	if err != nil {
		return nil, errors.NewSupervisionError("failed to query service", err).WithContext("service", name)
	}

	for _, s := range services {
		if s.Name == name {
			return &ServiceInfo{
				Name:    s.Name,
				Startup: string(s.Startup),
				Current: toServiceStatus(s.Current),
			}, nil
		}
	}

	return nil, errors.NewNotFoundError("service is not defined", nil).WithContext("service", name)
}

func (w *PebbleWorkload) Start(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	changeID, err := w.client.Start(&client.ServiceOptions{Names: []string{name}})
	if err != nil {
		return errors.NewSupervisionError("failed to start service", err).WithContext("service", name)
	}
	return w.waitChange(changeID, "start "+name)
}

func (w *PebbleWorkload) Stop(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	changeID, err := w.client.Stop(&client.ServiceOptions{Names: []string{name}})
	if err != nil {
		return errors.NewSupervisionError("failed to stop service", err).WithContext("service", name)
	}
	return w.waitChange(changeID, "stop "+name)
}

func (w *PebbleWorkload) Push(ctx context.Context, path string, content string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	w.logger.Debugf("Pushing file, path: %s, bytes: %d", path, len(content))

	err := w.client.Push(&client.PushOptions{
		Source:      strings.NewReader(content),
		Path:        path,
		MakeDirs:    true,
		Permissions: 0o644,
	})
	if err != nil {
		return errors.NewSupervisionError("failed to push file", err).WithContext("path", path)
	}
	return nil
}

func (w *PebbleWorkload) RemovePath(ctx context.Context, path string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	err := w.client.RemovePath(&client.RemovePathOptions{Path: path})
	if err != nil {
		var pebbleErr *client.Error
		if stderrors.As(err, &pebbleErr) && pebbleErr.Kind == pebbleErrorNotFound {
			w.logger.Debugf("Path already absent, path: %s", path)
			return nil
		}
		return errors.NewSupervisionError("failed to remove path", err).WithContext("path", path)
	}
	return nil
}

func (w *PebbleWorkload) waitChange(changeID string, operation string) error {
	change, err := w.client.WaitChange(changeID, &client.WaitChangeOptions{Timeout: w.changeTimeout})
	if err != nil {
		return errors.NewSupervisionError("failed waiting for change", err).
			WithContext("change_id", changeID).
			WithContext("operation", operation)
	}
	if !change.Ready {
		return errors.NewTimeoutError(fmt.Sprintf("change did not complete within %v", w.changeTimeout), nil).
			WithContext("change_id", changeID).
			WithContext("operation", operation)
	}
	if change.Err != "" {
		return errors.NewSupervisionError("change failed", stderrors.New(change.Err)).
			WithContext("change_id", changeID).
			WithContext("operation", operation)
	}
	return nil
}

func toServiceStatus(status client.ServiceStatus) ServiceStatus {
	switch status {
	case client.StatusActive:
		return ServiceStatusActive
	case client.StatusInactive:
		return ServiceStatusInactive
	case client.StatusBackoff:
		return ServiceStatusBackoff
	case client.StatusError:
		return ServiceStatusError
	default:
		return ServiceStatusUnknown
	}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelledError("workload operation cancelled", err)
	}
	return nil
}
