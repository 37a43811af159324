package lifecycle

import (
	"context"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"
	"github.com/core-tools/nagios-k8s-charm/pkg/workload"
)

// RestartResult tells what RestartIfPresent did
type RestartResult string

const (
	RestartResultSkipped   RestartResult = "skipped"   // Service not defined yet
	RestartResultStarted   RestartResult = "started"   // Was not running, started
	RestartResultRestarted RestartResult = "restarted" // Was running, stopped and started
)

// Controller issues start/stop instructions for one supervised service
type Controller struct {
	workload workload.Workload
	service  string
	logger   logging.Logger
}

func NewController(w workload.Workload, service string, logger logging.Logger) *Controller {
	return &Controller{
		workload: w,
		service:  service,
		logger:   logger,
	}
}

// Service returns the name of the controlled service
func (c *Controller) Service() string {
	return c.service
}

// RestartIfPresent ensures the service runs, restarting it if it already
// does. A service the supervisor does not know yet is skipped; any other
// query failure is returned.
func (c *Controller) RestartIfPresent(ctx context.Context) (RestartResult, error) {
	info, err := c.workload.GetService(ctx, c.service)
	if err != nil {
		if errors.IsNotFoundError(err) {
			c.logger.Infof("Service is not defined yet, skipping restart, service: %s", c.service)
			return RestartResultSkipped, nil
		}
		return "", errors.NewSupervisionError("failed to query service status", err).WithContext("service", c.service)
	}

	if info.IsActive() {
		c.logger.Infof("Restarting service, service: %s", c.service)
		if err := c.workload.Stop(ctx, c.service); err != nil {
			return "", errors.NewSupervisionError("failed to stop service", err).WithContext("service", c.service)
		}
		if err := c.workload.Start(ctx, c.service); err != nil {
			return "", errors.NewSupervisionError("failed to start service after stop", err).WithContext("service", c.service)
		}
		return RestartResultRestarted, nil
	}

	c.logger.Infof("Starting service, service: %s, status: %s", c.service, info.Current)
	if err := c.workload.Start(ctx, c.service); err != nil {
		return "", errors.NewSupervisionError("failed to start service", err).WithContext("service", c.service)
	}
	return RestartResultStarted, nil
}

// EnsureStarted declares the service through layer and lets the supervisor
// start everything marked enabled.
func (c *Controller) EnsureStarted(ctx context.Context, label string, layer *workload.Layer) error {
	if _, ok := layer.Services[c.service]; !ok {
		return errors.NewValidationError("layer does not define the controlled service", nil).
			WithContext("service", c.service).
			WithContext("label", label)
	}

	if err := c.workload.AddLayer(ctx, label, layer, true); err != nil {
		return errors.NewSupervisionError("failed to add layer", err).WithContext("label", label)
	}

	if err := c.workload.Autostart(ctx); err != nil {
		return errors.NewSupervisionError("failed to autostart", err).WithContext("service", c.service)
	}

	c.logger.Infof("Service layer applied and autostarted, service: %s, label: %s", c.service, label)
	return nil
}

// UpdateLayer re-applies layer without starting anything
func (c *Controller) UpdateLayer(ctx context.Context, label string, layer *workload.Layer) error {
	if err := c.workload.AddLayer(ctx, label, layer, true); err != nil {
		return errors.NewSupervisionError("failed to update layer", err).WithContext("label", label)
	}
	return nil
}
