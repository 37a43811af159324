package charm

import (
	"context"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/hooktools"
	"github.com/core-tools/nagios-k8s-charm/pkg/monitors"
	"github.com/core-tools/nagios-k8s-charm/pkg/nagios"
	"github.com/core-tools/nagios-k8s-charm/pkg/state"
)

// layerLabel names the layer this charm owns in the workload supervisor
const layerLabel = "nagios"

func (c *Charm) onPebbleReady(ctx context.Context, event Event, st *state.State) error {
	if event.WorkloadName != "" && event.WorkloadName != c.settings.Container {
		c.logger.Debugf("Ignoring pebble-ready for another container, container: %s", event.WorkloadName)
		return nil
	}

	options, err := c.options(ctx)
	if err != nil {
		return err
	}

	if err := c.lifecycle.EnsureStarted(ctx, layerLabel, c.layer(options.ExtraConfig)); err != nil {
		return err
	}

	// A fresh container has none of the files pushed before, and a
	// config-changed seen while Pebble was unreachable pushed nothing.
	if err := c.applyExtraConfig(ctx, options.ExtraConfig, st, true); err != nil {
		return err
	}

	return c.hooks.StatusSet(ctx, hooktools.StatusActive, "")
}

func (c *Charm) onConfigChanged(ctx context.Context, event Event, st *state.State) error {
	if !c.workload.CanConnect(ctx) {
		c.logger.Infof("Workload is not reachable yet, deferring configuration, container: %s", c.settings.Container)
		return c.hooks.StatusSet(ctx, hooktools.StatusWaiting, "waiting for Pebble in workload container")
	}

	options, err := c.options(ctx)
	if err != nil {
		return err
	}

	if err := c.lifecycle.UpdateLayer(ctx, layerLabel, c.layer(options.ExtraConfig)); err != nil {
		return err
	}

	if err := c.applyExtraConfig(ctx, options.ExtraConfig, st, false); err != nil {
		return err
	}

	if _, err := c.lifecycle.RestartIfPresent(ctx); err != nil {
		return err
	}

	return c.hooks.StatusSet(ctx, hooktools.StatusActive, "")
}

// applyExtraConfig makes extra.cfg hold extraConfig, removing the file for an
// empty value. Unless force is set, nothing is written when the file already
// holds the value.
func (c *Charm) applyExtraConfig(ctx context.Context, extraConfig string, st *state.State, force bool) error {
	path := c.settings.ExtraConfigFile

	if !force && !st.ExtraConfigPending(extraConfig) {
		c.logger.Debugf("Extra config already applied, path: %s", path)
		return nil
	}

	if extraConfig == "" {
		c.logger.Infof("Removing extra config, path: %s", path)
		if err := c.workload.RemovePath(ctx, path); err != nil {
			return err
		}
	} else {
		c.logger.Infof("Pushing extra config, path: %s, bytes: %d", path, len(extraConfig))
		if err := c.workload.Push(ctx, path, extraConfig); err != nil {
			return err
		}
	}

	st.MarkExtraConfigApplied(extraConfig)
	return nil
}

func (c *Charm) onMonitorsChanged(ctx context.Context, event Event, st *state.State) error {
	data, err := c.hooks.RelationGet(ctx, event.RelationID, event.Unit)
	if err != nil {
		if errors.IsInputError(err) {
			c.logger.Warnf("Skipping unreadable relation data, unit: %s, error: %v", event.Unit, err)
			return nil
		}
		return err
	}

	payload, err := monitors.Extract(data)
	if err != nil {
		if errors.IsMissingFieldError(err) {
			c.logger.Infof("Relation data not complete yet, unit: %s, error: %v", event.Unit, err)
			return nil
		}
		return err
	}

	target, err := payload.Target()
	if err != nil {
		if errors.IsInputError(err) {
			c.logger.Warnf("Skipping invalid monitors payload, unit: %s, target: %s, error: %v", event.Unit, payload.TargetID, err)
			return nil
		}
		return err
	}

	path, err := c.targetPath(target.TargetID)
	if err != nil {
		c.logger.Warnf("Skipping target, unit: %s, target: %s, error: %v", event.Unit, target.TargetID, err)
		return nil
	}

	rendered, err := nagios.Render(target)
	if err != nil {
		c.logger.Warnf("Skipping target, unit: %s, target: %s, error: %v", event.Unit, target.TargetID, err)
		return nil
	}

	c.logger.Infof("Pushing config, target: %s, path: %s, checks: %d", target.TargetID, path, len(target.Checks))
	if err := c.workload.Push(ctx, path, rendered); err != nil {
		return err
	}

	previous := st.SetTarget(event.Unit, target.TargetID)
	if previous != "" && previous != target.TargetID {
		if err := c.removeTargetIfUnused(ctx, previous, st); err != nil {
			return err
		}
	}

	_, err = c.lifecycle.RestartIfPresent(ctx)
	return err
}

func (c *Charm) onMonitorsDeparted(ctx context.Context, event Event, st *state.State) error {
	targetID := c.departedTarget(ctx, event, st)
	if targetID == "" {
		c.logger.Infof("No target known for departed unit, unit: %s", event.Unit)
		return nil
	}

	st.ForgetUnit(event.Unit)
	if err := c.removeTargetIfUnused(ctx, targetID, st); err != nil {
		return err
	}

	_, err := c.lifecycle.RestartIfPresent(ctx)
	return err
}

// departedTarget prefers the target the unit last published, falling back to
// whatever the departing unit's relation data still says.
func (c *Charm) departedTarget(ctx context.Context, event Event, st *state.State) string {
	if targetID, ok := st.Target(event.Unit); ok {
		return targetID
	}

	data, err := c.hooks.RelationGet(ctx, event.RelationID, event.Unit)
	if err != nil {
		c.logger.Debugf("Relation data of departed unit unavailable, unit: %s, error: %v", event.Unit, err)
		return ""
	}
	payload, err := monitors.Extract(data)
	if err != nil {
		return ""
	}
	if err := nagios.ValidateTargetID(payload.TargetID); err != nil {
		return ""
	}
	return payload.TargetID
}

// removeTargetIfUnused deletes the config file of targetID unless another
// unit still publishes the same target.
func (c *Charm) removeTargetIfUnused(ctx context.Context, targetID string, st *state.State) error {
	if units := st.UnitsFor(targetID); len(units) > 0 {
		c.logger.Infof("Keeping config still used by other units, target: %s, units: %v", targetID, units)
		return nil
	}

	path, err := c.targetPath(targetID)
	if err != nil {
		c.logger.Warnf("Not removing config for invalid target, target: %s, error: %v", targetID, err)
		return nil
	}

	c.logger.Infof("Removing config, target: %s, path: %s", targetID, path)
	return c.workload.RemovePath(ctx, path)
}

// targetPath returns the config file of targetID, refusing names that would
// overwrite the operator's extra config.
func (c *Charm) targetPath(targetID string) (string, error) {
	path, err := nagios.ConfigPath(c.settings.ConfigDir, targetID)
	if err != nil {
		return "", err
	}
	if path == c.settings.ExtraConfigFile {
		return "", errors.NewValidationError("target id collides with the extra config file", nil).
			WithContext("target", targetID)
	}
	return path, nil
}
