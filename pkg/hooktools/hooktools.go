package hooktools

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"
)

// Workload status values accepted by status-set
const (
	StatusActive      = "active"
	StatusBlocked     = "blocked"
	StatusMaintenance = "maintenance"
	StatusWaiting     = "waiting"
)

// Runner executes a hook tool and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs hook tools found on PATH, where the Juju agent puts them
type ExecRunner struct {
	Logger logging.Logger
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.Logger.Debugf("Running hook tool, tool: %s, args: %v", name, args)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError("hook tool cancelled", ctx.Err()).WithContext("tool", name)
		}
		if execErr, ok := err.(*exec.Error); ok {
			return nil, errors.NewNotFoundError("hook tool is not available", execErr).WithContext("tool", name)
		}
		return nil, errors.NewInternalError("hook tool failed", err).
			WithContext("tool", name).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// Client wraps the hook tools this charm needs
type Client struct {
	runner Runner
}

func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// RelationGet returns the relation data unit published on relationID
func (c *Client) RelationGet(ctx context.Context, relationID, unit string) (map[string]string, error) {
	args := []string{"--format=json"}
	if relationID != "" {
		args = append(args, "-r", relationID)
	}
	args = append(args, "-", unit)

	out, err := c.runner.Run(ctx, "relation-get", args...)
	if err != nil {
		return nil, err
	}

	data := make(map[string]string)
	if len(bytes.TrimSpace(out)) == 0 || bytes.Equal(bytes.TrimSpace(out), []byte("null")) {
		return data, nil
	}
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, errors.NewMalformedPayloadError("failed to decode relation data", err).
			WithContext("relation_id", relationID).
			WithContext("unit", unit)
	}
	return data, nil
}

// ConfigGet returns the raw JSON of all charm options
func (c *Client) ConfigGet(ctx context.Context) ([]byte, error) {
	return c.runner.Run(ctx, "config-get", "--format=json", "--all")
}

// StatusSet sets the unit workload status
func (c *Client) StatusSet(ctx context.Context, status, message string) error {
	switch status {
	case StatusActive, StatusBlocked, StatusMaintenance, StatusWaiting:
	default:
		return errors.NewValidationError("invalid workload status: "+status, nil)
	}
	_, err := c.runner.Run(ctx, "status-set", status, message)
	return err
}
