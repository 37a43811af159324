package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/core-tools/nagios-k8s-charm/pkg/charm"
	"github.com/core-tools/nagios-k8s-charm/pkg/config"
	"github.com/core-tools/nagios-k8s-charm/pkg/hooktools"
	"github.com/core-tools/nagios-k8s-charm/pkg/logging"
	"github.com/core-tools/nagios-k8s-charm/pkg/nagios"
	"github.com/core-tools/nagios-k8s-charm/pkg/state"
	"github.com/core-tools/nagios-k8s-charm/pkg/workload"

	flags "github.com/jessevdk/go-flags"
)

type dispatchCommand struct {
	Config   string `long:"config" description:"path to charm settings YAML"`
	CharmDir string `long:"charm-dir" env:"JUJU_CHARM_DIR" description:"charm directory holding the state file"`
}

type renderCommand struct {
	TargetID string   `long:"target-id" required:"true" description:"monitored target id"`
	Address  string   `long:"address" description:"ingress address of the target"`
	Checks   []string `long:"check" description:"NRPE check name, repeatable"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s, ", module)
}

func main() {
	argv := os.Args[1:]
	if len(argv) == 0 {
		// Juju's dispatch script runs the binary without arguments
		argv = []string{"dispatch"}
	}

	parser := flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.AddCommand("dispatch", "Handle the hook Juju is dispatching", "", &dispatchCommand{}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register command: %v\n", err)
		os.Exit(1)
	}
	if _, err := parser.AddCommand("render", "Print the Nagios configuration for one target", "", &renderCommand{}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register command: %v\n", err)
		os.Exit(1)
	}

	if _, err := parser.ParseArgs(argv); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func (c *dispatchCommand) Execute(args []string) error {
	settings := config.DefaultConfig()
	if c.Config != "" {
		loaded, err := config.LoadConfigFromFile(c.Config)
		if err != nil {
			return err
		}
		settings = loaded
	}
	if err := config.ValidateConfig(settings); err != nil {
		return err
	}

	backend, err := logging.NewZapBackend(settings.Logging)
	if err != nil {
		return err
	}
	defer backend.Close()

	unit := os.Getenv(charm.EnvUnitName)
	logger := backend.With("unit", unit).Logger(logPrefix("charm"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	event := charm.EventFromEnv(os.Getenv, settings.Charm.Relation)
	if event.Kind == charm.EventUnknown {
		logger.Debugf("Nothing to do for hook, hook: %s", event.Hook)
		return nil
	}

	w, err := workload.NewPebbleWorkload(workload.PebbleOptions{
		Socket:        settings.Pebble.Socket,
		ChangeTimeout: settings.Pebble.ChangeTimeout,
	}, logging.WithPrefix(logger, "workload: "))
	if err != nil {
		logger.Errorf("Failed to create workload client, error: %v", err)
		return err
	}

	store := state.NewStore(settings.ResolveStateFile(c.CharmDir), settings.Charm.LockWait, logging.WithPrefix(logger, "state: "))
	hooks := hooktools.NewClient(&hooktools.ExecRunner{Logger: logging.WithPrefix(logger, "hooktools: ")})

	handler := charm.NewCharm(settings.Charm, w, store, hooks, logger)
	return handler.Handle(ctx, event)
}

func (c *renderCommand) Execute(args []string) error {
	rendered, err := nagios.Render(nagios.MonitoredTarget{
		TargetID:       c.TargetID,
		IngressAddress: c.Address,
		Checks:         append([]string{}, c.Checks...),
	})
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
