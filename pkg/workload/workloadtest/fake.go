// Package workloadtest provides an in-memory Workload for tests.
package workloadtest

import (
	"context"
	"sort"
	"sync"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/workload"
)

// Call records one operation issued against the fake
type Call struct {
	Op   string
	Arg  string
	Data string
}

// FakeWorkload keeps files and services in memory and records every call.
// Zero value is unusable; use NewFakeWorkload.
type FakeWorkload struct {
	mutex sync.Mutex

	Files    map[string]string
	Services map[string]*workload.ServiceInfo
	Layers   map[string]*workload.Layer
	Calls    []Call

	Unreachable bool
	// Errors makes the named operation ("get_service", "start", ...) fail
	Errors map[string]error
}

func NewFakeWorkload() *FakeWorkload {
	return &FakeWorkload{
		Files:    make(map[string]string),
		Services: make(map[string]*workload.ServiceInfo),
		Layers:   make(map[string]*workload.Layer),
		Errors:   make(map[string]error),
	}
}

// SetService registers a service with the given status
func (f *FakeWorkload) SetService(name string, status workload.ServiceStatus) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.Services[name] = &workload.ServiceInfo{Name: name, Startup: workload.StartupEnabled, Current: status}
}

// Ops returns the operation names of recorded calls, optionally filtered
func (f *FakeWorkload) Ops(only ...string) []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	keep := make(map[string]bool, len(only))
	for _, op := range only {
		keep[op] = true
	}
	ops := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		if len(keep) == 0 || keep[c.Op] {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// CallsOf returns recorded calls of one operation
func (f *FakeWorkload) CallsOf(op string) []Call {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var calls []Call
	for _, c := range f.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// FilePaths returns the stored paths in sorted order
func (f *FakeWorkload) FilePaths() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	paths := make([]string, 0, len(f.Files))
	for p := range f.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reset forgets recorded calls
func (f *FakeWorkload) Reset() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.Calls = nil
}

func (f *FakeWorkload) record(op, arg, data string) error {
	f.Calls = append(f.Calls, Call{Op: op, Arg: arg, Data: data})
	return f.Errors[op]
}

func (f *FakeWorkload) CanConnect(ctx context.Context) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return !f.Unreachable
}

func (f *FakeWorkload) AddLayer(ctx context.Context, label string, layer *workload.Layer, combine bool) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("add_layer", label, ""); err != nil {
		return err
	}
	if err := layer.Validate(); err != nil {
		return err
	}
	f.Layers[label] = layer
	for name, s := range layer.Services {
		if _, ok := f.Services[name]; !ok {
			f.Services[name] = &workload.ServiceInfo{Name: name, Startup: s.Startup, Current: workload.ServiceStatusInactive}
		}
	}
	return nil
}

func (f *FakeWorkload) Autostart(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("autostart", "", ""); err != nil {
		return err
	}
	for _, s := range f.Services {
		if s.Startup == workload.StartupEnabled {
			s.Current = workload.ServiceStatusActive
		}
	}
	return nil
}

func (f *FakeWorkload) GetService(ctx context.Context, name string) (*workload.ServiceInfo, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("get_service", name, ""); err != nil {
		return nil, err
	}
	s, ok := f.Services[name]
	if !ok {
		return nil, errors.NewNotFoundError("service is not defined", nil).WithContext("service", name)
	}
	copied := *s
	return &copied, nil
}

func (f *FakeWorkload) Start(ctx context.Context, name string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("start", name, ""); err != nil {
		return err
	}
	if s, ok := f.Services[name]; ok {
		s.Current = workload.ServiceStatusActive
	}
	return nil
}

func (f *FakeWorkload) Stop(ctx context.Context, name string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("stop", name, ""); err != nil {
		return err
	}
	if s, ok := f.Services[name]; ok {
		s.Current = workload.ServiceStatusInactive
	}
	return nil
}

func (f *FakeWorkload) Push(ctx context.Context, path string, content string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("push", path, content); err != nil {
		return err
	}
	f.Files[path] = content
	return nil
}

func (f *FakeWorkload) RemovePath(ctx context.Context, path string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := f.record("remove_path", path, ""); err != nil {
		return err
	}
	delete(f.Files, path)
	return nil
}

var _ workload.Workload = (*FakeWorkload)(nil)
