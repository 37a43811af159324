package workload

import (
	"context"
)

// ServiceStatus is the observed state of a supervised service
type ServiceStatus string

const (
	ServiceStatusUnknown  ServiceStatus = "unknown"
	ServiceStatusInactive ServiceStatus = "inactive"
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusBackoff  ServiceStatus = "backoff" // Restarting after a crash
	ServiceStatusError    ServiceStatus = "error"   // Gave up restarting
)

// ServiceInfo describes a service registered with the supervisor
type ServiceInfo struct {
	Name    string
	Startup string
	Current ServiceStatus
}

// IsActive reports whether the service is running
func (s *ServiceInfo) IsActive() bool {
	return s != nil && s.Current == ServiceStatusActive
}

// Workload controls the supervised container. Implementations are expected
// to be synchronous: a nil error means the operation has completed.
type Workload interface {
	// CanConnect reports whether the supervisor is reachable
	CanConnect(ctx context.Context) bool

	// AddLayer adds or, with combine, merges a configuration layer
	AddLayer(ctx context.Context, label string, layer *Layer, combine bool) error

	// Autostart starts every service with startup enabled
	Autostart(ctx context.Context) error

	// GetService returns the named service, or a not found error if the
	// supervisor does not know it
	GetService(ctx context.Context, name string) (*ServiceInfo, error)

	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error

	// Push writes content to path, replacing any existing file
	Push(ctx context.Context, path string, content string) error

	// RemovePath removes path. A missing path is not an error.
	RemovePath(ctx context.Context, path string) error
}
