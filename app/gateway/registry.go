package gateway

import (
	"fmt"
	"sync"
)

// Scope controls how a registry hands out driver instances.
type Scope int

const (
	// ScopePerCall builds a fresh driver for every resolution. This is the
	// mode for real gateways, whose drivers carry per-transaction state.
	ScopePerCall Scope = iota

	// ScopeSession builds the driver once and reuses it for every
	// resolution, so test code can configure a driver up front and observe
	// it across requests.
	ScopeSession
)

// Factory builds a driver instance for a registration.
type Factory func() (Driver, error)

type registration struct {
	scope   Scope
	factory Factory
}

// Registry maps gateway names to driver factories and wraps every resolved
// driver in a fresh Lifecycle carrying the shared options.
type Registry struct {
	defaultGateway string
	options        Options

	mu            sync.Mutex
	registrations map[string]registration
	sessions      map[string]Driver
}

func NewRegistry(defaultGateway string, options Options) *Registry {
	return &Registry{
		defaultGateway: defaultGateway,
		options:        options,
		registrations:  make(map[string]registration),
		sessions:       make(map[string]Driver),
	}
}

func (r *Registry) Register(name string, scope Scope, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[name] = registration{scope: scope, factory: factory}
}

// Resolve builds a lifecycle for the named gateway. The lifecycle is always
// new; only the driver is shared for session-scoped registrations.
func (r *Registry) Resolve(name string) (*Lifecycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.registrations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotSupported, name)
	}

	if reg.scope == ScopeSession {
		if driver, ok := r.sessions[name]; ok {
			return NewLifecycle(driver, r.options), nil
		}
	}

	driver, err := reg.factory()
	if err != nil {
		return nil, err
	}

	if reg.scope == ScopeSession {
		r.sessions[name] = driver
	}

	return NewLifecycle(driver, r.options), nil
}

// Default resolves the registry's default gateway.
func (r *Registry) Default() (*Lifecycle, error) {
	return r.Resolve(r.defaultGateway)
}

// DefaultGateway returns the configured default gateway name.
func (r *Registry) DefaultGateway() string {
	return r.defaultGateway
}
