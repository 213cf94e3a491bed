package capability

import (
	"fmt"
	"sync"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// Registry maps capability names to executors. Steps naming an unknown
// capability are routed to the fallback capability so a mis-planned
// step still executes somewhere.
type Registry struct {
	mu       sync.RWMutex
	caps     map[string]domain.Capability
	fallback string
}

// NewRegistry creates a registry whose fallback is the named
// capability. The fallback must be registered before Resolve is called
// with an unknown name.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		caps:     make(map[string]domain.Capability),
		fallback: fallback,
	}
}

// Register adds a capability under its own name, replacing any previous
// registration.
func (r *Registry) Register(c domain.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Name()] = c
}

// Resolve returns the capability for name, or the fallback capability
// when name is unknown. It fails only when the fallback itself is
// missing.
func (r *Registry) Resolve(name string) (domain.Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.caps[name]; ok {
		return c, nil
	}
	if c, ok := r.caps[r.fallback]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("capability %q not registered and no fallback %q", name, r.fallback)
}

// Names lists the registered capability names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	return names
}
