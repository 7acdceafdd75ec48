package scheme

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named authentication strategies so the host can dispatch a
// route to the strategy configured for it.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Scheme
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Scheme),
	}
}

// Register adds a named strategy. Registering the same name twice is an
// error; strategies are wired once at startup.
func (r *Registry) Register(name string, s Scheme) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStrategy, name)
	}

	r.strategies[name] = s
	return nil
}

// Get looks up a strategy by name.
func (r *Registry) Get(name string) (Scheme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names lists registered strategy names in stable order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
