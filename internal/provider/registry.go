package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Source from run settings.
type Factory func(Settings) (Source, error)

// Registry manages all available providers
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	priorities map[string]int
}

// GlobalRegistry is the default registry instance
var GlobalRegistry = NewRegistry()

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories:  make(map[string]Factory),
		priorities: make(map[string]int),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(name string, factory Factory, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("provider %s has no factory", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.factories[name] = factory
	r.priorities[name] = priority
	return nil
}

// Get returns a provider factory by name
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	return factory, exists
}

// List returns all registered providers, highest priority first
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if r.priorities[names[i]] != r.priorities[names[j]] {
			return r.priorities[names[i]] > r.priorities[names[j]]
		}
		return names[i] < names[j]
	})

	return names
}

// Default returns the highest priority provider name, or "" when none are
// registered.
func (r *Registry) Default() string {
	if names := r.List(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// New creates the named source.
func (r *Registry) New(name string, settings Settings) (Source, error) {
	factory, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, r.List())
	}

	source, err := factory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	return source, nil
}
