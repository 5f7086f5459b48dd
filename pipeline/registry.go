package pipeline

import (
	"sort"
	"sync"
)

// Registry provides named work-function lookup for Call stages. Names
// must be registered before the stage referencing them is constructed.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]WorkFunc
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]WorkFunc)}
}

// Register adds a named operation to the registry.
func (r *Registry) Register(name string, fn WorkFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[name] = fn
}

// Get retrieves an operation by name.
func (r *Registry) Get(name string) (WorkFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.ops[name]
	return fn, ok
}

// List returns sorted names of all registered operations.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
