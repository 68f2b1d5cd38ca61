package providers

import (
	"sort"
	"sync"

	"github.com/flowlint/flowlint/pkg/schema"
)

// Registry is the concrete thread-safe provider catalog.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Descriptor),
	}
}

// Register adds a provider descriptor. Returns error on duplicate type.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return schema.NewError(schema.ErrCodeValidation, "provider type is empty")
	}
	if len(d.Capabilities) == 0 {
		return schema.NewErrorf(schema.ErrCodeValidation, "provider %q declares no capabilities", d.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[d.Type]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "provider %q already registered", d.Type)
	}

	r.providers[d.Type] = d
	return nil
}

// Get retrieves a descriptor by provider type.
func (r *Registry) Get(providerType string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.providers[providerType]
	if !ok {
		return Descriptor{}, schema.NewErrorf(schema.ErrCodeProviderUnavailable,
			"provider %q not registered", providerType)
	}
	return d, nil
}

// Has checks if a provider type is registered.
func (r *Registry) Has(providerType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[providerType]
	return ok
}

// List returns all descriptors, sorted by type.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.providers))
	for _, d := range r.providers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Type < out[j].Type
	})
	return out
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

var _ Lookup = (*Registry)(nil)
