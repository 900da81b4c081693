// Package sources defines the contract every venue adapter satisfies and the
// registry the orchestrator discovers adapters through. An adapter converts
// one venue's listings page or API into canonical Screening records; all the
// per-site quirks (markup, date formats, pagination, failure modes) stay
// behind this boundary.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"cinescout/models"
)

// Source is one venue's or one platform's listings feed. Fetch returns the
// venue's upcoming screenings, possibly empty — a venue with nothing listed
// is a normal outcome, not an error. Every record returned must already be
// deduplicated within the source and carry venue-local date/time.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Screening, error)
}

// Factory builds a Source around the given HTTP client. Adapters take the
// client rather than constructing their own so tests and the polite shared
// client can be injected.
type Factory func(client *http.Client) Source

// Registry manages registered source factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a source factory under its name. Registration order is
// preserved for List.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
}

// Get builds a source by name.
func (r *Registry) Get(name string, client *http.Client) (Source, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source %q not registered", name)
	}
	return factory(client), nil
}

// List returns all registered source names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// DefaultRegistry holds the adapters compiled into this binary; adapters
// register themselves from init.
var DefaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}
