package store

import (
	"sync"

	"github.com/MKhiriev/go-cix-vault/models"
)

// Plugin attaches hooks to a model's schema.
type Plugin func(schema *Schema)

// PluginRegistry maps model names to the ordered plugins applied to their
// schemas when collections are built.
type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[models.ModelName][]Plugin
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[models.ModelName][]Plugin)}
}

// Register appends plugin to model's list.
func (r *PluginRegistry) Register(model models.ModelName, plugin Plugin) error {
	if model == "" {
		return ErrEmptyModelName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[model] = append(r.plugins[model], plugin)
	return nil
}

// Apply runs every plugin registered for model against schema, in
// registration order.
func (r *PluginRegistry) Apply(model models.ModelName, schema *Schema) {
	r.mu.RLock()
	plugins := append([]Plugin(nil), r.plugins[model]...)
	r.mu.RUnlock()

	for _, p := range plugins {
		p(schema)
	}
}

// Len returns the number of plugins registered for model.
func (r *PluginRegistry) Len(model models.ModelName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins[model])
}
