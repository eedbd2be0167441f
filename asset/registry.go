package asset

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/animation"
)

// MeshID identifies a registered model; zero is never issued
type MeshID = uint32

// Registry owns loaded models and issues dense ids
// Installed as a world resource so renderers and systems share one instance
type Registry struct {
	mu     sync.RWMutex
	models []*Model
	byName map[string]MeshID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]MeshID)}
}

// Add validates and registers model, returning its id
func (r *Registry) Add(model *Model) (MeshID, error) {
	if err := model.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if model.Name != "" {
		if _, ok := r.byName[model.Name]; ok {
			return 0, eris.Errorf("model %q already registered", model.Name)
		}
	}
	r.models = append(r.models, model)
	id := MeshID(len(r.models))
	if model.Name != "" {
		r.byName[model.Name] = id
	}
	return id, nil
}

// Model returns the model for id, or nil
func (r *Registry) Model(id MeshID) *Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) > len(r.models) {
		return nil
	}
	return r.models[id-1]
}

// Lookup returns the id registered under name
func (r *Registry) Lookup(name string) (MeshID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Len returns the number of registered models
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Each calls fn for every model in id order
func (r *Registry) Each(fn func(id MeshID, m *Model)) {
	r.mu.RLock()
	models := r.models
	r.mu.RUnlock()
	for i, m := range models {
		fn(MeshID(i+1), m)
	}
}

// Clip implements animation.Library
func (r *Registry) Clip(mesh uint32, index int) *animation.Clip {
	m := r.Model(mesh)
	if m == nil {
		return nil
	}
	return m.Clip(index)
}
