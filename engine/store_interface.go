package engine

import "github.com/lixenwraith/marrow/core"

// AnyStore provides type-erased operations over one component store
// The ComponentManager keeps one per registered type; Remove is the eraser
// invoked when an entity is destroyed without knowing its concrete types
type AnyStore interface {
	// ID returns the component type index of the store
	ID() ComponentID

	// Name returns the component type name
	Name() string

	// Has checks if an entity owns this component
	Has(e core.Entity) bool

	// Remove deletes the entity's component, reporting whether it was present
	Remove(e core.Entity) bool

	// Count returns the number of entities owning this component
	Count() int

	// Entities returns the dense owner array, aliasing store memory
	Entities() []core.Entity

	// Clear removes every component from the store
	Clear()
}
