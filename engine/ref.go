package engine

import "github.com/lixenwraith/marrow/core"

// Ref is a stable handle to an entity's component
// Unlike *T from GetComponent it survives insertions and removals in the same store
// by resolving through the sparse array on every Get
type Ref[T any] struct {
	store  *Store[T]
	entity core.Entity
}

// RefOf returns a handle to e's T, registering the store if needed
func RefOf[T any](cm *ComponentManager, e core.Entity) Ref[T] {
	return Ref[T]{store: StoreOf[T](cm), entity: e}
}

// Entity returns the referenced entity
func (r Ref[T]) Entity() core.Entity {
	return r.entity
}

// Get resolves the current address of the component, nil once removed
// The returned pointer follows the same short-lived rules as GetComponent
func (r Ref[T]) Get() *T {
	if r.store == nil {
		return nil
	}
	return r.store.Get(r.entity)
}

// Valid reports whether the component is still attached
func (r Ref[T]) Valid() bool {
	return r.store != nil && r.store.Has(r.entity)
}
