package engine

import "github.com/lixenwraith/marrow/core"

// EntityBuilder provides a fluent interface for constructing entities with components
//
// Example usage:
//
//	e := engine.With(engine.With(w.NewEntity(), transform), mesh).Build()
type EntityBuilder struct {
	world  *World
	entity core.Entity
	built  bool
}

// NewEntity creates a new EntityBuilder with a reserved entity id
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{
		world:  w,
		entity: w.CreateEntity(),
	}
}

// With attaches component to the entity being built
// Panics if called after Build()
func With[T any](eb *EntityBuilder, component T) *EntityBuilder {
	if eb.built {
		panic("entity already built - cannot add components after Build()")
	}
	SetComponent(eb.world.Components, eb.entity, component)
	return eb
}

// WithDefault attaches default-constructed components of each type
// Panics if called after Build()
func (eb *EntityBuilder) WithDefault(types ...ComponentType) *EntityBuilder {
	if eb.built {
		panic("entity already built - cannot add components after Build()")
	}
	eb.world.Components.CreateComponents(eb.entity, types...)
	return eb
}

// Build finalizes construction and returns the entity id
func (eb *EntityBuilder) Build() core.Entity {
	eb.built = true
	return eb.entity
}
