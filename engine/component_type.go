package engine

import "github.com/lixenwraith/marrow/core"

// ComponentType names a component type as a value so type lists can be passed variadically
//
//	cm.CreateComponents(e, TypeOf[Transform](), TypeOf[Mesh]())
type ComponentType interface {
	// ID returns the process-wide index of the type
	ID() ComponentID

	// create attaches a default-constructed component to e
	create(cm *ComponentManager, e core.Entity)
}

type componentType[T any] struct{}

// TypeOf returns the ComponentType for T
func TypeOf[T any]() ComponentType {
	return componentType[T]{}
}

func (componentType[T]) ID() ComponentID {
	return ComponentIDOf[T]()
}

func (componentType[T]) create(cm *ComponentManager, e core.Entity) {
	StoreOf[T](cm).Add(e)
}

func (c componentType[T]) String() string {
	return ComponentName(c.ID())
}
