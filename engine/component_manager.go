package engine

import (
	"github.com/lixenwraith/marrow/core"
)

// ComponentManager maps (component type, entity) to component values
// Stores are created lazily on first use of a type and kept in registration order
// Not safe for concurrent mutation; one simulation thread owns it per frame
type ComponentManager struct {
	byID  []AnyStore // indexed by ComponentID, nil for types never used here
	order []AnyStore

	onRegister func(AnyStore)
}

// NewComponentManager creates an empty manager
func NewComponentManager() *ComponentManager {
	return &ComponentManager{}
}

func (cm *ComponentManager) lookup(id ComponentID) AnyStore {
	if int(id) >= len(cm.byID) {
		return nil
	}
	return cm.byID[id]
}

func (cm *ComponentManager) register(s AnyStore) {
	id := int(s.ID())
	if id >= len(cm.byID) {
		grown := make([]AnyStore, id+1)
		copy(grown, cm.byID)
		cm.byID = grown
	}
	cm.byID[id] = s
	cm.order = append(cm.order, s)
	if cm.onRegister != nil {
		cm.onRegister(s)
	}
}

// StoreOf returns the store for T, creating and registering it on first use
func StoreOf[T any](cm *ComponentManager) *Store[T] {
	if s := cm.lookup(ComponentIDOf[T]()); s != nil {
		return s.(*Store[T])
	}
	s := NewStore[T]()
	cm.register(s)
	return s
}

// LookupStore returns the store for T without registering it, nil when unused
func LookupStore[T any](cm *ComponentManager) *Store[T] {
	if s := cm.lookup(ComponentIDOf[T]()); s != nil {
		return s.(*Store[T])
	}
	return nil
}

// Stores returns every registered store in registration order
func (cm *ComponentManager) Stores() []AnyStore {
	out := make([]AnyStore, len(cm.order))
	copy(out, cm.order)
	return out
}

// CreateComponent attaches a default-constructed T to e and returns it
// Re-adding an existing component is a no-op returning the current value
func CreateComponent[T any](cm *ComponentManager, e core.Entity) *T {
	return StoreOf[T](cm).Add(e)
}

// SetComponent attaches or overwrites T on e
func SetComponent[T any](cm *ComponentManager, e core.Entity, val T) *T {
	return StoreOf[T](cm).Set(e, val)
}

// CreateComponents attaches each listed type to e in argument order
func (cm *ComponentManager) CreateComponents(e core.Entity, types ...ComponentType) {
	for _, t := range types {
		t.create(cm, e)
	}
}

// GetComponent returns e's T or nil
// Do not retain the pointer across CreateComponent/RemoveComponent for T
func GetComponent[T any](cm *ComponentManager, e core.Entity) *T {
	if s := LookupStore[T](cm); s != nil {
		return s.Get(e)
	}
	return nil
}

// HasComponent checks if e owns T
func HasComponent[T any](cm *ComponentManager, e core.Entity) bool {
	if s := LookupStore[T](cm); s != nil {
		return s.Has(e)
	}
	return false
}

// Has checks if e owns the component type t
func (cm *ComponentManager) Has(e core.Entity, t ComponentType) bool {
	if s := cm.lookup(t.ID()); s != nil {
		return s.Has(e)
	}
	return false
}

// RemoveComponent detaches T from e; no-op when absent
// Resources referenced by the component (GPU buffers, files) must be released by the caller first
func RemoveComponent[T any](cm *ComponentManager, e core.Entity) bool {
	if s := LookupStore[T](cm); s != nil {
		return s.Remove(e)
	}
	return false
}

// RemoveAllComponents runs every store's eraser for e and returns how many components were removed
func (cm *ComponentManager) RemoveAllComponents(e core.Entity) int {
	removed := 0
	for _, s := range cm.order {
		if s.Remove(e) {
			removed++
		}
	}
	return removed
}

// ComponentCount returns the number of component types e owns
func (cm *ComponentManager) ComponentCount(e core.Entity) int {
	n := 0
	for _, s := range cm.order {
		if s.Has(e) {
			n++
		}
	}
	return n
}

// ComponentContainer returns the dense value array of T for bulk iteration
func ComponentContainer[T any](cm *ComponentManager) []T {
	if s := LookupStore[T](cm); s != nil {
		return s.Components()
	}
	return nil
}

// EntityContainer returns the dense owner array of T, index-aligned with ComponentContainer
func EntityContainer[T any](cm *ComponentManager) []core.Entity {
	if s := LookupStore[T](cm); s != nil {
		return s.Entities()
	}
	return nil
}

// CollectLinked returns every entity owning all listed types
// Enumeration follows the first type's dense order
func (cm *ComponentManager) CollectLinked(types ...ComponentType) []core.Entity {
	return cm.Query().With(types...).Execute()
}

// CollectUniqueLinked returns entities owning every type in with and no type of among outside with
// among is the caller's explicit set of interest; types outside it never exclude an entity
func (cm *ComponentManager) CollectUniqueLinked(with, among []ComponentType) []core.Entity {
	listed := make(map[ComponentID]struct{}, len(with))
	for _, t := range with {
		listed[t.ID()] = struct{}{}
	}

	excluded := make([]ComponentType, 0, len(among))
	for _, t := range among {
		if _, ok := listed[t.ID()]; !ok {
			excluded = append(excluded, t)
		}
	}
	return cm.Query().With(with...).Without(excluded...).Execute()
}

// CollectLinked2 returns entities owning both A and B
func CollectLinked2[A, B any](cm *ComponentManager) []core.Entity {
	return cm.CollectLinked(TypeOf[A](), TypeOf[B]())
}

// CollectLinked3 returns entities owning A, B and C
func CollectLinked3[A, B, C any](cm *ComponentManager) []core.Entity {
	return cm.CollectLinked(TypeOf[A](), TypeOf[B](), TypeOf[C]())
}

// CollectLinked4 returns entities owning A, B, C and D
func CollectLinked4[A, B, C, D any](cm *ComponentManager) []core.Entity {
	return cm.CollectLinked(TypeOf[A](), TypeOf[B](), TypeOf[C](), TypeOf[D]())
}

// Clear empties every store; registrations are kept
func (cm *ComponentManager) Clear() {
	for _, s := range cm.order {
		s.Clear()
	}
}
