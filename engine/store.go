package engine

import (
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/container"
	"github.com/lixenwraith/marrow/core"
)

// Initializer is implemented by components whose default state is not the zero value
// Init is called on *T right after the store default-constructs it
type Initializer interface {
	Init()
}

// Store is the sparse/dense/components triple for component type T
// sparse maps Entity -> dense index and is sized to the highest entity seen
// dense[i] owns components[i]; removal swaps with the last slot and pops
//
// Pointers returned by Add, Set and Get alias the components array and are
// invalidated by the next Add/Set (growth) or Remove (swap) on this store
type Store[T any] struct {
	id         ComponentID
	sparse     container.Vector[uint32]
	dense      container.Vector[core.Entity]
	components container.Vector[T]
}

// NewStore creates an empty store for T
func NewStore[T any]() *Store[T] {
	return &Store[T]{id: ComponentIDOf[T]()}
}

// ID returns the ComponentID of T
func (s *Store[T]) ID() ComponentID {
	return s.id
}

// Name returns the type name of T
func (s *Store[T]) Name() string {
	return ComponentName(s.id)
}

func (s *Store[T]) index(e core.Entity) (int, bool) {
	if int(e) >= s.sparse.Len() {
		return 0, false
	}
	i := int(s.sparse.Get(int(e)))
	if i < s.dense.Len() && s.dense.Get(i) == e {
		return i, true
	}
	return 0, false
}

// Add inserts a default-constructed T for e and returns it
// Idempotent: an existing component is returned unchanged
func (s *Store[T]) Add(e core.Entity) *T {
	if i, ok := s.index(e); ok {
		return s.components.At(i)
	}

	if int(e) >= s.sparse.Len() {
		s.sparse.Resize(int(e) + 1)
	}
	s.sparse.Set(int(e), uint32(s.dense.Len()))
	s.dense.Push(e)

	var zero T
	s.components.Push(zero)
	p := s.components.Last()
	if init, ok := any(p).(Initializer); ok {
		init.Init()
	}
	return p
}

// Set inserts or overwrites the component for e
func (s *Store[T]) Set(e core.Entity, val T) *T {
	p := s.Add(e)
	*p = val
	return p
}

// Get returns the component for e, nil when absent
func (s *Store[T]) Get(e core.Entity) *T {
	if i, ok := s.index(e); ok {
		return s.components.At(i)
	}
	return nil
}

// Has checks if e owns this component
func (s *Store[T]) Has(e core.Entity) bool {
	_, ok := s.index(e)
	return ok
}

// Remove deletes e's component in O(1) by swapping the last slot into its place
// Does not release anything the component references outside the store
func (s *Store[T]) Remove(e core.Entity) bool {
	i, ok := s.index(e)
	if !ok {
		return false
	}

	last := s.dense.Len() - 1
	if i != last {
		moved := s.dense.Get(last)
		s.dense.Swap(i, last)
		s.components.Swap(i, last)
		s.sparse.Set(int(moved), uint32(i))
	}
	s.dense.Pop()
	s.components.Pop()
	return true
}

// Count returns the number of owners
func (s *Store[T]) Count() int {
	return s.dense.Len()
}

// Entities returns the dense owner array; do not retain across Add/Remove
func (s *Store[T]) Entities() []core.Entity {
	return s.dense.Slice()
}

// Components returns the dense component array, index-aligned with Entities
func (s *Store[T]) Components() []T {
	return s.components.Slice()
}

// Each calls fn for every owner in dense order
// fn must not add or remove components of this type
func (s *Store[T]) Each(fn func(e core.Entity, c *T)) {
	for i := 0; i < s.dense.Len(); i++ {
		fn(s.dense.Get(i), s.components.At(i))
	}
}

// Clear removes every component
func (s *Store[T]) Clear() {
	s.dense.Clear()
	s.components.Clear()
	s.sparse.Clear()
}

// Check verifies the sparse-set invariants
// dense and components stay index-aligned and every owner maps back to its slot
func (s *Store[T]) Check() error {
	if s.dense.Len() != s.components.Len() {
		return eris.Errorf("store %s: dense size %d != components size %d", s.Name(), s.dense.Len(), s.components.Len())
	}
	for i, e := range s.dense.Slice() {
		if int(e) >= s.sparse.Len() {
			return eris.Errorf("store %s: %v beyond sparse size %d", s.Name(), e, s.sparse.Len())
		}
		if got := int(s.sparse.Get(int(e))); got != i {
			return eris.Errorf("store %s: sparse[%v] = %d, want %d", s.Name(), e, got, i)
		}
	}
	return nil
}
