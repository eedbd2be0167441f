// Package container provides the growable array backing every component store
package container

import "github.com/lixenwraith/marrow/parameter"

// Destroyer is implemented by element types owning resources that must be released
// when the element leaves the container. The method is looked up on *T
type Destroyer interface {
	Destroy()
}

// Vector is a growable array with explicit construct/destruct semantics
// Capacity grows by a fixed block (parameter.VectorBlock), not geometrically
// Relocation during growth moves elements; it never calls Destroy
// The zero value is an empty vector ready for use
type Vector[T any] struct {
	data []T // len(data) is the capacity
	size int
	ctor func() T
}

// NewVector creates a vector with room for capacity elements
func NewVector[T any](capacity int) *Vector[T] {
	v := &Vector[T]{}
	if capacity > 0 {
		v.data = make([]T, roundBlock(capacity))
	}
	return v
}

// NewVectorWith creates a vector whose Resize default-constructs through ctor
func NewVectorWith[T any](ctor func() T) *Vector[T] {
	return &Vector[T]{ctor: ctor}
}

// Len returns the number of live elements
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of elements storable without reallocation
func (v *Vector[T]) Cap() int {
	return len(v.data)
}

// Push appends value, growing the backing array by one block when full
func (v *Vector[T]) Push(value T) {
	if v.size == len(v.data) {
		v.grow(len(v.data) + parameter.VectorBlock)
	}
	v.data[v.size] = value
	v.size++
}

// Pop destructs and removes the last element; no-op when empty
func (v *Vector[T]) Pop() {
	if v.size == 0 {
		return
	}
	v.size--
	v.destroy(v.size)
}

// Resize sets the length to n
// Shrinking destructs [n, size); growing default-constructs [size, n)
func (v *Vector[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n < v.size {
		for i := n; i < v.size; i++ {
			v.destroy(i)
		}
		v.size = n
		return
	}
	if n > len(v.data) {
		v.grow(roundBlock(n))
	}
	for i := v.size; i < n; i++ {
		v.data[i] = v.construct()
	}
	v.size = n
}

// Remove destructs the element at index and shifts the tail down by one
// O(n); keep off hot paths
func (v *Vector[T]) Remove(index int) {
	assertIndex(index, v.size)
	v.destroyValue(&v.data[index])
	copy(v.data[index:], v.data[index+1:v.size])
	v.size--
	var zero T
	v.data[v.size] = zero
}

// Swap exchanges two live elements
func (v *Vector[T]) Swap(i, j int) {
	assertIndex(i, v.size)
	assertIndex(j, v.size)
	v.data[i], v.data[j] = v.data[j], v.data[i]
}

// At returns the address of element i
// Bounds are the caller's responsibility; debug builds assert i < Len()
// The pointer is invalidated by any growth of the vector
func (v *Vector[T]) At(i int) *T {
	assertIndex(i, v.size)
	return &v.data[i]
}

// Get returns a copy of element i
func (v *Vector[T]) Get(i int) T {
	assertIndex(i, v.size)
	return v.data[i]
}

// Set assigns element i without destructing the previous value
func (v *Vector[T]) Set(i int, value T) {
	assertIndex(i, v.size)
	v.data[i] = value
}

// Last returns the address of the last element, nil when empty
func (v *Vector[T]) Last() *T {
	if v.size == 0 {
		return nil
	}
	return &v.data[v.size-1]
}

// Slice returns the live elements, aliasing the backing storage
func (v *Vector[T]) Slice() []T {
	return v.data[:v.size]
}

// Clear destructs every element and keeps the capacity
func (v *Vector[T]) Clear() {
	for i := 0; i < v.size; i++ {
		v.destroy(i)
	}
	v.size = 0
}

// Free destructs every element and releases the backing storage
func (v *Vector[T]) Free() {
	v.Clear()
	v.data = nil
}

func (v *Vector[T]) grow(capacity int) {
	next := make([]T, capacity)
	copy(next, v.data[:v.size])
	// Moved-from slots are zeroed so the old array holds no references
	clear(v.data)
	v.data = next
}

func (v *Vector[T]) construct() T {
	if v.ctor != nil {
		return v.ctor()
	}
	var zero T
	return zero
}

func (v *Vector[T]) destroy(i int) {
	v.destroyValue(&v.data[i])
	var zero T
	v.data[i] = zero
}

func (v *Vector[T]) destroyValue(p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
}

func roundBlock(n int) int {
	return (n + parameter.VectorBlock - 1) / parameter.VectorBlock * parameter.VectorBlock
}
