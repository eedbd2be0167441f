package engine

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// ResourceStore is a thread-safe container for world-wide singletons
// It lets systems reach shared data (time, camera, mesh registry) without global state
type ResourceStore struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// NewResourceStore creates a new empty resource store
func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		resources: make(map[reflect.Type]any),
	}
}

// AddResource registers or replaces a resource keyed by its static type T
// Pointer types are recommended so systems can mutate in place
func AddResource[T any](rs *ResourceStore, resource T) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.resources[reflect.TypeFor[T]()] = resource
}

// GetResource retrieves a resource of type T
// Returns the zero value of T and false if not found
func GetResource[T any](rs *ResourceStore) (T, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	val, ok := rs.resources[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGetResource retrieves a resource or panics if missing
// Useful for core resources (Time) that must exist
func MustGetResource[T any](rs *ResourceStore) T {
	res, ok := GetResource[T](rs)
	if !ok {
		panic("Required resource not found: " + reflect.TypeFor[T]().String())
	}
	return res
}

// TimeResource wraps time data for systems
// Updated by the Scheduler at the start of a tick, under the world update lock
type TimeResource struct {
	// Elapsed is the simulated time since the scheduler started
	Elapsed time.Duration

	// DeltaTime is the duration since the last update
	DeltaTime time.Duration

	// FrameNumber is the current tick count
	FrameNumber int64
}

// Update modifies TimeResource fields in-place
func (tr *TimeResource) Update(dt time.Duration, frameNumber int64) {
	tr.Elapsed += dt
	tr.DeltaTime = dt
	tr.FrameNumber = frameNumber
}

// DeltaSeconds returns DeltaTime as float32 seconds for animation math
func (tr *TimeResource) DeltaSeconds() float32 {
	return float32(tr.DeltaTime.Seconds())
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
