package engine

import (
	"reflect"
	"sync"
)

// ComponentID is the process-wide index of a component type
// Assigned on first use of the type and cached for the process lifetime
type ComponentID uint32

var componentIDs = struct {
	mu    sync.Mutex
	ids   map[reflect.Type]ComponentID
	names []string
}{
	ids: make(map[reflect.Type]ComponentID),
}

// ComponentIDOf returns the ComponentID of T, assigning the next free one on first call
func ComponentIDOf[T any]() ComponentID {
	t := reflect.TypeFor[T]()

	componentIDs.mu.Lock()
	defer componentIDs.mu.Unlock()

	if id, ok := componentIDs.ids[t]; ok {
		return id
	}
	id := ComponentID(len(componentIDs.names))
	componentIDs.ids[t] = id
	componentIDs.names = append(componentIDs.names, t.String())
	return id
}

// ComponentName returns the Go type name registered for id
func ComponentName(id ComponentID) string {
	componentIDs.mu.Lock()
	defer componentIDs.mu.Unlock()

	if int(id) >= len(componentIDs.names) {
		return "unknown"
	}
	return componentIDs.names[id]
}
