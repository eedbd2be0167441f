package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/marrow/core"
)

// World is the explicit engine context replacing process-wide manager singletons
// Constructed once at startup and passed to every system
type World struct {
	mu sync.RWMutex

	Components *ComponentManager
	Entities   *EntityManager
	Resources  *ResourceStore

	logger zerolog.Logger

	systems     []System
	updateMutex sync.Mutex
}

// Option configures a World
type Option func(*World)

// WithLogger sets the world logger; the default discards everything
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// NewWorld creates an empty world with a TimeResource registered
func NewWorld(opts ...Option) *World {
	w := &World{
		Components: NewComponentManager(),
		Entities:   NewEntityManager(),
		Resources:  NewResourceStore(),
		logger:     zerolog.Nop(),
		systems:    make([]System, 0),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Components.onRegister = func(s AnyStore) {
		w.logger.Debug().
			Uint32("component_id", uint32(s.ID())).
			Str("component_name", s.Name()).
			Msg("component type registered")
	}
	AddResource(w.Resources, &TimeResource{})

	return w
}

// Logger returns the world logger
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// CreateEntity issues a new entity id without components
func (w *World) CreateEntity() core.Entity {
	return w.Entities.CreateEntity()
}

// DestroyEntity removes all components and recycles the id
func (w *World) DestroyEntity(e core.Entity) bool {
	if !w.Entities.RemoveEntity(e, w.Components) {
		return false
	}
	w.logger.Trace().Uint32("entity_id", uint32(e)).Msg("entity destroyed")
	return true
}

// Clear removes all entities and components from the world
func (w *World) Clear() {
	w.Components.Clear()
	w.Entities.Reset()
}

// AddSystem adds a system to the world and sorts by priority
func (w *World) AddSystem(system System) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.systems = append(w.systems, system)

	// Sort by priority (bubble sort, small N, stable for equal priorities)
	for i := 0; i < len(w.systems)-1; i++ {
		for j := 0; j < len(w.systems)-i-1; j++ {
			if w.systems[j].Priority() > w.systems[j+1].Priority() {
				w.systems[j], w.systems[j+1] = w.systems[j+1], w.systems[j]
			}
		}
	}

	w.logger.Debug().
		Str("system", SystemName(system)).
		Int("priority", system.Priority()).
		Msg("system added")
}

// Systems returns a copy of all registered systems in run order
func (w *World) Systems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]System, len(w.systems))
	copy(result, w.systems)
	return result
}

// RunSafe executes a function while holding the world's update lock
func (w *World) RunSafe(fn func()) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()
	fn()
}

// Lock acquires the world's update mutex
func (w *World) Lock() {
	w.updateMutex.Lock()
}

// TryLock attempts to acquire the update mutex without blocking
func (w *World) TryLock() bool {
	return w.updateMutex.TryLock()
}

// Unlock releases the update mutex
func (w *World) Unlock() {
	w.updateMutex.Unlock()
}

// Update runs all systems sequentially under the update lock
func (w *World) Update(dt time.Duration) {
	w.RunSafe(func() {
		w.UpdateLocked(dt)
	})
}

// UpdateLocked runs all systems assuming the caller already holds the update lock
func (w *World) UpdateLocked(dt time.Duration) {
	for _, system := range w.Systems() {
		system.Update(w, dt)
	}
}
