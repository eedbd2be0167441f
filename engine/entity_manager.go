package engine

import (
	"github.com/lixenwraith/marrow/core"
	"github.com/lixenwraith/marrow/parameter"
)

// EntityManager issues and recycles entity identifiers
// An id is either active or on the free list, never both
type EntityManager struct {
	next   core.Entity
	active []core.Entity // indexed by id; id when active, RemovedEntity when freed
	free   []core.Entity
	count  int
}

// NewEntityManager creates a manager whose first issued id is 1
func NewEntityManager() *EntityManager {
	em := &EntityManager{}
	em.Reset()
	return em
}

// CreateEntity reuses the most recently freed id, otherwise allocates the next one
func (em *EntityManager) CreateEntity() core.Entity {
	var e core.Entity
	if n := len(em.free); n > 0 {
		e = em.free[n-1]
		em.free = em.free[:n-1]
	} else {
		e = em.next
		em.next++
		em.active = append(em.active, core.NullEntity)
	}
	em.active[e] = e
	em.count++
	return e
}

// RemoveEntity strips every component from e, marks its slot removed and frees the id
// Returns false for ids that are not active
func (em *EntityManager) RemoveEntity(e core.Entity, cm *ComponentManager) bool {
	if !em.IsActive(e) {
		return false
	}
	if cm != nil {
		cm.RemoveAllComponents(e)
	}
	em.active[e] = core.RemovedEntity
	em.free = append(em.free, e)
	em.count--
	return true
}

// IsActive checks if e is currently issued
func (em *EntityManager) IsActive(e core.Entity) bool {
	return e.Valid() && int(e) < len(em.active) && em.active[e] == e
}

// Count returns the number of active entities
func (em *EntityManager) Count() int {
	return em.count
}

// FreeCount returns the number of ids waiting for reuse
func (em *EntityManager) FreeCount() int {
	return len(em.free)
}

// Active returns every active id in ascending order
func (em *EntityManager) Active() []core.Entity {
	out := make([]core.Entity, 0, em.count)
	for i, e := range em.active {
		if core.Entity(i) == e && e.Valid() {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets every id; the next issued id is 1 again
func (em *EntityManager) Reset() {
	em.next = 1
	em.active = make([]core.Entity, 1, parameter.InitialEntityCapacity)
	em.free = em.free[:0]
	em.count = 0
}
