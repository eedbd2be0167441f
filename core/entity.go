package core

import "strconv"

// Entity is an opaque identifier for a game object
// It carries no data; existence is implied by owning at least one component
type Entity uint32

const (
	// NullEntity is never issued and marks "no entity"
	NullEntity Entity = 0

	// RemovedEntity marks a freed slot in the entity registry
	RemovedEntity Entity = ^Entity(0)
)

// Valid reports whether e can refer to a live entity
func (e Entity) Valid() bool {
	return e != NullEntity && e != RemovedEntity
}

func (e Entity) String() string {
	switch e {
	case NullEntity:
		return "entity(null)"
	case RemovedEntity:
		return "entity(removed)"
	}
	return "entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
