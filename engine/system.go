package engine

import "time"

// System is an interface that all systems must implement
type System interface {
	Update(world *World, dt time.Duration)
	Priority() int // Lower values run first
}

// Named is optionally implemented by systems for logging
type Named interface {
	Name() string
}

// SystemFunc adapts a function into a System
type SystemFunc struct {
	Label string
	Order int
	Fn    func(world *World, dt time.Duration)
}

func (s SystemFunc) Update(world *World, dt time.Duration) { s.Fn(world, dt) }
func (s SystemFunc) Priority() int                        { return s.Order }
func (s SystemFunc) Name() string                         { return s.Label }

// SystemName returns the system's Name or its Go type
func SystemName(s System) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return typeName(s)
}
