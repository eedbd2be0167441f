package engine

import (
	"sort"

	"github.com/lixenwraith/marrow/core"
)

// QueryBuilder provides a fluent interface for join queries over component stores
// The first With type's dense array is the enumeration base, so results follow its order
// unless SmallestFirst trades that guarantee for fewer membership tests
type QueryBuilder struct {
	cm            *ComponentManager
	with          []ComponentType
	without       []ComponentType
	smallestFirst bool
	executed      bool
	results       []core.Entity
}

// Query creates a new QueryBuilder
//
// Example:
//
//	entities := w.Components.Query().
//	    With(TypeOf[component.Transform](), TypeOf[component.Mesh]()).
//	    Without(TypeOf[component.Skin]()).
//	    Execute()
func (cm *ComponentManager) Query() *QueryBuilder {
	return &QueryBuilder{
		cm:   cm,
		with: make([]ComponentType, 0, 4),
	}
}

// With requires every listed type
// Panics if called after Execute()
func (qb *QueryBuilder) With(types ...ComponentType) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.with = append(qb.with, types...)
	return qb
}

// Without excludes entities owning any listed type
// Panics if called after Execute()
func (qb *QueryBuilder) Without(types ...ComponentType) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.without = append(qb.without, types...)
	return qb
}

// SmallestFirst enumerates from the smallest required store
// Result order is then unspecified
func (qb *QueryBuilder) SmallestFirst() *QueryBuilder {
	qb.smallestFirst = true
	return qb
}

// Execute runs the query; repeated calls return the cached result
//
// Returns:
//   - Empty slice if no With types were given or any of them was never registered
//   - Entities owning every With type and none of the Without types
func (qb *QueryBuilder) Execute() []core.Entity {
	if qb.executed {
		return qb.results
	}
	qb.executed = true
	qb.results = make([]core.Entity, 0)

	if len(qb.with) == 0 {
		return qb.results
	}

	required := make([]AnyStore, 0, len(qb.with))
	for _, t := range qb.with {
		s := qb.cm.lookup(t.ID())
		if s == nil {
			return qb.results
		}
		required = append(required, s)
	}

	excluded := make([]AnyStore, 0, len(qb.without))
	for _, t := range qb.without {
		if s := qb.cm.lookup(t.ID()); s != nil {
			excluded = append(excluded, s)
		}
	}

	if qb.smallestFirst {
		sort.SliceStable(required, func(i, j int) bool {
			return required[i].Count() < required[j].Count()
		})
	}

	base := required[0]
	others := required[1:]

candidates:
	for _, e := range base.Entities() {
		for _, s := range others {
			if !s.Has(e) {
				continue candidates
			}
		}
		for _, s := range excluded {
			if s.Has(e) {
				continue candidates
			}
		}
		qb.results = append(qb.results, e)
	}

	return qb.results
}
