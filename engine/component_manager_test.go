package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/core"
)

type testTransform struct{ Pos [3]float32 }

type testMesh struct{ ID uint32 }

type testMaterial struct{ Color uint32 }

type testUnused struct{}

func TestCollectLinkedScenario(t *testing.T) {
	cm := NewComponentManager()
	e1 := core.Entity(1)

	SetComponent(cm, e1, testTransform{Pos: [3]float32{1, 2, 3}})
	SetComponent(cm, e1, testMesh{ID: 5})

	assert.Equal(t, []core.Entity{e1}, CollectLinked2[testTransform, testMesh](cm))
	assert.Empty(t, CollectLinked3[testTransform, testMesh, testMaterial](cm))

	CreateComponent[testMaterial](cm, e1)
	assert.Equal(t, []core.Entity{e1}, CollectLinked3[testTransform, testMesh, testMaterial](cm))

	assert.Equal(t, [3]float32{1, 2, 3}, GetComponent[testTransform](cm, e1).Pos)
	assert.Equal(t, uint32(5), GetComponent[testMesh](cm, e1).ID)
}

func TestCollectLinkedJoinCorrectness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cm := NewComponentManager()
	owns := map[core.Entity][3]bool{}

	for i := 0; i < 2000; i++ {
		e := core.Entity(1 + rng.Intn(150))
		o := owns[e]
		k := rng.Intn(3)
		add := rng.Intn(4) != 0
		switch k {
		case 0:
			if add {
				CreateComponent[testTransform](cm, e)
			} else {
				RemoveComponent[testTransform](cm, e)
			}
		case 1:
			if add {
				CreateComponent[testMesh](cm, e)
			} else {
				RemoveComponent[testMesh](cm, e)
			}
		case 2:
			if add {
				CreateComponent[testMaterial](cm, e)
			} else {
				RemoveComponent[testMaterial](cm, e)
			}
		}
		o[k] = add
		owns[e] = o
	}

	got := map[core.Entity]bool{}
	for _, e := range CollectLinked3[testTransform, testMesh, testMaterial](cm) {
		assert.False(t, got[e], "duplicate %v", e)
		got[e] = true
	}
	for e, o := range owns {
		assert.Equal(t, o[0] && o[1] && o[2], got[e], "entity %v owns %v", e, o)
	}
	for _, s := range cm.Stores() {
		require.NoError(t, s.(interface{ Check() error }).Check())
	}
}

func TestCollectLinkedFollowsBaseOrder(t *testing.T) {
	cm := NewComponentManager()
	for _, e := range []core.Entity{5, 2, 9, 7} {
		CreateComponent[testMesh](cm, e)
	}
	for _, e := range []core.Entity{7, 9, 2, 5} {
		CreateComponent[testTransform](cm, e)
	}

	assert.Equal(t, []core.Entity{5, 2, 9, 7}, CollectLinked2[testMesh, testTransform](cm))
	assert.Equal(t, []core.Entity{7, 9, 2, 5}, CollectLinked2[testTransform, testMesh](cm))
}

func TestCollectLinkedUnregisteredType(t *testing.T) {
	cm := NewComponentManager()
	CreateComponent[testMesh](cm, 1)

	assert.Empty(t, CollectLinked2[testMesh, testUnused](cm))
	assert.Empty(t, cm.CollectLinked())
	// Reads never register a store
	assert.Nil(t, LookupStore[testUnused](cm))
	assert.Nil(t, GetComponent[testUnused](cm, 1))
	assert.False(t, RemoveComponent[testUnused](cm, 1))
}

func TestCollectUniqueLinked(t *testing.T) {
	cm := NewComponentManager()
	exact := core.Entity(1)
	extra := core.Entity(2)
	partial := core.Entity(3)

	cm.CreateComponents(exact, TypeOf[testTransform](), TypeOf[testMesh]())
	cm.CreateComponents(extra, TypeOf[testTransform](), TypeOf[testMesh](), TypeOf[testMaterial]())
	cm.CreateComponents(partial, TypeOf[testTransform]())

	with := []ComponentType{TypeOf[testTransform](), TypeOf[testMesh]()}
	among := []ComponentType{TypeOf[testTransform](), TypeOf[testMesh](), TypeOf[testMaterial]()}

	assert.Equal(t, []core.Entity{exact}, cm.CollectUniqueLinked(with, among))
	assert.ElementsMatch(t, []core.Entity{exact, extra}, CollectLinked2[testTransform, testMesh](cm))
	assert.Equal(t, []core.Entity{partial}, cm.CollectUniqueLinked(with[:1], among))
	// Nothing outside with is of interest, so this degrades to CollectLinked
	assert.ElementsMatch(t, []core.Entity{exact, extra}, cm.CollectUniqueLinked(with, nil))
}

func TestCollectUniqueLinkedIgnoresUnrelatedTypes(t *testing.T) {
	type debugTag struct{}

	cm := NewComponentManager()
	e := core.Entity(1)
	cm.CreateComponents(e, TypeOf[testTransform](), TypeOf[testMesh]())

	with := []ComponentType{TypeOf[testTransform](), TypeOf[testMesh]()}
	among := []ComponentType{TypeOf[testTransform](), TypeOf[testMesh](), TypeOf[testMaterial]()}
	require.Equal(t, []core.Entity{e}, cm.CollectUniqueLinked(with, among))

	// An unrelated tag registers a new store but is outside the set of interest
	CreateComponent[debugTag](cm, e)
	assert.Equal(t, []core.Entity{e}, cm.CollectUniqueLinked(with, among))

	// Owning a type of interest outside with still excludes
	CreateComponent[testMaterial](cm, e)
	assert.Empty(t, cm.CollectUniqueLinked(with, among))
}

func TestQueryWithout(t *testing.T) {
	cm := NewComponentManager()
	cm.CreateComponents(1, TypeOf[testTransform](), TypeOf[testMesh]())
	cm.CreateComponents(2, TypeOf[testTransform](), TypeOf[testMesh](), TypeOf[testMaterial]())

	rigid := cm.Query().
		With(TypeOf[testTransform](), TypeOf[testMesh]()).
		Without(TypeOf[testMaterial](), TypeOf[testUnused]()).
		Execute()
	assert.Equal(t, []core.Entity{1}, rigid)
}

func TestQuerySmallestFirst(t *testing.T) {
	cm := NewComponentManager()
	for e := core.Entity(1); e <= 50; e++ {
		CreateComponent[testTransform](cm, e)
	}
	CreateComponent[testMesh](cm, 30)
	CreateComponent[testMesh](cm, 10)

	got := cm.Query().With(TypeOf[testTransform](), TypeOf[testMesh]()).SmallestFirst().Execute()
	assert.Equal(t, []core.Entity{30, 10}, got)
}

func TestQueryExecutedPanics(t *testing.T) {
	cm := NewComponentManager()
	q := cm.Query().With(TypeOf[testMesh]())
	q.Execute()

	assert.Panics(t, func() { q.With(TypeOf[testTransform]()) })
	assert.Panics(t, func() { q.Without(TypeOf[testTransform]()) })
	assert.Empty(t, q.Execute())
}

func TestRemoveAllComponents(t *testing.T) {
	cm := NewComponentManager()
	cm.CreateComponents(1, TypeOf[testTransform](), TypeOf[testMesh](), TypeOf[testMaterial]())
	SetComponent(cm, 2, testMesh{ID: 8})

	assert.Equal(t, 3, cm.ComponentCount(1))
	assert.Equal(t, 3, cm.RemoveAllComponents(1))
	assert.Equal(t, 0, cm.ComponentCount(1))
	assert.Equal(t, 0, cm.RemoveAllComponents(1))

	assert.Equal(t, uint32(8), GetComponent[testMesh](cm, 2).ID)
	assert.True(t, cm.Has(2, TypeOf[testMesh]()))
	assert.False(t, cm.Has(2, TypeOf[testUnused]()))
}

func TestCreateComponentsOrderAndIdempotence(t *testing.T) {
	cm := NewComponentManager()
	cm.CreateComponents(1, TypeOf[testMaterial](), TypeOf[testMesh]())
	GetComponent[testMesh](cm, 1).ID = 3

	cm.CreateComponents(1, TypeOf[testMesh]())
	assert.Equal(t, uint32(3), GetComponent[testMesh](cm, 1).ID)

	stores := cm.Stores()
	require.Len(t, stores, 2)
	assert.Equal(t, ComponentIDOf[testMaterial](), stores[0].ID())
	assert.Equal(t, ComponentIDOf[testMesh](), stores[1].ID())
}

func TestContainers(t *testing.T) {
	cm := NewComponentManager()
	assert.Nil(t, ComponentContainer[testMesh](cm))
	assert.Nil(t, EntityContainer[testMesh](cm))

	SetComponent(cm, 4, testMesh{ID: 40})
	SetComponent(cm, 6, testMesh{ID: 60})

	entities := EntityContainer[testMesh](cm)
	meshes := ComponentContainer[testMesh](cm)
	require.Len(t, meshes, 2)
	for i, e := range entities {
		assert.Equal(t, uint32(e)*10, meshes[i].ID)
	}
	assert.True(t, HasComponent[testMesh](cm, 6))
}

func TestRefSurvivesRelocation(t *testing.T) {
	cm := NewComponentManager()
	ref := RefOf[testHealth](cm, 1)
	assert.False(t, ref.Valid())
	assert.Nil(t, ref.Get())

	SetComponent(cm, 1, testHealth{HP: 5})
	for e := core.Entity(2); e < 100; e++ {
		CreateComponent[testHealth](cm, e)
	}
	RemoveComponent[testHealth](cm, 2)

	require.True(t, ref.Valid())
	ref.Get().HP = 6
	assert.Equal(t, 6, GetComponent[testHealth](cm, 1).HP)
	assert.Equal(t, core.Entity(1), ref.Entity())

	RemoveComponent[testHealth](cm, 1)
	assert.Nil(t, ref.Get())

	var zero Ref[testHealth]
	assert.False(t, zero.Valid())
	assert.Nil(t, zero.Get())
}
