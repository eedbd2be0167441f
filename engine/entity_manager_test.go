package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/core"
)

func TestEntityManagerIssuesFromOne(t *testing.T) {
	em := NewEntityManager()
	assert.Equal(t, core.Entity(1), em.CreateEntity())
	assert.Equal(t, core.Entity(2), em.CreateEntity())
	assert.Equal(t, 2, em.Count())
	assert.False(t, em.IsActive(core.NullEntity))
}

func TestEntityManagerReusesFreedIDs(t *testing.T) {
	em := NewEntityManager()
	cm := NewComponentManager()
	a := em.CreateEntity()
	b := em.CreateEntity()
	SetComponent(cm, a, testHealth{HP: 1})

	require.True(t, em.RemoveEntity(a, cm))
	assert.False(t, em.IsActive(a))
	assert.Nil(t, GetComponent[testHealth](cm, a))
	assert.Equal(t, 1, em.FreeCount())

	// Removing twice is a no-op
	assert.False(t, em.RemoveEntity(a, cm))
	assert.Equal(t, 1, em.FreeCount())

	c := em.CreateEntity()
	assert.Equal(t, a, c)
	assert.True(t, em.IsActive(c))
	assert.True(t, em.IsActive(b))
	assert.Equal(t, 0, em.FreeCount())
	// A recycled id starts without components
	assert.Equal(t, 0, cm.ComponentCount(c))
}

func TestEntityManagerNoReuseWhileActive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	em := NewEntityManager()
	cm := NewComponentManager()
	live := map[core.Entity]bool{}
	order := make([]core.Entity, 0)

	for i := 0; i < 3000; i++ {
		if len(order) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(order))
			e := order[idx]
			order[idx] = order[len(order)-1]
			order = order[:len(order)-1]
			require.True(t, em.RemoveEntity(e, cm))
			delete(live, e)
			continue
		}
		e := em.CreateEntity()
		require.False(t, live[e], "id %v issued while active", e)
		live[e] = true
		order = append(order, e)
		CreateComponent[testHealth](cm, e)
	}

	assert.Equal(t, len(live), em.Count())
	active := em.Active()
	assert.Len(t, active, len(live))
	for _, e := range active {
		assert.True(t, live[e])
	}
	assert.Equal(t, len(live), StoreOf[testHealth](cm).Count())
}

func TestEntityManagerReset(t *testing.T) {
	em := NewEntityManager()
	e := em.CreateEntity()
	em.RemoveEntity(e, nil)
	em.Reset()

	assert.Equal(t, 0, em.Count())
	assert.Equal(t, 0, em.FreeCount())
	assert.Equal(t, core.Entity(1), em.CreateEntity())
}

func TestEntityManagerRejectsSentinels(t *testing.T) {
	em := NewEntityManager()
	assert.False(t, em.RemoveEntity(core.RemovedEntity, nil))
	assert.False(t, em.RemoveEntity(core.NullEntity, nil))
	assert.False(t, em.RemoveEntity(42, nil))
}
