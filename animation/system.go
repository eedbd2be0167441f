package animation

import (
	"sync/atomic"
	"time"

	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/status"
)

// Library resolves the clips available to a mesh
type Library interface {
	Clip(mesh uint32, index int) *Clip
}

// System advances the animation cursor of every skinned entity once per tick
type System struct {
	library  Library
	priority int

	advanced *atomic.Int64
	missing  *atomic.Int64
}

// NewSystem creates the animation system
// Counters are registered in metrics; nil keeps them private
func NewSystem(library Library, priority int, metrics *status.Registry) *System {
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	return &System{
		library:  library,
		priority: priority,
		advanced: metrics.Counter("animation.advanced"),
		missing:  metrics.Counter("animation.missing_clip"),
	}
}

func (s *System) Priority() int { return s.priority }
func (s *System) Name() string  { return "animation" }

// Update advances cursors by dt scaled with each entity's skin speed
func (s *System) Update(world *engine.World, dt time.Duration) {
	cm := world.Components
	transforms := engine.StoreOf[component.Transform](cm)
	skins := engine.StoreOf[component.Skin](cm)
	meshes := engine.StoreOf[component.Mesh](cm)
	seconds := float32(dt.Seconds())

	for _, e := range engine.CollectLinked3[component.Transform, component.Skin, component.Mesh](cm) {
		skin := skins.Get(e)
		if skin.Paused {
			continue
		}
		clip := s.library.Clip(meshes.Get(e).ID, skin.Clip)
		if clip == nil {
			s.missing.Add(1)
			continue
		}
		Advance(&transforms.Get(e).Cursor, clip.FrameTimes, seconds*skin.Speed)
		s.advanced.Add(1)
	}
}
