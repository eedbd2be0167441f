package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/core"
	"github.com/lixenwraith/marrow/engine"
)

// DrawItem is one visible instance
type DrawItem struct {
	Entity   core.Entity
	Mesh     asset.MeshID
	Model    mgl32.Mat4
	Material component.Material

	// Pose is the joint matrix block; identity for rigid meshes
	Pose *animation.Pose
}

// Frame is a snapshot of everything a backend needs to draw
type Frame struct {
	Number         int64
	CameraPosition mgl32.Vec3

	Items       []DrawItem
	Directional []component.DirectionalLight
	Points      []component.PointLight
	Spots       []component.SpotLight

	// HUD is drawn as an overlay line by backends that support text
	HUD string
}

// FrameBuilder snapshots the world into a reusable Frame
type FrameBuilder struct {
	registry  *asset.Registry
	evaluator *animation.Evaluator
	poses     []animation.Pose
	frame     Frame
	skipped   int
}

// NewFrameBuilder creates a builder resolving meshes through registry
func NewFrameBuilder(registry *asset.Registry) *FrameBuilder {
	return &FrameBuilder{
		registry:  registry,
		evaluator: animation.NewEvaluator(),
	}
}

// Build collects the draw list under the world lock
// The returned frame is reused by the next Build call
func (fb *FrameBuilder) Build(w *engine.World) *Frame {
	w.RunSafe(func() {
		fb.collect(w)
	})
	return &fb.frame
}

// Skipped returns how many instances the last Build dropped for unknown meshes
func (fb *FrameBuilder) Skipped() int {
	return fb.skipped
}

func (fb *FrameBuilder) collect(w *engine.World) {
	cm := w.Components
	f := &fb.frame
	f.Items = f.Items[:0]
	f.Directional = append(f.Directional[:0], engine.ComponentContainer[component.DirectionalLight](cm)...)
	f.Points = append(f.Points[:0], engine.ComponentContainer[component.PointLight](cm)...)
	f.Spots = append(f.Spots[:0], engine.ComponentContainer[component.SpotLight](cm)...)
	if tr, ok := engine.GetResource[*engine.TimeResource](w.Resources); ok {
		f.Number = tr.FrameNumber
	}
	fb.skipped = 0

	entities := engine.CollectLinked3[component.Transform, component.Material, component.Mesh](cm)
	if cap(fb.poses) < len(entities) {
		fb.poses = make([]animation.Pose, len(entities))
	}
	poses := fb.poses[:len(entities)]

	transforms := engine.StoreOf[component.Transform](cm)
	materials := engine.StoreOf[component.Material](cm)
	meshes := engine.StoreOf[component.Mesh](cm)
	skins := engine.LookupStore[component.Skin](cm)

	for _, e := range entities {
		id := meshes.Get(e).ID
		model := fb.registry.Model(id)
		if model == nil {
			fb.skipped++
			continue
		}
		tr := transforms.Get(e)
		pose := &poses[len(f.Items)]

		switch {
		case model.Skeleton == nil:
			pose.SetIdentity()
		case skins != nil && skins.Has(e):
			clip := model.Clip(skins.Get(e).Clip)
			fb.evaluator.Evaluate(model.Skeleton, clip, int(tr.Cursor.CurrentFrame), pose)
		default:
			fb.evaluator.Evaluate(model.Skeleton, nil, 0, pose)
		}

		f.Items = append(f.Items, DrawItem{
			Entity:   e,
			Mesh:     id,
			Model:    tr.Matrix(),
			Material: *materials.Get(e),
			Pose:     pose,
		})
	}
}
