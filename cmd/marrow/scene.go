package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/camera"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/config"
	"github.com/lixenwraith/marrow/engine"
)

const (
	tentacleSegments = 6
	groundHalf       = 12
	instanceSpacing  = 3
	instanceHeight   = 3
	headlessAspect   = 16.0 / 9
)

var palette = []mgl32.Vec3{
	{0.95, 0.45, 0.40},
	{0.45, 0.80, 0.55},
	{0.45, 0.60, 0.95},
	{0.95, 0.85, 0.45},
}

// spawnScene places the ground, a grid of model instances and the lights
// Returns the camera framing the grid
func spawnScene(w *engine.World, modelID, groundID asset.MeshID, model *asset.Model, cfg config.Config) *camera.State {
	eb := w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Material{Color: mgl32.Vec3{0.55, 0.55, 0.6}})
	engine.With(eb, component.Mesh{ID: groundID})
	eb.Build()

	scale, lift := fitModel(model.Mesh)
	animated := model.Skeleton != nil && len(model.Clips) > 0
	cols := int(math.Ceil(math.Sqrt(float64(cfg.Instances))))
	rows := (cfg.Instances + cols - 1) / cols

	for i := 0; i < cfg.Instances; i++ {
		col, row := i%cols, i/cols
		pos := mgl32.Vec3{
			(float32(col) - float32(cols-1)/2) * instanceSpacing,
			lift,
			-float32(row) * instanceSpacing,
		}
		tr := component.NewTransform(pos)
		tr.Scale = mgl32.Vec3{scale, scale, scale}

		eb := w.NewEntity()
		engine.With(eb, tr)
		engine.With(eb, component.Material{Color: palette[i%len(palette)], Shininess: 16})
		engine.With(eb, component.Mesh{ID: modelID})
		if animated {
			// Staggered speeds keep instances out of phase
			engine.With(eb, component.Skin{Speed: 1 + 0.15*float32(i%4)})
		}
		eb.Build()
	}

	engine.With(w.NewEntity(), component.DirectionalLight{
		Direction: mgl32.Vec3{-0.4, -1, -0.3},
		Color:     mgl32.Vec3{1, 0.95, 0.9},
		Intensity: 0.7,
	}).Build()
	engine.With(w.NewEntity(), component.PointLight{
		Position:  mgl32.Vec3{-4, 3, 3},
		Color:     mgl32.Vec3{1, 0.7, 0.4},
		Intensity: 0.6,
		Range:     12,
	}).Build()
	spot := component.SpotLight{
		Position:  mgl32.Vec3{0, 8, 2},
		Direction: mgl32.Vec3{0, -1, -0.2},
		Color:     mgl32.Vec3{0.6, 0.7, 1},
		Intensity: 0.8,
		Range:     16,
		InnerDeg:  20,
		OuterDeg:  35,
	}
	engine.With(w.NewEntity(), spot).Build()

	cam := camera.New(mgl32.Vec3{0, 4, 8 + float32(rows-1)*instanceSpacing/2})
	cam.FieldOfView = float32(cfg.FieldOfView)
	cam.Turn(0, -15)
	return cam
}

// fitModel returns the uniform scale giving the mesh instanceHeight
// and the lift resting its lowest point on the ground
func fitModel(m *asset.Mesh) (scale, lift float32) {
	lo, hi := m.Bounds()
	height := hi.Y() - lo.Y()
	if height <= 0 {
		return 1, -lo.Y()
	}
	scale = instanceHeight / height
	return scale, -lo.Y() * scale
}
