package component

import "github.com/go-gl/mathgl/mgl32"

// Mesh references geometry held by the asset registry
// Removing the component does not unload the geometry
type Mesh struct {
	ID uint32
}

// Material describes surface shading
type Material struct {
	Color mgl32.Vec3

	// Glyph overrides the terminal shade ramp when non-zero
	Glyph rune

	// Shininess is the specular exponent; 0 disables specular
	Shininess float32
}

// Init sets a white, matte material
func (m *Material) Init() {
	m.Color = mgl32.Vec3{1, 1, 1}
}

// Skin marks an entity whose mesh is animated by its skeleton
type Skin struct {
	// Clip indexes the model's animation clips
	Clip int

	// Speed scales elapsed time before it reaches the cursor
	Speed float32

	Paused bool
}

// Init plays the first clip at normal speed
func (s *Skin) Init() {
	s.Speed = 1
}
