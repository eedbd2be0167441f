// Package component holds the plain data structs attached to entities
package component

import "github.com/go-gl/mathgl/mgl32"

// AnimationCursor tracks playback of an entity's skeletal clip
// Mutated once per simulation tick by the animation system
type AnimationCursor struct {
	// FrameAccumulator is the time elapsed since the clip last wrapped, seconds
	FrameAccumulator float32

	// CurrentFrame indexes the clip's frame-time table
	CurrentFrame uint32
}

// Reset rewinds the cursor to the first frame
func (c *AnimationCursor) Reset() {
	c.FrameAccumulator = 0
	c.CurrentFrame = 0
}

// Transform places an entity in the world
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Cursor AnimationCursor
}

// Init sets the identity transform
func (t *Transform) Init() {
	t.Rotation = mgl32.QuatIdent()
	t.Scale = mgl32.Vec3{1, 1, 1}
}

// NewTransform returns an identity transform at position
func NewTransform(position mgl32.Vec3) Transform {
	t := Transform{Position: position}
	t.Init()
	return t
}

// Matrix returns the model matrix T·R·S
func (t *Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
