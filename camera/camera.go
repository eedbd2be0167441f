// Package camera holds the per-player view state
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/parameter"
)

// State is a first-person camera
// Angles are degrees; yaw 0 looks down -Z, positive yaw turns left, positive pitch looks up
type State struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	// FieldOfView is the vertical field of view in degrees
	FieldOfView float32
}

// New returns a camera at position looking down -Z
func New(position mgl32.Vec3) *State {
	return &State{Position: position, FieldOfView: parameter.DefaultFieldOfView}
}

// Turn adds to yaw and pitch; yaw wraps to [0, 360) and pitch clamps to the pitch limit
func (s *State) Turn(dYaw, dPitch float32) {
	s.Yaw = float32(math.Mod(float64(s.Yaw+dYaw), 360))
	if s.Yaw < 0 {
		s.Yaw += 360
	}
	s.Pitch = mgl32.Clamp(s.Pitch+dPitch, -parameter.PitchLimit, parameter.PitchLimit)
}

// Orientation composes yaw about world Y with pitch about the camera's X axis
func (s *State) Orientation() mgl32.Quat {
	return halfAngle(s.Yaw, mgl32.Vec3{0, 1, 0}).Mul(halfAngle(s.Pitch, mgl32.Vec3{1, 0, 0}))
}

// halfAngle builds the unit quaternion (w, x, y, z) for a rotation of deg about a unit axis
func halfAngle(deg float32, axis mgl32.Vec3) mgl32.Quat {
	half := float64(mgl32.DegToRad(deg)) / 2
	sin, cos := math.Sincos(half)
	return mgl32.Quat{W: float32(cos), V: axis.Mul(float32(sin))}
}

// Forward returns the unit view direction
func (s *State) Forward() mgl32.Vec3 {
	return s.Orientation().Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the unit direction to the camera's right
func (s *State) Right() mgl32.Vec3 {
	return s.Orientation().Rotate(mgl32.Vec3{1, 0, 0})
}

// Move translates along the camera's forward, right and world up axes
func (s *State) Move(forward, right, up float32) {
	s.Position = s.Position.
		Add(s.Forward().Mul(forward)).
		Add(s.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

// View returns the world-to-camera matrix
func (s *State) View() mgl32.Mat4 {
	p := s.Position
	return s.Orientation().Conjugate().Mat4().Mul4(mgl32.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// Projection returns the perspective matrix for the given width/height ratio
func (s *State) Projection(aspect float32) mgl32.Mat4 {
	fov := s.FieldOfView
	if fov <= 0 {
		fov = parameter.DefaultFieldOfView
	}
	return mgl32.Perspective(mgl32.DegToRad(fov), aspect, parameter.NearPlane, parameter.FarPlane)
}
