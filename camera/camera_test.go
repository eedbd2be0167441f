package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/marrow/parameter"
)

func TestTurnClampsPitchAndWrapsYaw(t *testing.T) {
	c := New(mgl32.Vec3{})

	c.Turn(0, 120)
	assert.Equal(t, float32(parameter.PitchLimit), c.Pitch)
	c.Turn(0, -500)
	assert.Equal(t, float32(-parameter.PitchLimit), c.Pitch)

	c.Turn(370, 0)
	assert.InDelta(t, 10, c.Yaw, 1e-4)
	c.Turn(-20, 0)
	assert.InDelta(t, 350, c.Yaw, 1e-4)
}

func TestOrientationMatchesAxisAngle(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Turn(90, 0)

	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, c.Orientation().ApproxEqualThreshold(want, 1e-5))

	// Turning left from -Z faces -X
	assert.True(t, c.Forward().ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5), "got %v", c.Forward())
}

func TestPitchLooksUp(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Turn(0, 45)
	f := c.Forward()
	assert.Greater(t, f.Y(), float32(0.7))
	assert.InDelta(t, 1, f.Len(), 1e-5)
}

func TestViewMovesWorldOpposite(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 5})
	v := c.View()

	// A point in front of the camera lands on the -Z axis in view space
	p := v.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{0, 0, -5}, 1e-5), "got %v", p)

	c.Turn(90, 0)
	p = c.View().Mul4x1(mgl32.Vec4{-3, 0, 5, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{0, 0, -3}, 1e-5), "got %v", p)
}

func TestMove(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Move(2, 1, 3)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{1, 3, -2}, 1e-5), "got %v", c.Position)
}

func TestProjectionDefaultsFieldOfView(t *testing.T) {
	c := &State{}
	want := mgl32.Perspective(mgl32.DegToRad(parameter.DefaultFieldOfView), 2, parameter.NearPlane, parameter.FarPlane)
	assert.True(t, c.Projection(2).ApproxEqual(want))
}
