package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/parameter"
)

// Pose is the fixed-size joint matrix block uploaded per instance
type Pose [parameter.MaxJoints]mgl32.Mat4

var identityPose = func() Pose {
	var p Pose
	p.SetIdentity()
	return p
}()

// IdentityPose returns a pose that leaves every vertex in place
func IdentityPose() *Pose {
	p := identityPose
	return &p
}

// SetIdentity resets every slot to identity
func (p *Pose) SetIdentity() {
	for i := range p {
		p[i] = mgl32.Ident4()
	}
}
