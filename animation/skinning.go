package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/parameter"
)

// SkinVertex blends the position and normal of one interleaved vertex by its joint weights
// Vertices with no weight are returned unchanged
func SkinVertex(pose *Pose, vertex []float32) (position, normal mgl32.Vec3) {
	p := vertex[parameter.VertexPosition:]
	nr := vertex[parameter.VertexNormal:]
	position = mgl32.Vec3{p[0], p[1], p[2]}
	normal = mgl32.Vec3{nr[0], nr[1], nr[2]}

	joints := vertex[parameter.VertexJoints : parameter.VertexJoints+parameter.JointInfluences]
	weights := vertex[parameter.VertexWeights : parameter.VertexWeights+parameter.JointInfluences]

	var m mgl32.Mat4
	total := float32(0)
	for i, w := range weights {
		if w == 0 {
			continue
		}
		j := int(joints[i])
		if j < 0 || j >= len(pose) {
			continue
		}
		m = m.Add(pose[j].Mul(w))
		total += w
	}
	if total == 0 {
		return position, normal
	}
	if total != 1 {
		m = m.Mul(1 / total)
	}

	position = m.Mul4x1(position.Vec4(1)).Vec3()
	normal = m.Mul4x1(normal.Vec4(0)).Vec3()
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	}
	return position, normal
}

// SkinPosition applies one joint blend to a position
func SkinPosition(pose *Pose, position mgl32.Vec3, joints, weights [parameter.JointInfluences]float32) mgl32.Vec3 {
	var v [parameter.VertexStride]float32
	copy(v[parameter.VertexPosition:], position[:])
	copy(v[parameter.VertexJoints:], joints[:])
	copy(v[parameter.VertexWeights:], weights[:])
	p, _ := SkinVertex(pose, v[:])
	return p
}
