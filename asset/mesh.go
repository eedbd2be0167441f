// Package asset loads geometry, skeletons and clips into renderer-neutral form
package asset

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/skeleton"
)

var (
	ErrEmptyMesh   = eris.New("mesh has no triangles")
	ErrVertexData  = eris.New("vertex buffer is not a whole number of vertices")
	ErrIndexRange  = eris.New("index references a missing vertex")
	ErrTriangleSet = eris.New("index count is not a multiple of three")
)

// Mesh is an interleaved vertex buffer with a triangle index list
// Each vertex is parameter.VertexStride floats: position, normal, uv, joints, weights
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / parameter.VertexStride
}

// Vertex returns the attributes of vertex i, aliasing the buffer
func (m *Mesh) Vertex(i int) []float32 {
	off := i * parameter.VertexStride
	return m.Vertices[off : off+parameter.VertexStride]
}

// Position returns the position of vertex i
func (m *Mesh) Position(i int) mgl32.Vec3 {
	v := m.Vertex(i)
	return mgl32.Vec3{v[parameter.VertexPosition], v[parameter.VertexPosition+1], v[parameter.VertexPosition+2]}
}

// Skinned reports whether any vertex carries joint weight
func (m *Mesh) Skinned() bool {
	for i := 0; i < m.VertexCount(); i++ {
		w := m.Vertex(i)[parameter.VertexWeights:]
		if w[0]+w[1]+w[2]+w[3] > 0 {
			return true
		}
	}
	return false
}

// Bounds returns the axis-aligned box around all vertices
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if m.VertexCount() == 0 {
		return lo, hi
	}
	lo, hi = m.Position(0), m.Position(0)
	for i := 1; i < m.VertexCount(); i++ {
		p := m.Position(i)
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Validate checks buffer shape and index range
func (m *Mesh) Validate() error {
	if len(m.Vertices)%parameter.VertexStride != 0 {
		return eris.Wrapf(ErrVertexData, "%d floats, stride %d", len(m.Vertices), parameter.VertexStride)
	}
	if len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return eris.Wrapf(ErrTriangleSet, "%d indices", len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return eris.Wrapf(ErrIndexRange, "index %d is %d of %d vertices", i, idx, n)
		}
	}
	return nil
}

// ComputeNormals replaces every normal with the area-weighted average of adjacent faces
func (m *Mesh) ComputeNormals() {
	n := m.VertexCount()
	acc := make([]mgl32.Vec3, n)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		pa, pb, pc := m.Position(int(a)), m.Position(int(b)), m.Position(int(c))
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}
	for i := range acc {
		nr := acc[i]
		if l := nr.Len(); l > 0 {
			nr = nr.Mul(1 / l)
		}
		copy(m.Vertex(i)[parameter.VertexNormal:parameter.VertexNormal+3], nr[:])
	}
}

// Model bundles a mesh with its optional skeleton and clips
type Model struct {
	Name     string
	Mesh     *Mesh
	Skeleton *skeleton.Skeleton
	Clips    []*animation.Clip
}

// Clip returns clip i, or nil when out of range
func (m *Model) Clip(i int) *animation.Clip {
	if i < 0 || i >= len(m.Clips) {
		return nil
	}
	return m.Clips[i]
}

// Validate checks the mesh and every clip against the skeleton
func (m *Model) Validate() error {
	if m.Mesh == nil {
		return eris.Wrapf(ErrEmptyMesh, "model %q", m.Name)
	}
	if err := m.Mesh.Validate(); err != nil {
		return eris.Wrapf(err, "model %q", m.Name)
	}
	if m.Skeleton == nil {
		if len(m.Clips) > 0 {
			return eris.Errorf("model %q has clips but no skeleton", m.Name)
		}
		return nil
	}
	joints := m.Skeleton.JointCount()
	for i := 0; i < m.Mesh.VertexCount(); i++ {
		v := m.Mesh.Vertex(i)
		for k := 0; k < parameter.JointInfluences; k++ {
			if v[parameter.VertexWeights+k] > 0 && int(v[parameter.VertexJoints+k]) >= joints {
				return eris.Errorf("model %q vertex %d weights joint %d of %d", m.Name, i, int(v[parameter.VertexJoints+k]), joints)
			}
		}
	}
	for _, c := range m.Clips {
		if err := c.Validate(joints); err != nil {
			return eris.Wrapf(err, "model %q", m.Name)
		}
	}
	return nil
}
