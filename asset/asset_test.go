package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/skeleton"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeOBJQuad(t *testing.T) {
	m, err := DecodeOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)

	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	v := m.Vertex(2)
	assert.Equal(t, []float32{1, 1, 0}, v[parameter.VertexPosition:parameter.VertexPosition+3])
	assert.Equal(t, []float32{1, 1}, v[parameter.VertexUV:parameter.VertexUV+2])
	assert.Equal(t, []float32{0, 0, 1}, v[parameter.VertexNormal:parameter.VertexNormal+3])
	assert.False(t, m.Skinned())
	assert.NoError(t, m.Validate())
}

func TestDecodeOBJNegativeIndicesAndDedupe(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 0 0 1
f 1 2 -1
`
	m, err := DecodeOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount(), "shared corners reuse vertices")
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 3}, m.Indices)

	// Normals computed when the file has none
	n := m.Vertex(2)[parameter.VertexNormal : parameter.VertexNormal+3]
	assert.InDelta(t, 1, n[2], 1e-6)
}

func TestDecodeOBJPentagonFan(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1.5 1 0
v 0.5 2 0
v -0.5 1 0
f 1 2 3 4 5
`
	m, err := DecodeOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, m.Indices)
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := map[string]string{
		"bad float":    "v 0 x 0\n",
		"short vertex": "v 0 0\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"two corners":  "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad corner":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1/1 2 3\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOBJ(strings.NewReader(src))
			assert.True(t, eris.Is(err, ErrOBJSyntax), "got %v", err)
		})
	}

	_, err := DecodeOBJ(strings.NewReader("v 0 0 0\n"))
	assert.True(t, eris.Is(err, ErrEmptyMesh))
}

func TestLoadOBJNamesModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quad", m.Name)
	assert.Nil(t, m.Skeleton)

	_, err = Load(filepath.Join(t.TempDir(), "quad.fbx"))
	assert.Error(t, err)
}

func TestTentacle(t *testing.T) {
	m, err := NewTentacle(4)
	require.NoError(t, err)

	assert.Equal(t, 5*tentacleSides, m.Mesh.VertexCount())
	assert.Len(t, m.Mesh.Indices, 4*tentacleSides*6)
	assert.True(t, m.Mesh.Skinned())
	require.NotNil(t, m.Skeleton)
	assert.Equal(t, 4, m.Skeleton.JointCount())
	require.Len(t, m.Clips, 1)
	assert.Equal(t, tentacleFrames, m.Clips[0].FrameCount())

	lo, hi := m.Mesh.Bounds()
	assert.InDelta(t, 0, lo.Y(), 1e-6)
	assert.InDelta(t, 4, hi.Y(), 1e-6)

	// Rest pose cancels the inverse bind matrices
	var pose animation.Pose
	ev := animation.NewEvaluator()
	ev.Evaluate(m.Skeleton, nil, 0, &pose)
	for j := 0; j < 4; j++ {
		assert.True(t, pose[j].ApproxEqualThreshold(mgl32.Ident4(), 1e-5), "joint %d", j)
	}

	// Animated tip leaves its rest position
	ev.Evaluate(m.Skeleton, m.Clips[0], 2, &pose)
	tip := animation.SkinPosition(&pose, m.Mesh.Position(4*tentacleSides), [4]float32{3}, [4]float32{1})
	assert.Greater(t, tip.Sub(m.Mesh.Position(4*tentacleSides)).Len(), float32(0.1))

	_, err = NewTentacle(0)
	assert.True(t, eris.Is(err, skeleton.ErrTooManyJoints))
	_, err = NewTentacle(parameter.MaxJoints + 1)
	assert.True(t, eris.Is(err, skeleton.ErrTooManyJoints))
}

func TestPlane(t *testing.T) {
	m := NewPlane(5)
	require.NoError(t, m.Validate())
	assert.False(t, m.Mesh.Skinned())

	before := append([]float32(nil), m.Mesh.Vertices...)
	m.Mesh.ComputeNormals()
	assert.InDeltaSlice(t, before, m.Mesh.Vertices, 1e-6, "winding faces +Y")

	lo, hi := m.Mesh.Bounds()
	assert.Equal(t, mgl32.Vec3{-5, 0, -5}, lo)
	assert.Equal(t, mgl32.Vec3{5, 0, 5}, hi)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	tentacle, err := NewTentacle(3)
	require.NoError(t, err)
	quad, err := DecodeOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)

	a, err := r.Add(tentacle)
	require.NoError(t, err)
	b, err := r.Add(&Model{Name: "quad", Mesh: quad})
	require.NoError(t, err)

	assert.Equal(t, MeshID(1), a)
	assert.Equal(t, MeshID(2), b)
	assert.Equal(t, 2, r.Len())
	assert.Nil(t, r.Model(0))
	assert.Nil(t, r.Model(3))
	assert.Same(t, tentacle, r.Model(a))

	id, ok := r.Lookup("quad")
	assert.True(t, ok)
	assert.Equal(t, b, id)

	assert.Equal(t, "sway", r.Clip(a, 0).Name)
	assert.Nil(t, r.Clip(a, 1))
	assert.Nil(t, r.Clip(b, 0))
	assert.Nil(t, r.Clip(99, 0))

	_, err = r.Add(&Model{Name: "quad", Mesh: quad})
	assert.Error(t, err, "duplicate name")
	_, err = r.Add(&Model{Name: "broken", Mesh: &Mesh{Vertices: make([]float32, 5)}})
	assert.True(t, eris.Is(err, ErrVertexData))

	var seen []MeshID
	r.Each(func(id MeshID, _ *Model) { seen = append(seen, id) })
	assert.Equal(t, []MeshID{1, 2}, seen)
}
