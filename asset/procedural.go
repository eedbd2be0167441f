package asset

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/skeleton"
)

const (
	tentacleSides  = 8
	tentacleRadius = 0.25
	tentacleFrames = 8
	tentacleFrame  = 0.125
	tentacleSwing  = 20.0
)

// NewTentacle builds a skinned cylinder one unit tall per segment,
// driven by a joint chain with a looping sway clip
func NewTentacle(segments int) (*Model, error) {
	if segments < 1 || segments > parameter.MaxJoints {
		return nil, eris.Wrapf(skeleton.ErrTooManyJoints, "tentacle needs 1..%d segments, got %d", parameter.MaxJoints, segments)
	}

	mesh := &Mesh{}
	for ring := 0; ring <= segments; ring++ {
		j0, j1, w0, w1 := ring, 0, float32(1), float32(0)
		switch {
		case ring == segments:
			j0 = segments - 1
		case ring > 0:
			j0, j1, w0, w1 = ring-1, ring, 0.5, 0.5
		}
		for s := 0; s < tentacleSides; s++ {
			a := 2 * math.Pi * float64(s) / tentacleSides
			sin, cos := math.Sincos(a)
			var v [parameter.VertexStride]float32
			copy(v[parameter.VertexPosition:], []float32{tentacleRadius * float32(cos), float32(ring), tentacleRadius * float32(sin)})
			copy(v[parameter.VertexNormal:], []float32{float32(cos), 0, float32(sin)})
			copy(v[parameter.VertexUV:], []float32{float32(s) / tentacleSides, float32(ring) / float32(segments)})
			copy(v[parameter.VertexJoints:], []float32{float32(j0), float32(j1)})
			copy(v[parameter.VertexWeights:], []float32{w0, w1})
			mesh.Vertices = append(mesh.Vertices, v[:]...)
		}
	}
	for ring := 0; ring < segments; ring++ {
		for s := 0; s < tentacleSides; s++ {
			a := uint32(ring*tentacleSides + s)
			b := uint32(ring*tentacleSides + (s+1)%tentacleSides)
			c := a + tentacleSides
			d := b + tentacleSides
			mesh.Indices = append(mesh.Indices, a, c, b, b, c, d)
		}
	}

	children := make([][]int, segments)
	joints := make([]int, segments)
	ibm := make([]mgl32.Mat4, segments)
	rest := make([]skeleton.TRS, segments)
	for j := 0; j < segments; j++ {
		joints[j] = j
		if j+1 < segments {
			children[j] = []int{j + 1}
		}
		ibm[j] = mgl32.Translate3D(0, -float32(j), 0)
		rest[j] = skeleton.IdentityTRS()
		if j > 0 {
			rest[j].Translation = mgl32.Vec3{0, 1, 0}
		}
	}
	h, err := skeleton.Resolve(children, joints)
	if err != nil {
		return nil, err
	}
	sk, err := skeleton.New(h, ibm, rest)
	if err != nil {
		return nil, err
	}

	clip := &animation.Clip{
		Name:       "sway",
		FrameTimes: make([]float32, tentacleFrames),
		Joints:     make([]animation.JointTracks, segments),
	}
	for f := 0; f < tentacleFrames; f++ {
		clip.FrameTimes[f] = float32(f+1) * tentacleFrame
	}
	for j := 1; j < segments; j++ {
		track := make([]mgl32.Quat, tentacleFrames)
		for f := range track {
			phase := 2*math.Pi*float64(f)/tentacleFrames + float64(j)*0.6
			deg := tentacleSwing * float32(math.Sin(phase))
			track[f] = mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 0, 1})
		}
		clip.Joints[j].Rotation = track
	}

	m := &Model{Name: "tentacle", Mesh: mesh, Skeleton: sk, Clips: []*animation.Clip{clip}}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewPlane builds a rigid square in the XZ plane facing +Y
func NewPlane(half float32) *Model {
	mesh := &Mesh{Indices: []uint32{0, 2, 1, 0, 3, 2}}
	for _, c := range [][2]float32{{-half, -half}, {half, -half}, {half, half}, {-half, half}} {
		var v [parameter.VertexStride]float32
		copy(v[parameter.VertexPosition:], []float32{c[0], 0, c[1]})
		copy(v[parameter.VertexNormal:], []float32{0, 1, 0})
		copy(v[parameter.VertexUV:], []float32{c[0]/(2*half) + 0.5, c[1]/(2*half) + 0.5})
		mesh.Vertices = append(mesh.Vertices, v[:]...)
	}
	return &Model{Name: "plane", Mesh: mesh}
}

// Load picks a decoder by file extension
func Load(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	}
	return nil, eris.Errorf("unsupported model format %q", path)
}
