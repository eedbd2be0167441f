package asset

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/parameter"
)

var ErrOBJSyntax = eris.New("malformed OBJ")

// objCorner is one face corner as position/texcoord/normal indices, -1 when absent
type objCorner [3]int

// LoadOBJ reads a Wavefront OBJ file as a rigid model
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	mesh, err := DecodeOBJ(f)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", path)
	}
	return &Model{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Mesh: mesh,
	}, nil
}

// DecodeOBJ parses v, vt, vn and f statements; polygons are fan-triangulated
// and identical corners share one vertex
func DecodeOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []mgl32.Vec3
		texcoords []mgl32.Vec2
		normals   []mgl32.Vec3
	)
	mesh := &Mesh{}
	seen := make(map[objCorner]uint32)
	hasNormal := true

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, eris.Wrapf(err, "line %d", line)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, eris.Wrapf(err, "line %d", line)
			}
			texcoords = append(texcoords, mgl32.Vec2{v[0], v[1]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, eris.Wrapf(err, "line %d", line)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
		case "f":
			if len(fields) < 4 {
				return nil, eris.Wrapf(ErrOBJSyntax, "line %d: face has %d corners", line, len(fields)-1)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, eris.Wrapf(err, "line %d", line)
				}
				if c[2] < 0 {
					hasNormal = false
				}
				idx, ok := seen[c]
				if !ok {
					idx = uint32(mesh.VertexCount())
					seen[c] = idx
					mesh.Vertices = append(mesh.Vertices, objVertex(c, positions, texcoords, normals)...)
				}
				face = append(face, idx)
			}
			for k := 1; k+1 < len(face); k++ {
				mesh.Indices = append(mesh.Indices, face[0], face[k], face[k+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan OBJ")
	}
	if len(mesh.Indices) == 0 {
		return nil, ErrEmptyMesh
	}
	if !hasNormal {
		mesh.ComputeNormals()
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, eris.Wrapf(ErrOBJSyntax, "want %d values, have %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, eris.Wrapf(ErrOBJSyntax, "value %q", fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseCorner resolves "v", "v/vt", "v//vn" or "v/vt/vn" to zero-based indices
// Negative indices count back from the most recent element
func parseCorner(tok string, np, nt, nn int) (objCorner, error) {
	c := objCorner{-1, -1, -1}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, eris.Wrapf(ErrOBJSyntax, "corner %q", tok)
	}
	counts := [3]int{np, nt, nn}
	for k, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v == 0 {
			return c, eris.Wrapf(ErrOBJSyntax, "corner %q", tok)
		}
		if v < 0 {
			v += counts[k]
		} else {
			v--
		}
		if v < 0 || v >= counts[k] {
			return c, eris.Wrapf(ErrOBJSyntax, "corner %q out of range", tok)
		}
		c[k] = v
	}
	return c, nil
}

func objVertex(c objCorner, positions []mgl32.Vec3, texcoords []mgl32.Vec2, normals []mgl32.Vec3) []float32 {
	var v [parameter.VertexStride]float32
	copy(v[parameter.VertexPosition:], positions[c[0]][:])
	if c[1] >= 0 {
		copy(v[parameter.VertexUV:], texcoords[c[1]][:])
	}
	if c[2] >= 0 {
		copy(v[parameter.VertexNormal:], normals[c[2]][:])
	}
	return v[:]
}
