package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/asset"
)

var ErrMeshNotLoaded = eris.New("mesh not loaded into renderer")

// meshTable is the geometry a backend has been given through LoadMesh
type meshTable map[asset.MeshID]*asset.Mesh

func (mt meshTable) load(id asset.MeshID, mesh *asset.Mesh) error {
	if mesh == nil {
		return eris.Errorf("mesh %d is nil", id)
	}
	if err := mesh.Validate(); err != nil {
		return eris.Wrapf(err, "mesh %d", id)
	}
	mt[id] = mesh
	return nil
}

// worldMesh is one instance skinned and transformed into world space
type worldMesh struct {
	item      *DrawItem
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	indices   []uint32
}

// skinFrame CPU-skins every item once so all passes share the result
func skinFrame(frame *Frame, meshes meshTable) ([]worldMesh, error) {
	out := make([]worldMesh, 0, len(frame.Items))
	for i := range frame.Items {
		item := &frame.Items[i]
		mesh, ok := meshes[item.Mesh]
		if !ok {
			return nil, eris.Wrapf(ErrMeshNotLoaded, "mesh %d", item.Mesh)
		}

		pose := item.Pose
		if pose == nil {
			pose = animation.IdentityPose()
		}
		normalMat := item.Model.Mat3().Inv().Transpose()

		n := mesh.VertexCount()
		wm := worldMesh{
			item:      item,
			positions: make([]mgl32.Vec3, n),
			normals:   make([]mgl32.Vec3, n),
			indices:   mesh.Indices,
		}
		for v := 0; v < n; v++ {
			p, nr := animation.SkinVertex(pose, mesh.Vertex(v))
			wm.positions[v] = item.Model.Mul4x1(p.Vec4(1)).Vec3()
			nr = normalMat.Mul3x1(nr)
			if l := nr.Len(); l > 0 {
				nr = nr.Mul(1 / l)
			}
			wm.normals[v] = nr
		}
		out = append(out, wm)
	}
	return out, nil
}

// triangleCount sums the triangles of all instances
func triangleCount(geo []worldMesh) int64 {
	var n int64
	for i := range geo {
		n += int64(len(geo[i].indices) / 3)
	}
	return n
}
