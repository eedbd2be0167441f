package render

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/parameter"
)

// ShadowMap is a square depth buffer rendered from one light
type ShadowMap struct {
	Size     int
	ViewProj mgl32.Mat4
	Depth    []float32

	// ortho maps store normalized depth, perspective maps store view distance
	ortho bool
	bias  float32
}

func newShadowMap(size int, viewProj mgl32.Mat4, ortho bool) *ShadowMap {
	m := &ShadowMap{
		Size:     size,
		ViewProj: viewProj,
		Depth:    make([]float32, size*size),
		ortho:    ortho,
		bias:     parameter.ShadowBias,
	}
	if ortho {
		m.bias /= directionalDepthRange
	}
	inf := float32(math.Inf(1))
	for i := range m.Depth {
		m.Depth[i] = inf
	}
	return m
}

func (m *ShadowMap) project(p mgl32.Vec3) screenVertex {
	if m.ortho {
		return projectOrtho(m.ViewProj, p, m.Size, m.Size)
	}
	return project(m.ViewProj, p, m.Size, m.Size)
}

// render rasterizes every triangle into the depth buffer, nearest wins
func (m *ShadowMap) render(ctx context.Context, geo []worldMesh) error {
	for i := range geo {
		if err := ctx.Err(); err != nil {
			return err
		}
		wm := &geo[i]
		for t := 0; t+2 < len(wm.indices); t += 3 {
			a := m.project(wm.positions[wm.indices[t]])
			b := m.project(wm.positions[wm.indices[t+1]])
			c := m.project(wm.positions[wm.indices[t+2]])
			if !a.ok || !b.ok || !c.ok {
				continue
			}
			fillTriangle(m.Size, m.Size, a.pos, b.pos, c.pos, func(x, y int, depth float32, _ mgl32.Vec3) {
				idx := y*m.Size + x
				if depth < m.Depth[idx] {
					m.Depth[idx] = depth
				}
			})
		}
	}
	return nil
}

// Visibility returns 0 when p is behind the stored occluder, 1 otherwise
// Points outside the light volume are lit
func (m *ShadowMap) Visibility(p mgl32.Vec3) float32 {
	if m == nil {
		return 1
	}
	sv := m.project(p)
	if !sv.ok {
		return 1
	}
	x, y := int(sv.pos.X()), int(sv.pos.Y())
	if sv.pos.X() < 0 || sv.pos.Y() < 0 || x >= m.Size || y >= m.Size {
		return 1
	}
	if sv.pos.Z()-m.bias > m.Depth[y*m.Size+x] {
		return 0
	}
	return 1
}

// ShadowSet holds the depth maps of every light in a frame, index-aligned with Frame lights
type ShadowSet struct {
	Directional []*ShadowMap
	Spot        []*ShadowMap
	Point       [][parameter.CubeFaces]*ShadowMap
}

// Count returns the number of depth maps
func (s *ShadowSet) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Directional) + len(s.Spot) + len(s.Point)*parameter.CubeFaces
}

// upFor picks an up vector not parallel to dir
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if abs32(dir.Normalize().Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// directionalDepthRange is the near-to-far depth of the orthographic light volume
const directionalDepthRange = 4 * parameter.DirectionalShadowExtent

func directionalViewProj(l *component.DirectionalLight) mgl32.Mat4 {
	const extent = parameter.DirectionalShadowExtent
	dir := l.Direction.Normalize()
	eye := dir.Mul(-directionalDepthRange / 2)
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, upFor(dir))
	proj := mgl32.Ortho(-extent, extent, -extent, extent, 0, directionalDepthRange)
	return proj.Mul4(view)
}

func spotViewProj(l *component.SpotLight) mgl32.Mat4 {
	dir := l.Direction.Normalize()
	view := mgl32.LookAtV(l.Position, l.Position.Add(dir), upFor(dir))
	fov := mgl32.DegToRad(min(2*l.OuterDeg, 170))
	proj := mgl32.Perspective(fov, 1, parameter.NearPlane, max(l.Range, 2*parameter.NearPlane))
	return proj.Mul4(view)
}

// cubeAxes are the point light face directions: +X, -X, +Y, -Y, +Z, -Z
var cubeAxes = [parameter.CubeFaces]mgl32.Vec3{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

func pointViewProj(l *component.PointLight, face int) mgl32.Mat4 {
	axis := cubeAxes[face]
	view := mgl32.LookAtV(l.Position, l.Position.Add(axis), upFor(axis))
	// Slightly wider than 90 degrees so face seams overlap
	proj := mgl32.Perspective(mgl32.DegToRad(91), 1, parameter.NearPlane, max(l.Range, 2*parameter.NearPlane))
	return proj.Mul4(view)
}

// cubeFace selects the point shadow face that sees direction d from the light
func cubeFace(d mgl32.Vec3) int {
	ax, ay, az := abs32(d.X()), abs32(d.Y()), abs32(d.Z())
	switch {
	case ax >= ay && ax >= az:
		if d.X() < 0 {
			return 1
		}
		return 0
	case ay >= az:
		if d.Y() < 0 {
			return 3
		}
		return 2
	}
	if d.Z() < 0 {
		return 5
	}
	return 4
}

// RenderShadowMaps skins the frame's instances from registry and renders every light's depth maps
func RenderShadowMaps(ctx context.Context, frame *Frame, registry *asset.Registry, size int, parallel bool) (*ShadowSet, error) {
	meshes := make(meshTable)
	for i := range frame.Items {
		id := frame.Items[i].Mesh
		if m := registry.Model(id); m != nil {
			meshes[id] = m.Mesh
		}
	}
	geo, err := skinFrame(frame, meshes)
	if err != nil {
		return nil, err
	}
	return renderShadowMaps(ctx, frame, geo, size, parallel)
}

// renderShadowMaps runs the directional, spot and point passes
// With parallel set the passes run concurrently, each writing only its own maps,
// and the call returns once every pass has finished
func renderShadowMaps(ctx context.Context, frame *Frame, geo []worldMesh, size int, parallel bool) (*ShadowSet, error) {
	set := &ShadowSet{
		Directional: make([]*ShadowMap, len(frame.Directional)),
		Spot:        make([]*ShadowMap, len(frame.Spots)),
		Point:       make([][parameter.CubeFaces]*ShadowMap, len(frame.Points)),
	}

	directional := func(ctx context.Context) error {
		for i := range frame.Directional {
			m := newShadowMap(size, directionalViewProj(&frame.Directional[i]), true)
			if err := m.render(ctx, geo); err != nil {
				return err
			}
			set.Directional[i] = m
		}
		return nil
	}
	spot := func(ctx context.Context) error {
		for i := range frame.Spots {
			m := newShadowMap(size, spotViewProj(&frame.Spots[i]), false)
			if err := m.render(ctx, geo); err != nil {
				return err
			}
			set.Spot[i] = m
		}
		return nil
	}
	point := func(ctx context.Context) error {
		for i := range frame.Points {
			for f := 0; f < parameter.CubeFaces; f++ {
				m := newShadowMap(size, pointViewProj(&frame.Points[i], f), false)
				if err := m.render(ctx, geo); err != nil {
					return err
				}
				set.Point[i][f] = m
			}
		}
		return nil
	}
	passes := []func(context.Context) error{directional, spot, point}

	if !parallel {
		for _, pass := range passes {
			if err := pass(ctx); err != nil {
				return nil, err
			}
		}
		return set, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pass := range passes {
		g.Go(func() error { return pass(gctx) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// Map accessors tolerate a nil set
func (s *ShadowSet) directional(i int) *ShadowMap {
	if s == nil || i >= len(s.Directional) {
		return nil
	}
	return s.Directional[i]
}

func (s *ShadowSet) spot(i int) *ShadowMap {
	if s == nil || i >= len(s.Spot) {
		return nil
	}
	return s.Spot[i]
}

func (s *ShadowSet) point(i int, toPoint mgl32.Vec3) *ShadowMap {
	if s == nil || i >= len(s.Point) {
		return nil
	}
	return s.Point[i][cubeFace(toPoint)]
}
