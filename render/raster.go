package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// screenVertex is a projected vertex: pixel x, y and a depth value
type screenVertex struct {
	pos mgl32.Vec3
	ok  bool
}

// project maps p through viewProj into a width x height viewport
// Points behind the near plane are rejected; depth is the clip w (view distance)
func project(viewProj mgl32.Mat4, p mgl32.Vec3, width, height int) screenVertex {
	c := viewProj.Mul4x1(p.Vec4(1))
	w := c.W()
	if w <= 0 {
		return screenVertex{}
	}
	return screenVertex{
		pos: mgl32.Vec3{
			(c.X()/w*0.5 + 0.5) * float32(width),
			(0.5 - c.Y()/w*0.5) * float32(height),
			w,
		},
		ok: true,
	}
}

// projectOrtho is project for orthographic matrices, where clip w is always 1
// Depth is the NDC z remapped to [0,1]
func projectOrtho(viewProj mgl32.Mat4, p mgl32.Vec3, width, height int) screenVertex {
	c := viewProj.Mul4x1(p.Vec4(1))
	return screenVertex{
		pos: mgl32.Vec3{
			(c.X()*0.5 + 0.5) * float32(width),
			(0.5 - c.Y()*0.5) * float32(height),
			c.Z()*0.5 + 0.5,
		},
		ok: true,
	}
}

func edge(a, b mgl32.Vec3, x, y float32) float32 {
	return (b.X()-a.X())*(y-a.Y()) - (b.Y()-a.Y())*(x-a.X())
}

// fillTriangle calls plot for every pixel center inside a, b, c with the
// interpolated depth and barycentric weights; both windings are filled
func fillTriangle(width, height int, a, b, c mgl32.Vec3, plot func(x, y int, depth float32, bary mgl32.Vec3)) {
	area := edge(a, b, c.X(), c.Y())
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}

	minX := max(int(math.Floor(float64(min(a.X(), b.X(), c.X())))), 0)
	maxX := min(int(math.Ceil(float64(max(a.X(), b.X(), c.X())))), width-1)
	minY := max(int(math.Floor(float64(min(a.Y(), b.Y(), c.Y())))), 0)
	maxY := min(int(math.Ceil(float64(max(a.Y(), b.Y(), c.Y())))), height-1)

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py) * inv
			w1 := edge(c, a, px, py) * inv
			w2 := edge(a, b, px, py) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			depth := w0*a.Z() + w1*b.Z() + w2*c.Z()
			plot(x, y, depth, mgl32.Vec3{w0, w1, w2})
		}
	}
}

// interpolate blends three attributes by barycentric weights
func interpolate(a, b, c mgl32.Vec3, bary mgl32.Vec3) mgl32.Vec3 {
	return a.Mul(bary[0]).Add(b.Mul(bary[1])).Add(c.Mul(bary[2]))
}
