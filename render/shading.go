package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/parameter"
)

// shader evaluates lighting for surface points of one frame
type shader struct {
	frame   *Frame
	shadows *ShadowSet
}

// light returns the incoming light at pos and its scalar brightness
func (s *shader) light(pos, normal mgl32.Vec3, mat *component.Material) (mgl32.Vec3, float32) {
	ambient := float32(parameter.AmbientLight)
	total := mgl32.Vec3{ambient, ambient, ambient}
	toEye := s.frame.CameraPosition.Sub(pos)
	if l := toEye.Len(); l > 0 {
		toEye = toEye.Mul(1 / l)
	}

	contribute := func(toLight, color mgl32.Vec3, strength float32) {
		ndl := normal.Dot(toLight)
		if ndl <= 0 || strength <= 0 {
			return
		}
		amount := ndl
		if mat.Shininess > 0 {
			h := toLight.Add(toEye)
			if l := h.Len(); l > 0 {
				amount += float32(math.Pow(float64(max(normal.Dot(h.Mul(1/l)), 0)), float64(mat.Shininess)))
			}
		}
		total = total.Add(color.Mul(strength * amount))
	}

	for i := range s.frame.Directional {
		l := &s.frame.Directional[i]
		toLight := l.Direction.Mul(-1).Normalize()
		contribute(toLight, l.Color, l.Intensity*s.shadows.directional(i).Visibility(pos))
	}
	for i := range s.frame.Points {
		l := &s.frame.Points[i]
		d := l.Position.Sub(pos)
		dist := d.Len()
		if dist == 0 {
			continue
		}
		toLight := d.Mul(1 / dist)
		fall := component.Falloff(dist, l.Range)
		if fall == 0 {
			continue
		}
		vis := s.shadows.point(i, d.Mul(-1)).Visibility(pos)
		contribute(toLight, l.Color, l.Intensity*fall*vis)
	}
	for i := range s.frame.Spots {
		l := &s.frame.Spots[i]
		d := l.Position.Sub(pos)
		dist := d.Len()
		if dist == 0 {
			continue
		}
		toLight := d.Mul(1 / dist)
		cone := l.Attenuation(toLight.Mul(-1))
		fall := component.Falloff(dist, l.Range)
		if cone == 0 || fall == 0 {
			continue
		}
		vis := s.shadows.spot(i).Visibility(pos)
		contribute(toLight, l.Color, l.Intensity*cone*fall*vis)
	}

	brightness := max(total[0], total[1], total[2])
	return total, min(brightness, 1)
}

// surface returns the lit color and glyph for a surface point
func (s *shader) surface(pos, normal mgl32.Vec3, mat *component.Material) (RGB, rune) {
	light, brightness := s.light(pos, normal, mat)
	color := mgl32.Vec3{mat.Color[0] * light[0], mat.Color[1] * light[1], mat.Color[2] * light[2]}

	glyph := mat.Glyph
	if glyph == 0 {
		glyph = shadeGlyph(brightness)
	}
	return FromVec(color), glyph
}

var shadeRamp = []rune(parameter.ShadeRamp)

// shadeGlyph maps brightness in [0,1] onto the shade ramp, skipping the blank entry
func shadeGlyph(brightness float32) rune {
	last := len(shadeRamp) - 1
	idx := int(brightness*float32(last) + 0.5)
	return shadeRamp[min(max(idx, 1), last)]
}
