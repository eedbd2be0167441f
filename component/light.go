package component

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLight is an infinitely distant light
type DirectionalLight struct {
	// Direction points from the light toward the scene
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// Init points the light straight down
func (l *DirectionalLight) Init() {
	l.Direction = mgl32.Vec3{0, -1, 0}
	l.Color = mgl32.Vec3{1, 1, 1}
	l.Intensity = 1
}

// PointLight emits in every direction with linear falloff to Range
type PointLight struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
}

// Init sets a white light reaching 10 units
func (l *PointLight) Init() {
	l.Color = mgl32.Vec3{1, 1, 1}
	l.Intensity = 1
	l.Range = 10
}

// SpotLight is a point light restricted to a cone
// Angles are degrees; full intensity inside InnerDeg, none beyond OuterDeg
type SpotLight struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
	InnerDeg  float32
	OuterDeg  float32
}

// Init sets a downward 30/45 degree cone
func (l *SpotLight) Init() {
	l.Direction = mgl32.Vec3{0, -1, 0}
	l.Color = mgl32.Vec3{1, 1, 1}
	l.Intensity = 1
	l.Range = 10
	l.InnerDeg = 30
	l.OuterDeg = 45
}

// Attenuation returns the spot cone factor for a normalized direction toward the point
func (l *SpotLight) Attenuation(toPoint mgl32.Vec3) float32 {
	cosAngle := l.Direction.Normalize().Dot(toPoint)
	inner := cosDeg(l.InnerDeg)
	outer := cosDeg(l.OuterDeg)
	switch {
	case cosAngle >= inner:
		return 1
	case cosAngle <= outer:
		return 0
	}
	return (cosAngle - outer) / (inner - outer)
}

// Falloff returns linear distance attenuation in [0,1]
func Falloff(distance, lightRange float32) float32 {
	if lightRange <= 0 || distance >= lightRange {
		return 0
	}
	return 1 - distance/lightRange
}
