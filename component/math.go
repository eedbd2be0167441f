package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(mgl32.DegToRad(deg))))
}
