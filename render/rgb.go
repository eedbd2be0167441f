package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// RGB stores explicit 8-bit color channels, decoupled from tcell
type RGB struct {
	R, G, B uint8
}

var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}

	// RgbBackground is the clear color of the terminal view
	RgbBackground = RGB{26, 27, 38}

	// RgbHUD is the status line foreground
	RgbHUD = RGB{192, 202, 245}
)

// clamp converts float to uint8 efficiently
func clamp(v float32) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// FromVec converts a linear [0,1] color, saturating out-of-range channels
func FromVec(c mgl32.Vec3) RGB {
	return RGB{
		R: clamp(c[0]*255 + 0.5),
		G: clamp(c[1]*255 + 0.5),
		B: clamp(c[2]*255 + 0.5),
	}
}

// Blend mixes src over c by alpha
// If alpha is 1.0 or 0.0, we return early to save math
func Blend(c, src RGB, alpha float32) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}
	inv := 1.0 - alpha
	return RGB{
		R: uint8(float32(src.R)*alpha + float32(c.R)*inv),
		G: uint8(float32(src.G)*alpha + float32(c.G)*inv),
		B: uint8(float32(src.B)*alpha + float32(c.B)*inv),
	}
}

// Add performs additive blending with clamping
func Add(c, src RGB) RGB {
	return RGB{
		R: clamp(float32(c.R) + float32(src.R)),
		G: clamp(float32(c.G) + float32(src.G)),
		B: clamp(float32(c.B) + float32(src.B)),
	}
}

// Scale multiplies every channel by f
func Scale(c RGB, f float32) RGB {
	return RGB{
		R: clamp(float32(c.R) * f),
		G: clamp(float32(c.G) * f),
		B: clamp(float32(c.B) * f),
	}
}

// ToTcell converts RGB to tcell.Color
func (c RGB) ToTcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
