package parameter

// Shadow Mapping
const (
	// DefaultShadowMapSize is the edge length of each depth map in texels
	DefaultShadowMapSize = 64

	// MinShadowMapSize and MaxShadowMapSize bound the configured size
	MinShadowMapSize = 8
	MaxShadowMapSize = 1024

	// ShadowBias is subtracted from receiver depth before the occlusion test
	ShadowBias = 0.02

	// CubeFaces is the number of depth maps rendered per point light
	CubeFaces = 6

	// DirectionalShadowExtent is the half-width of the orthographic light volume
	DirectionalShadowExtent = 10.0
)

// Terminal Shading
const (
	// ShadeRamp maps light intensity to glyphs, darkest first
	ShadeRamp = " .:-=+*#%@"

	// CellAspect compensates for terminal cells being ~2x taller than wide
	CellAspect = 0.5

	// AmbientLight is the minimum intensity of a lit surface
	AmbientLight = 0.15
)
