package parameter

// Camera
const (
	// DefaultFieldOfView is the vertical field of view in degrees
	DefaultFieldOfView = 60.0

	// PitchLimit keeps the view away from the poles, degrees
	PitchLimit = 89.0

	// NearPlane and FarPlane bound the perspective frustum
	NearPlane = 0.1
	FarPlane  = 100.0
)
