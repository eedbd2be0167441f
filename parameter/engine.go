package parameter

// Simulation & Frame Timing
const (
	// DefaultTickRate is the simulation rate in Hz when not configured
	DefaultTickRate = 60

	// DefaultFrameRate is the render rate in Hz when not configured
	DefaultFrameRate = 30
)

// ECS Storage
const (
	// VectorBlock is the fixed capacity increment of container.Vector
	// Growth is linear, never geometric
	VectorBlock = 16

	// InitialEntityCapacity pre-sizes the entity registry
	InitialEntityCapacity = 64
)

// Skeletal Animation
const (
	// MaxJoints is the joint-matrix array length uploaded per instance
	// Must match the skinning uniform block size; unused slots hold identity
	MaxJoints = 18

	// JointInfluences is the number of joint indices/weights per vertex
	JointInfluences = 4

	// SingleFrameDuration is how long a one-keyframe clip holds its pose, seconds
	SingleFrameDuration = 1.0 / 30
)

// Vertex Layout
// Interleaved float32 attributes: position, normal, texcoord, joint indices, joint weights
const (
	VertexStride = 16

	VertexPosition = 0
	VertexNormal   = 3
	VertexUV       = 6
	VertexJoints   = 8
	VertexWeights  = 12
)

// MaxInstances bounds how many animated instances the viewer spawns
const MaxInstances = 256
