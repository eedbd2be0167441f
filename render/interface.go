// Package render turns the world's draw list into frames
package render

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/asset"
)

// Renderer is implemented by every backend
type Renderer interface {
	// LoadMesh makes geometry available to later Draw calls under id
	LoadMesh(id asset.MeshID, mesh *asset.Mesh) error
	SetViewMatrix(view mgl32.Mat4)
	SetProjection(projection mgl32.Mat4)
	// Draw renders one frame; shadow passes honor ctx cancellation
	Draw(ctx context.Context, frame *Frame) error
	// Stats reports counters accumulated since creation
	Stats() Stats
	Close() error
}

// Stats are per-backend counters
type Stats struct {
	Frames    int64
	Instances int64
	Triangles int64
	Shadows   int64
}
