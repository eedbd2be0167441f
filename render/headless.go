package render

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/marrow/asset"
)

// Headless runs the full skinning and shadow pipeline without output
// Used for benchmarks, tests and servers without a terminal
type Headless struct {
	meshes     meshTable
	view       mgl32.Mat4
	projection mgl32.Mat4
	opts       Options
	logger     *zerolog.Logger
	stats      Stats

	// LastShadows holds the depth maps of the most recent Draw
	LastShadows *ShadowSet
}

// NewHeadless creates a headless renderer
func NewHeadless(opts Options) *Headless {
	opts.normalize()
	return &Headless{
		meshes:     make(meshTable),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		opts:       opts,
		logger:     opts.Logger,
	}
}

func (h *Headless) LoadMesh(id asset.MeshID, mesh *asset.Mesh) error {
	return h.meshes.load(id, mesh)
}

func (h *Headless) SetViewMatrix(view mgl32.Mat4)       { h.view = view }
func (h *Headless) SetProjection(projection mgl32.Mat4) { h.projection = projection }
func (h *Headless) Stats() Stats                        { return h.stats }
func (h *Headless) Close() error                        { return nil }

// Draw skins every instance and renders its shadow maps
func (h *Headless) Draw(ctx context.Context, frame *Frame) error {
	geo, err := skinFrame(frame, h.meshes)
	if err != nil {
		return err
	}
	shadows, err := renderShadowMaps(ctx, frame, geo, h.opts.ShadowMapSize, h.opts.ParallelShadows)
	if err != nil {
		return err
	}
	h.LastShadows = shadows

	h.stats.Frames++
	h.stats.Instances += int64(len(frame.Items))
	h.stats.Triangles += triangleCount(geo)
	h.stats.Shadows += int64(shadows.Count())

	h.logger.Trace().
		Int64("frame", frame.Number).
		Int("instances", len(frame.Items)).
		Int("shadow_maps", shadows.Count()).
		Msg("headless frame")
	return nil
}
