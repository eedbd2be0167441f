package render

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/parameter"
)

// Terminal rasterizes frames into tcell cells, one shaded glyph per cell
type Terminal struct {
	screen tcell.Screen
	owned  bool
	raster *Raster

	meshes     meshTable
	view       mgl32.Mat4
	projection mgl32.Mat4
	opts       Options
	logger     *zerolog.Logger
	stats      Stats
}

// NewTerminal creates a terminal renderer on opts.Screen, or on a new screen it owns
func NewTerminal(opts Options) (*Terminal, error) {
	opts.normalize()
	screen := opts.Screen
	owned := false
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, eris.Wrap(err, "create screen")
		}
		if err := screen.Init(); err != nil {
			return nil, eris.Wrap(err, "init screen")
		}
		owned = true
	}

	w, h := screen.Size()
	return &Terminal{
		screen:     screen,
		owned:      owned,
		raster:     NewRaster(w, h),
		meshes:     make(meshTable),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		opts:       opts,
		logger:     opts.Logger,
	}, nil
}

// TerminalAspect returns the projection aspect ratio of a cols x rows cell grid
func TerminalAspect(cols, rows int) float32 {
	if rows <= 0 {
		return 1
	}
	return float32(cols) * parameter.CellAspect / float32(rows)
}

// Screen returns the underlying tcell screen
func (t *Terminal) Screen() tcell.Screen { return t.screen }

// Aspect returns the projection aspect ratio of the current screen
func (t *Terminal) Aspect() float32 {
	return TerminalAspect(t.screen.Size())
}

func (t *Terminal) LoadMesh(id asset.MeshID, mesh *asset.Mesh) error {
	return t.meshes.load(id, mesh)
}

func (t *Terminal) SetViewMatrix(view mgl32.Mat4)       { t.view = view }
func (t *Terminal) SetProjection(projection mgl32.Mat4) { t.projection = projection }
func (t *Terminal) Stats() Stats                         { return t.stats }

// Close releases the screen if the renderer created it
func (t *Terminal) Close() error {
	if t.owned {
		t.screen.Fini()
	}
	return nil
}

// Draw renders shadow maps, rasterizes every instance and flushes to the screen
func (t *Terminal) Draw(ctx context.Context, frame *Frame) error {
	w, h := t.screen.Size()
	if rw, rh := t.raster.Size(); rw != w || rh != h {
		t.raster.Resize(w, h)
		t.logger.Debug().Int("width", w).Int("height", h).Msg("terminal resized")
	} else {
		t.raster.Clear()
	}

	geo, err := skinFrame(frame, t.meshes)
	if err != nil {
		return err
	}
	shadows, err := renderShadowMaps(ctx, frame, geo, t.opts.ShadowMapSize, t.opts.ParallelShadows)
	if err != nil {
		return err
	}

	sh := shader{frame: frame, shadows: shadows}
	viewProj := t.projection.Mul4(t.view)
	var screenPos []screenVertex

	for i := range geo {
		wm := &geo[i]
		mat := &wm.item.Material

		if cap(screenPos) < len(wm.positions) {
			screenPos = make([]screenVertex, len(wm.positions))
		}
		screenPos = screenPos[:len(wm.positions)]
		for v, p := range wm.positions {
			screenPos[v] = project(viewProj, p, w, h)
		}

		for k := 0; k+2 < len(wm.indices); k += 3 {
			ia, ib, ic := wm.indices[k], wm.indices[k+1], wm.indices[k+2]
			a, b, c := screenPos[ia], screenPos[ib], screenPos[ic]
			if !a.ok || !b.ok || !c.ok {
				continue
			}
			fillTriangle(w, h, a.pos, b.pos, c.pos, func(x, y int, depth float32, bary mgl32.Vec3) {
				if depth >= t.raster.Get(x, y).Depth {
					return
				}
				pos := interpolate(wm.positions[ia], wm.positions[ib], wm.positions[ic], bary)
				nr := interpolate(wm.normals[ia], wm.normals[ib], wm.normals[ic], bary).Normalize()
				fg, glyph := sh.surface(pos, nr, mat)
				t.raster.Plot(x, y, depth, glyph, fg)
			})
		}
	}

	if frame.HUD != "" && h > 0 {
		t.raster.Text(0, h-1, runewidth.Truncate(frame.HUD, w, "…"), RgbHUD)
	}
	t.raster.FlushToScreen(t.screen)

	t.stats.Frames++
	t.stats.Instances += int64(len(frame.Items))
	t.stats.Triangles += triangleCount(geo)
	t.stats.Shadows += int64(shadows.Count())
	return nil
}
