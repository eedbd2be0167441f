package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/camera"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/config"
	"github.com/lixenwraith/marrow/core"
	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/log"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/render"
	"github.com/lixenwraith/marrow/status"
)

var (
	configFlag = flag.String("config", "", "KEY=value settings file; MARROW_* environment overrides it")
	framesFlag = flag.Int("frames", 0, "Exit after this many rendered frames (0 runs until quit)")
)

const (
	animationPriority = 10
	turnStep          = 5
	moveStep          = 0.5
)

func main() {
	// Terminal must be restored even if setup panics
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marrow: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, *framesFlag); err != nil {
		fmt.Fprintf(os.Stderr, "marrow: %s\n", eris.ToString(err, false))
		os.Exit(1)
	}
}

func run(cfg config.Config, maxFrames int) error {
	backend, err := render.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg, backend)
	if err != nil {
		return err
	}
	defer closeLog()

	world := engine.NewWorld(engine.WithLogger(logger.With().Str("component", "engine").Logger()))
	registry := asset.NewRegistry()
	metrics := status.NewRegistry()
	engine.AddResource(world.Resources, registry)
	engine.AddResource(world.Resources, metrics)

	model, err := loadModel(cfg.Model)
	if err != nil {
		return err
	}
	modelID, err := registry.Add(model)
	if err != nil {
		return err
	}
	groundID, err := registry.Add(asset.NewPlane(groundHalf))
	if err != nil {
		return err
	}
	logger.Info().
		Str("model", model.Name).
		Int("vertices", model.Mesh.VertexCount()).
		Int("clips", len(model.Clips)).
		Bool("skinned", model.Skeleton != nil).
		Msg("model loaded")

	cam := spawnScene(world, modelID, groundID, model, cfg)
	engine.AddResource(world.Resources, cam)
	world.AddSystem(animation.NewSystem(registry, animationPriority, metrics))

	log.Components(world.Logger(), world.Components, zerolog.DebugLevel)
	log.Systems(world.Logger(), world, zerolog.DebugLevel)

	renderLogger := logger.With().Str("component", "render").Logger()
	renderer, err := render.New(backend, render.Options{
		ShadowMapSize:   cfg.ShadowMapSize,
		ParallelShadows: cfg.ParallelShadows,
		Logger:          &renderLogger,
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	var loadErr error
	registry.Each(func(id asset.MeshID, m *asset.Model) {
		if loadErr == nil {
			loadErr = renderer.LoadMesh(id, m.Mesh)
		}
	})
	if loadErr != nil {
		return loadErr
	}

	var screen tcell.Screen
	if term, ok := renderer.(*render.Terminal); ok {
		screen = term.Screen()
		// Dependency injection keeps core independent of tcell
		core.SetCrashHandler(func(any) { screen.Fini() })
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	g, ctx := errgroup.WithContext(ctx)
	scheduler := engine.NewScheduler(world, time.Second/time.Duration(cfg.TickRate))
	g.Go(guard(func() error { return scheduler.Run(ctx) }))

	if screen != nil {
		g.Go(guard(func() error { return pollInput(ctx, screen, world, cam, quit) }))
	}

	loop := newRenderLoop(world, renderer, registry, metrics, cam, model.Name)
	loop.interval = time.Second / time.Duration(cfg.FrameRate)
	loop.maxFrames = maxFrames
	loop.logger = renderLogger
	g.Go(guard(func() error {
		defer quit()
		return loop.run(ctx)
	}))

	err = g.Wait()
	stats := renderer.Stats()
	logger.Info().
		Int64("frames", stats.Frames).
		Int64("ticks", scheduler.Ticks()).
		Int64("triangles", stats.Triangles).
		Int64("shadow_maps", stats.Shadows).
		Msg("shutdown")
	log.Metrics(&logger, metrics, zerolog.InfoLevel)
	return err
}

// setupLogging routes logs to the configured file
// A terminal session without a log file discards logs so the screen stays clean
func setupLogging(cfg config.Config, backend render.Backend) (zerolog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.LogFile != "":
		f, err := log.OpenFile(cfg.LogFile)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		w = f
		closeFn = func() { f.Close() }
	case backend == render.BackendTerminal:
		w = io.Discard
	}
	return log.New(cfg.LogLevel, cfg.LogFormat, w), closeFn, nil
}

func loadModel(path string) (*asset.Model, error) {
	if path == "" {
		return asset.NewTentacle(tentacleSegments)
	}
	return asset.Load(path)
}

// guard recovers panics in errgroup goroutines through the crash handler
func guard(fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				core.HandleCrash(r)
			}
		}()
		return fn()
	}
}

// pollInput handles quit and camera keys until ctx ends
func pollInput(ctx context.Context, screen tcell.Screen, world *engine.World, cam *camera.State, quit context.CancelFunc) error {
	core.Go(func() {
		<-ctx.Done()
		// Unblock PollEvent
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	for {
		ev := screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if handleKey(ev, world, cam) {
				quit()
				return nil
			}
		}
	}
}

// handleKey applies one key press; returns true on quit
func handleKey(ev *tcell.EventKey, world *engine.World, cam *camera.State) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		world.RunSafe(func() { cam.Turn(turnStep, 0) })
	case tcell.KeyRight:
		world.RunSafe(func() { cam.Turn(-turnStep, 0) })
	case tcell.KeyUp:
		world.RunSafe(func() { cam.Turn(0, turnStep) })
	case tcell.KeyDown:
		world.RunSafe(func() { cam.Turn(0, -turnStep) })
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'w':
			world.RunSafe(func() { cam.Move(moveStep, 0, 0) })
		case 's':
			world.RunSafe(func() { cam.Move(-moveStep, 0, 0) })
		case 'a':
			world.RunSafe(func() { cam.Move(0, -moveStep, 0) })
		case 'd':
			world.RunSafe(func() { cam.Move(0, moveStep, 0) })
		case ' ':
			world.RunSafe(func() { togglePause(world) })
		}
	}
	return false
}

// togglePause flips every skin's playback; caller holds the world lock
func togglePause(world *engine.World) {
	engine.StoreOf[component.Skin](world.Components).Each(func(_ core.Entity, s *component.Skin) {
		s.Paused = !s.Paused
	})
}

// renderLoop draws frames at a fixed rate
type renderLoop struct {
	world     *engine.World
	renderer  render.Renderer
	builder   *render.FrameBuilder
	camera    *camera.State
	model     string
	interval  time.Duration
	maxFrames int
	logger    zerolog.Logger

	frames   *atomic.Int64
	fps      *status.Gauge
	drawMs   *status.Gauge
	lastTick time.Time
}

func newRenderLoop(w *engine.World, r render.Renderer, reg *asset.Registry, metrics *status.Registry, cam *camera.State, model string) *renderLoop {
	return &renderLoop{
		world:    w,
		renderer: r,
		builder:  render.NewFrameBuilder(reg),
		camera:   cam,
		model:    model,
		interval: time.Second / parameter.DefaultFrameRate,
		logger:   zerolog.Nop(),
		frames:   metrics.Counter("render.frames"),
		fps:      metrics.Gauge("render.fps"),
		drawMs:   metrics.Gauge("render.draw_ms"),
	}
}

func (l *renderLoop) run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.lastTick = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := l.draw(ctx, now); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if l.maxFrames > 0 && l.frames.Load() >= int64(l.maxFrames) {
				return nil
			}
		}
	}
}

func (l *renderLoop) draw(ctx context.Context, now time.Time) error {
	if dt := now.Sub(l.lastTick).Seconds(); dt > 0 {
		// Exponential smoothing keeps the HUD readable
		l.fps.Set(0.9*l.fps.Get() + 0.1/dt)
	}
	l.lastTick = now

	var aspect float32 = headlessAspect
	if term, ok := l.renderer.(*render.Terminal); ok {
		aspect = term.Aspect()
	}
	var view, projection mgl32.Mat4
	var cam camera.State
	l.world.RunSafe(func() {
		view = l.camera.View()
		projection = l.camera.Projection(aspect)
		cam = *l.camera
	})

	frame := l.builder.Build(l.world)
	frame.CameraPosition = cam.Position
	frame.HUD = l.hud(frame, &cam)

	l.renderer.SetViewMatrix(view)
	l.renderer.SetProjection(projection)
	start := time.Now()
	if err := l.renderer.Draw(ctx, frame); err != nil {
		return err
	}
	l.drawMs.Set(float64(time.Since(start).Microseconds()) / 1000)
	l.frames.Add(1)

	if skipped := l.builder.Skipped(); skipped > 0 {
		l.logger.Warn().Int("skipped", skipped).Msg("instances reference unknown meshes")
	}
	return nil
}

func (l *renderLoop) hud(frame *render.Frame, cam *camera.State) string {
	lights := len(frame.Directional) + len(frame.Points) + len(frame.Spots)
	return fmt.Sprintf(" %s │ %4.1f fps │ %d instances │ %d lights │ yaw %3.0f° pitch %3.0f° │ arrows turn, wasd move, space pause, q quit",
		l.model, l.fps.Get(), len(frame.Items), lights, cam.Yaw, cam.Pitch)
}
