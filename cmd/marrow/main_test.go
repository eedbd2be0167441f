package main

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/asset"
	"github.com/lixenwraith/marrow/camera"
	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/config"
	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/render"
	"github.com/lixenwraith/marrow/status"
)

func testScene(t *testing.T, instances int) (*engine.World, *asset.Registry, *asset.Model) {
	t.Helper()
	w := engine.NewWorld()
	reg := asset.NewRegistry()
	model, err := loadModel("")
	require.NoError(t, err)
	modelID, err := reg.Add(model)
	require.NoError(t, err)
	groundID, err := reg.Add(asset.NewPlane(groundHalf))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Instances = instances
	cam := spawnScene(w, modelID, groundID, model, cfg)
	engine.AddResource(w.Resources, cam)
	return w, reg, model
}

func TestSpawnScene(t *testing.T) {
	w, _, model := testScene(t, 5)
	cm := w.Components

	assert.Len(t, engine.CollectLinked3[component.Transform, component.Material, component.Mesh](cm), 6, "instances plus ground")
	assert.Len(t, engine.EntityContainer[component.Skin](cm), 5)
	assert.Len(t, engine.ComponentContainer[component.DirectionalLight](cm), 1)
	assert.Len(t, engine.ComponentContainer[component.PointLight](cm), 1)
	assert.Len(t, engine.ComponentContainer[component.SpotLight](cm), 1)

	// Every instance stands on the ground at the fitted height
	scale, lift := fitModel(model.Mesh)
	assert.InDelta(t, float32(instanceHeight)/tentacleSegments, scale, 1e-5)
	assert.InDelta(t, 0, lift, 1e-5)
	for _, e := range engine.EntityContainer[component.Skin](cm) {
		tr := engine.GetComponent[component.Transform](cm, e)
		assert.InDelta(t, scale, tr.Scale.X(), 1e-6)
	}
}

func TestHandleKey(t *testing.T) {
	w, _, _ := testScene(t, 2)
	cam := engine.MustGetResource[*camera.State](w.Resources)
	startYaw := cam.Yaw

	assert.True(t, handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), w, cam))
	assert.True(t, handleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), w, cam))

	assert.False(t, handleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), w, cam))
	assert.InDelta(t, startYaw+turnStep, cam.Yaw, 1e-4)

	before := cam.Position
	handleKey(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), w, cam)
	assert.InDelta(t, moveStep, cam.Position.Sub(before).Len(), 1e-4)

	handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), w, cam)
	for _, s := range engine.ComponentContainer[component.Skin](w.Components) {
		assert.True(t, s.Paused)
	}
}

func TestPollInputStopsOnCancel(t *testing.T) {
	w, _, _ := testScene(t, 1)
	cam := engine.MustGetResource[*camera.State](w.Resources)

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pollInput(ctx, screen, w, cam, cancel) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "input loop did not stop")
	}
}

func TestRenderLoopHeadless(t *testing.T) {
	w, reg, model := testScene(t, 3)
	cam := engine.MustGetResource[*camera.State](w.Resources)

	r, err := render.New(render.BackendHeadless, render.Options{ShadowMapSize: 16, ParallelShadows: true})
	require.NoError(t, err)
	reg.Each(func(id asset.MeshID, m *asset.Model) {
		require.NoError(t, r.LoadMesh(id, m.Mesh))
	})

	metrics := status.NewRegistry()
	loop := newRenderLoop(w, r, reg, metrics, cam, model.Name)
	loop.interval = time.Millisecond
	loop.maxFrames = 3
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, loop.run(ctx))

	stats := r.Stats()
	assert.Equal(t, int64(3), stats.Frames)
	assert.Equal(t, int64(3*4), stats.Instances)
	// One directional, one spot and six point faces per frame
	assert.Equal(t, int64(3*8), stats.Shadows)

	assert.Equal(t, int64(3), metrics.Counter("render.frames").Load())
	assert.Greater(t, metrics.Gauge("render.fps").Get(), 0.0)
	assert.Contains(t, loop.hud(loop.builder.Build(w), cam), "4 instances")
}

func TestSetupLoggingDiscardsOnTerminal(t *testing.T) {
	cfg := config.Default()
	logger, closeFn, err := setupLogging(cfg, render.BackendTerminal)
	require.NoError(t, err)
	defer closeFn()
	assert.NotPanics(t, func() { logger.Info().Msg("discarded") })
}
