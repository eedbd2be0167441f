package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/status"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "shown", event["message"])
	assert.Equal(t, "warn", event["level"])
	assert.Contains(t, event, "time")

	buf.Reset()
	fallback := New("chatty", "json", &buf)
	fallback.Debug().Msg("hidden")
	fallback.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "console", &buf)
	logger.Info().Int("frames", 3).Msg("done")
	assert.Contains(t, buf.String(), "done")
	assert.Contains(t, buf.String(), "frames=3")
	assert.NotContains(t, buf.String(), "{")
}

func TestOpenFileRotates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	path := filepath.Join(dir, "marrow.log")

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, MaxFileSize+1))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "rotated file kept next to the fresh one")
}

func TestComponentsAndSystems(t *testing.T) {
	w := engine.NewWorld()
	eb := w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Mesh{ID: 1})
	eb.Build()
	w.AddSystem(engine.SystemFunc{Label: "late", Order: 20, Fn: func(*engine.World, time.Duration) {}})
	w.AddSystem(engine.SystemFunc{Label: "early", Order: 10, Fn: func(*engine.World, time.Duration) {}})

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	Components(&logger, w.Components, zerolog.InfoLevel)
	var comps struct {
		Total      int `json:"total_components"`
		Components []struct {
			ID    uint32 `json:"component_id"`
			Name  string `json:"component_name"`
			Count int    `json:"count"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &comps))
	assert.Equal(t, 2, comps.Total)
	require.Len(t, comps.Components, 2)
	assert.Less(t, comps.Components[0].ID, comps.Components[1].ID)
	assert.Equal(t, 1, comps.Components[0].Count)

	buf.Reset()
	Systems(&logger, w, zerolog.InfoLevel)
	var systems struct {
		Total   int `json:"total_systems"`
		Systems []struct {
			Name     string `json:"name"`
			Priority int    `json:"priority"`
		} `json:"systems"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &systems))
	assert.Equal(t, 2, systems.Total)
	assert.Equal(t, "early", systems.Systems[0].Name)
	assert.Equal(t, 20, systems.Systems[1].Priority)
}

func TestMetrics(t *testing.T) {
	reg := status.NewRegistry()
	reg.Counter("render.frames").Add(12)
	reg.Gauge("render.fps").Set(29.5)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	Metrics(&logger, reg, zerolog.InfoLevel)

	var event struct {
		Metrics map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, map[string]float64{"render.frames": 12, "render.fps": 29.5}, event.Metrics)
}
