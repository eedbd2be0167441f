// Package config loads runtime settings from defaults, an optional KEY=value file and the environment
package config

import (
	"os"
	"strings"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/parameter"
)

var (
	ErrConfigFile = eris.New("config file unreadable")
	ErrInvalid    = eris.New("invalid configuration")
)

// Config holds every runtime setting
// File keys and environment variables share the MARROW_ names
type Config struct {
	Backend   string `config:"MARROW_BACKEND"`
	TickRate  int    `config:"MARROW_TICK_RATE"`
	FrameRate int    `config:"MARROW_FRAME_RATE"`

	LogLevel  string `config:"MARROW_LOG_LEVEL"`
	LogFormat string `config:"MARROW_LOG_FORMAT"`
	LogFile   string `config:"MARROW_LOG_FILE"`

	// Model is a .gltf, .glb or .obj path; empty selects the procedural tentacle
	Model string `config:"MARROW_MODEL"`

	ShadowMapSize   int     `config:"MARROW_SHADOW_MAP_SIZE"`
	ParallelShadows bool    `config:"MARROW_PARALLEL_SHADOWS"`
	Instances       int     `config:"MARROW_INSTANCES"`
	FieldOfView     float64 `config:"MARROW_FIELD_OF_VIEW"`
}

// Default returns the settings used when nothing overrides them
func Default() Config {
	return Config{
		Backend:         "terminal",
		TickRate:        parameter.DefaultTickRate,
		FrameRate:       parameter.DefaultFrameRate,
		LogLevel:        "info",
		LogFormat:       "json",
		ShadowMapSize:   parameter.DefaultShadowMapSize,
		ParallelShadows: true,
		Instances:       3,
		FieldOfView:     parameter.DefaultFieldOfView,
	}
}

// Load layers the file at path (skipped when empty) and then the environment over Default
func Load(path string) (Config, error) {
	c := Default()

	b := jlconfig.FromEnv()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return c, eris.Wrapf(ErrConfigFile, "%s: %v", path, err)
		}
		b = jlconfig.From(path).FromEnv()
	}
	if err := b.To(&c); err != nil {
		return c, eris.Wrap(err, "load config")
	}

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	switch c.Backend {
	case "terminal", "tcell", "headless", "none":
	default:
		return eris.Wrapf(ErrInvalid, "backend %q", c.Backend)
	}
	if c.TickRate < 1 || c.TickRate > 1000 {
		return eris.Wrapf(ErrInvalid, "tick rate %d outside 1..1000", c.TickRate)
	}
	if c.FrameRate < 1 || c.FrameRate > 1000 {
		return eris.Wrapf(ErrInvalid, "frame rate %d outside 1..1000", c.FrameRate)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return eris.Wrapf(ErrInvalid, "log format %q", c.LogFormat)
	}
	if c.ShadowMapSize < parameter.MinShadowMapSize || c.ShadowMapSize > parameter.MaxShadowMapSize {
		return eris.Wrapf(ErrInvalid, "shadow map size %d outside %d..%d",
			c.ShadowMapSize, parameter.MinShadowMapSize, parameter.MaxShadowMapSize)
	}
	if c.Instances < 1 || c.Instances > parameter.MaxInstances {
		return eris.Wrapf(ErrInvalid, "instances %d outside 1..%d", c.Instances, parameter.MaxInstances)
	}
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		return eris.Wrapf(ErrInvalid, "field of view %g", c.FieldOfView)
	}
	return nil
}
