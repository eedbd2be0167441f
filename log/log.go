// Package log builds the zerolog loggers used across the engine and dumps world registrations
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/status"
)

// MaxFileSize is the size above which OpenFile rotates an existing log
const MaxFileSize = 10 * 1024 * 1024

// New builds a timestamped logger writing to w
// Unknown levels fall back to info; format "console" writes human readable lines
func New(level, format string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// OpenFile opens path for appending, creating parent directories
// An existing file larger than MaxFileSize is renamed with a timestamp suffix first
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "create log directory for %s", path)
	}
	if info, err := os.Stat(path); err == nil && info.Size() > MaxFileSize {
		ext := filepath.Ext(path)
		rotated := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(path, ext), time.Now().Format("20060102-150405"), ext)
		if err := os.Rename(path, rotated); err != nil {
			return nil, eris.Wrapf(err, "rotate %s", path)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "open log %s", path)
	}
	return f, nil
}

// StoreLister is implemented by engine.ComponentManager
type StoreLister interface {
	Stores() []engine.AnyStore
}

// SystemLister is implemented by engine.World
type SystemLister interface {
	Systems() []engine.System
}

// Components logs one event listing every registered component type ordered by id
func Components(logger *zerolog.Logger, target StoreLister, level zerolog.Level) {
	stores := target.Stores()
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].ID() < stores[j].ID()
	})
	arr := zerolog.Arr()
	for _, s := range stores {
		arr = arr.Dict(zerolog.Dict().
			Uint32("component_id", uint32(s.ID())).
			Str("component_name", s.Name()).
			Int("count", s.Count()))
	}
	logger.WithLevel(level).
		Int("total_components", len(stores)).
		Array("components", arr).
		Send()
}

// Systems logs one event listing every system in run order
func Systems(logger *zerolog.Logger, target SystemLister, level zerolog.Level) {
	systems := target.Systems()
	arr := zerolog.Arr()
	for _, s := range systems {
		arr = arr.Dict(zerolog.Dict().
			Str("name", engine.SystemName(s)).
			Int("priority", s.Priority()))
	}
	logger.WithLevel(level).
		Int("total_systems", len(systems)).
		Array("systems", arr).
		Send()
}

// Metrics logs one event carrying every registered metric as a field
func Metrics(logger *zerolog.Logger, metrics *status.Registry, level zerolog.Level) {
	dict := zerolog.Dict()
	for _, s := range metrics.Snapshot() {
		dict = dict.Float64(s.Name, s.Value)
	}
	logger.WithLevel(level).Dict("metrics", dict).Send()
}
