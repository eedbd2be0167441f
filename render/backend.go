package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/marrow/parameter"
)

// Backend selects one of the closed set of renderer implementations
type Backend uint8

const (
	BackendHeadless Backend = iota
	BackendTerminal
)

var ErrUnknownBackend = eris.New("unknown render backend")

func (b Backend) String() string {
	switch b {
	case BackendHeadless:
		return "headless"
	case BackendTerminal:
		return "terminal"
	}
	return "unknown"
}

// ParseBackend maps a configuration name to a Backend
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "headless", "none":
		return BackendHeadless, nil
	case "terminal", "tcell", "":
		return BackendTerminal, nil
	}
	return 0, eris.Wrapf(ErrUnknownBackend, "%q", name)
}

// Options configure a renderer
type Options struct {
	// Screen is used by the terminal backend; nil creates and owns a tcell screen
	Screen tcell.Screen

	ShadowMapSize   int
	ParallelShadows bool

	// Logger defaults to a discarding logger
	Logger *zerolog.Logger
}

func (o *Options) normalize() {
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.ShadowMapSize == 0 {
		o.ShadowMapSize = parameter.DefaultShadowMapSize
	}
	o.ShadowMapSize = min(max(o.ShadowMapSize, parameter.MinShadowMapSize), parameter.MaxShadowMapSize)
}

// New constructs the renderer for backend
func New(backend Backend, opts Options) (Renderer, error) {
	opts.normalize()
	switch backend {
	case BackendHeadless:
		return NewHeadless(opts), nil
	case BackendTerminal:
		return NewTerminal(opts)
	}
	return nil, eris.Wrapf(ErrUnknownBackend, "backend %d", backend)
}
