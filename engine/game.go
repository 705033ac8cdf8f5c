package engine

import (
	"github.com/spaghettifunk/anima-fractals/engine/assets"
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-fractals/engine/systems"
)

// Game is the set of hooks the engine drives. The engine fills in the
// system handles before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	AssetManager      *assets.AssetManager
	EventSystem       *core.EventSystem
	Metrics           *core.Metrics
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *metadata.RenderPacket, deltaTime float64) error
type Shutdown func() error
