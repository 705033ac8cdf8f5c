package engine

import (
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/systems"
)

type ApplicationConfig struct {
	// The application name handed to the renderer backend.
	Name     string
	LogLevel core.LogLevel
	// Frames per second the loop aims for. Zero runs unthrottled.
	TargetFPS uint32
	// Root of the watched asset tree. Empty disables asset loading.
	AssetDir string
	// Scene loaded at startup, by name under AssetDir/scenes.
	SceneName string
	// Stop after this many frames. Zero runs until quit.
	MaxFrames uint64
	// Capacities of the engine systems. Nil selects the defaults.
	Systems *systems.SystemManagerConfig
}
