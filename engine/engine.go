package engine

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-fractals/engine/assets"
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-fractals/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const maxQueuedEvents = 256

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	renderer      *renderer.Renderer
	eventSystem   *core.EventSystem
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	metrics       *core.Metrics
	clock         *core.Clock
	frameClock    *core.Clock
	lastTime      float64
	frameCount    uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		err := fmt.Errorf("func New - game and its application config are required")
		core.LogError(err.Error())
		return nil, err
	}
	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		metrics:      core.NewMetrics(),
		clock:        core.NewClock(),
		frameClock:   core.NewClock(),
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	es, err := core.NewEventSystem(&core.EventSystemConfig{MaxQueuedEvents: maxQueuedEvents})
	if err != nil {
		return nil, err
	}
	e.eventSystem = es

	r, err := renderer.New(renderer.Headless)
	if err != nil {
		return nil, err
	}
	e.renderer = r

	am, err := assets.NewAssetManager(es)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.assetManager = am

	smConfig := g.ApplicationConfig.Systems
	if smConfig == nil {
		smConfig = systems.DefaultSystemManagerConfig()
	}
	sm, err := systems.NewSystemManager(smConfig, r, es, e.metrics)
	if err != nil {
		core.LogError(err.Error())
		_ = am.Shutdown()
		return nil, err
	}
	e.systemManager = sm

	g.SystemManager = sm
	g.AssetManager = am
	g.EventSystem = es
	g.Metrics = e.metrics

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot be initialized from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	e.eventSystem.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	if err := e.renderer.Initialize(config.Name); err != nil {
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		return err
	}
	if len(config.AssetDir) > 0 {
		if err := e.assetManager.Initialize(filepath.Clean(config.AssetDir)); err != nil {
			return err
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.isRunning.Store(true)
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if fps := e.gameInstance.ApplicationConfig.TargetFPS; fps > 0 {
		targetFrameSeconds = 1.0 / float64(fps)
	}
	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames

	for e.isRunning.Load() {
		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		e.frameClock.Start()
		if err := e.Tick(delta); err != nil {
			core.LogError("Frame %d failed, shutting down: %s", e.frameCount, err)
			e.isRunning.Store(false)
			return err
		}

		// Figure out how long the frame took and, if below the target, give
		// the rest back to the OS.
		e.frameClock.Update()
		frameElapsedTime := e.frameClock.Elapsed()
		if remainingSeconds := targetFrameSeconds - frameElapsedTime; remainingSeconds > 0 {
			time.Sleep(time.Duration(remainingSeconds * float64(time.Second)))
		}
		e.frameClock.Update()
		e.metrics.Update(e.frameClock.Elapsed())
		e.frameClock.Stop()

		e.lastTime = currentTime
		if maxFrames > 0 && e.frameCount >= maxFrames {
			e.isRunning.Store(false)
		}
	}
	return nil
}

/**
 * @brief Runs one frame: drains the event queue, updates the game, runs any
 * pending fractal generation and draws the current instance set. A failed
 * generation pass does not fail the frame.
 */
func (e *Engine) Tick(delta float64) error {
	e.eventSystem.Dispatch()
	if !e.isRunning.Load() {
		return nil
	}

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update failed: %w", err)
		}
	}

	shapes := e.systemManager.ShapeSystem().Shapes()
	e.systemManager.FractalSystem().Update(shapes)

	packet := &metadata.RenderPacket{
		DeltaTime:   delta,
		FrameNumber: e.frameCount,
		Shapes:      shapes,
		Instances:   e.systemManager.InstanceSystem().Instances(),
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			return fmt.Errorf("game render failed: %w", err)
		}
	}
	if err := e.renderer.DrawFrame(packet); err != nil {
		return err
	}
	e.frameCount++
	return nil
}

// Stop asks the loop to exit at the start of the next frame. Safe to call
// from any goroutine.
func (e *Engine) Stop() {
	err := e.eventSystem.Post(core.EventContext{
		Type:   core.EVENT_CODE_APPLICATION_QUIT,
		Sender: e,
	})
	if err != nil {
		// Queue is full; stop without telling the listeners.
		e.isRunning.Store(false)
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if err := e.eventSystem.Shutdown(); err != nil {
		return err
	}
	fps, frameMS := e.metrics.Frame()
	core.LogInfo("engine stopped after %d frames (%.1f fps, %.2fms avg)", e.frameCount, fps, frameMS)
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
	}
	return false
}
