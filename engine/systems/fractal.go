package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type FractalSystemConfig struct {
	/** @brief The generator placeholders are expanded with. */
	Kind fractal.Kind
	/** @brief Depth ceiling. Zero selects the generator default. */
	MaxDepth uint32
	/** @brief Seed of every generation pass. Zero selects fractal.DefaultRequest. */
	Request fractal.Request
}

/**
 * @brief Drives fractal generation from the engine loop. Owns the driver and
 * feeds its instances into the instance system.
 */
type FractalSystem struct {
	mu     sync.Mutex
	config FractalSystemConfig
	driver *fractal.Driver
	// Set by a failed pass; no pass runs again until a reset or reconfigure.
	failure error

	eventSystem    *core.EventSystem
	instanceSystem *InstanceSystem
	metrics        *core.Metrics
	clock          *core.Clock
}

func NewFractalSystem(config *FractalSystemConfig, es *core.EventSystem, is *InstanceSystem, metrics *core.Metrics) (*FractalSystem, error) {
	if es == nil || is == nil {
		err := fmt.Errorf("func NewFractalSystem - event and instance systems are required")
		core.LogError(err.Error())
		return nil, err
	}
	fs := &FractalSystem{
		eventSystem:    es,
		instanceSystem: is,
		metrics:        metrics,
		clock:          core.NewClock(),
	}
	if err := fs.Reconfigure(*config); err != nil {
		return nil, err
	}
	es.Register(core.EVENT_CODE_FRACTAL_REGENERATE, fs, fs.onRegenerate)
	return fs, nil
}

func (fs *FractalSystem) onRegenerate(context core.EventContext) bool {
	fs.mu.Lock()
	fs.failure = nil
	driver := fs.driver
	fs.mu.Unlock()
	driver.Reset()
	return false
}

/**
 * @brief Checks that config describes a usable generator and that expanding
 * placeholders shapes with it fits the instance system. Nothing is changed.
 */
func (fs *FractalSystem) Validate(config FractalSystemConfig, placeholders int) error {
	generator, err := fractal.NewGenerator(config.Kind, config.MaxDepth)
	if err != nil {
		return err
	}
	request := config.Request
	if request == (fractal.Request{}) {
		request = fractal.DefaultRequest()
	}
	if err := fractal.ValidateRequest(generator, request); err != nil {
		return err
	}
	return checkBudget(generator, request.Depth, placeholders, fs.instanceSystem.Config.MaxInstanceCount)
}

func checkBudget(generator fractal.Generator, depth uint32, placeholders int, limit uint32) error {
	if placeholders <= 0 {
		return nil
	}
	perShape := generator.Count(depth)
	if perShape > uint64(limit) || perShape*uint64(placeholders) > uint64(limit) {
		return fmt.Errorf("%d placeholders x %d %s instances at depth %d exceeds %d: %w",
			placeholders, perShape, generator.Kind(), depth, limit, core.ErrInstanceBudget)
	}
	return nil
}

/**
 * @brief Swaps the generator and seed. The new driver starts Pending, so the
 * next Update regenerates every placeholder.
 */
func (fs *FractalSystem) Reconfigure(config FractalSystemConfig) error {
	generator, err := fractal.NewGenerator(config.Kind, config.MaxDepth)
	if err != nil {
		return err
	}
	driver, err := fractal.NewDriver(&fractal.DriverConfig{
		Generator: generator,
		Sink:      fs.instanceSystem,
		Request:   config.Request,
	})
	if err != nil {
		return err
	}

	fs.mu.Lock()
	fs.config = config
	fs.driver = driver
	fs.failure = nil
	fs.mu.Unlock()

	core.LogInfo("fractal system configured: %s, max depth %d", generator.Kind(), generator.MaxDepth())
	return nil
}

func (fs *FractalSystem) Driver() *fractal.Driver {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.driver
}

func (fs *FractalSystem) Config() FractalSystemConfig {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.config
}

/**
 * @brief Called once per tick. Runs the pending generation pass, if any,
 * records its timing and announces the result. A failed pass is logged and
 * kept as Err; the driver stays Pending and the previous instances stay
 * visible until a reset or reconfigure.
 */
func (fs *FractalSystem) Update(placeholders []*metadata.Shape) {
	fs.mu.Lock()
	driver, failed := fs.driver, fs.failure != nil
	fs.mu.Unlock()
	if failed || !driver.IsPending() {
		return
	}

	request := fs.Config().Request
	if request == (fractal.Request{}) {
		request = fractal.DefaultRequest()
	}
	live := 0
	for _, p := range placeholders {
		if p != nil {
			live++
		}
	}
	if err := checkBudget(driver.Generator(), request.Depth, live, fs.instanceSystem.Config.MaxInstanceCount); err != nil {
		fs.fail(err)
		return
	}

	fs.clock.Start()
	ran, count, err := driver.Update(placeholders)
	fs.clock.Update()
	fs.clock.Stop()
	if err != nil {
		fs.fail(err)
		return
	}
	if !ran {
		return
	}

	if fs.metrics != nil {
		fs.metrics.RecordGeneration(fs.clock.Elapsed(), count)
	}
	core.LogInfo("generated %d instances in %.2fms", count, fs.clock.Elapsed()*1000.0)
	fs.eventSystem.Fire(core.EventContext{
		Type:   core.EVENT_CODE_FRACTAL_GENERATED,
		Sender: fs,
		Data:   count,
	})
}

func (fs *FractalSystem) fail(err error) {
	core.LogError("fractal generation failed, keeping %d instances: %s", fs.instanceSystem.Count(), err)
	fs.mu.Lock()
	fs.failure = err
	fs.mu.Unlock()
}

// Err returns why the last pass failed, or nil.
func (fs *FractalSystem) Err() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.failure
}

func (fs *FractalSystem) Shutdown() error {
	fs.eventSystem.Unregister(core.EVENT_CODE_FRACTAL_REGENERATE, fs)
	fs.instanceSystem.Clear()
	return nil
}
