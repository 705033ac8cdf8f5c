package engine

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-fractals/engine/systems"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

// newPlaceholderGame spawns a single hidden placeholder drawn with the
// default geometry.
func newPlaceholderGame(maxFrames uint64) *Game {
	g := &Game{
		ApplicationConfig: &ApplicationConfig{
			Name:      "engine-test",
			LogLevel:  core.ErrorLevel,
			MaxFrames: maxFrames,
		},
	}
	g.FnInitialize = func() error {
		geometry := g.SystemManager.GeometrySystem().GetDefault()
		material := g.SystemManager.MaterialSystem().DefaultMaterial
		_, err := g.SystemManager.ShapeSystem().Spawn(math.NewVec3Zero(), 1, systems.DefaultShapeRotationX, geometry.ID, material.ID)
		return err
	}
	return g
}

func startEngine(t *testing.T, g *Game) *Engine {
	t.Helper()
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return e
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Game{})
	assert.Error(t, err)
}

func TestRunBeforeInitialize(t *testing.T) {
	e, err := New(newPlaceholderGame(1))
	require.NoError(t, err)
	assert.Error(t, e.Run())
	require.NoError(t, e.Shutdown())
}

func TestEngineRunsFramesAndDrawsInstances(t *testing.T) {
	g := newPlaceholderGame(3)
	e := startEngine(t, g)

	var generated []int
	g.EventSystem.Register(core.EVENT_CODE_FRACTAL_GENERATED, t, func(ctx core.EventContext) bool {
		generated = append(generated, ctx.Data.(int))
		return false
	})

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.FrameCount())
	assert.Equal(t, []int{340}, generated)

	hb := e.Renderer().Backend().(*renderer.HeadlessBackend)
	stats := hb.LastFrame()
	assert.Equal(t, 340, stats.DrawCalls)
	assert.Equal(t, 340, stats.PerGeometry[g.SystemManager.GeometrySystem().GetDefault().ID])

	_, instances, passes := g.Metrics.Generation()
	assert.Equal(t, 340, instances)
	assert.Equal(t, 1, passes)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestEngineRegeneratesOnRequest(t *testing.T) {
	g := newPlaceholderGame(0)
	e := startEngine(t, g)
	defer e.Shutdown()

	require.NoError(t, e.Tick(0))
	require.NoError(t, e.Tick(0))
	_, _, passes := g.Metrics.Generation()
	assert.Equal(t, 1, passes)

	require.NoError(t, g.EventSystem.Post(core.EventContext{Type: core.EVENT_CODE_FRACTAL_REGENERATE}))
	require.NoError(t, e.Tick(0))
	_, _, passes = g.Metrics.Generation()
	assert.Equal(t, 2, passes)
}

func TestEngineStopEndsTheLoop(t *testing.T) {
	g := newPlaceholderGame(0)
	var e *Engine
	updates := 0
	g.FnUpdate = func(deltaTime float64) error {
		updates++
		if updates == 2 {
			e.Stop()
		}
		return nil
	}
	e = startEngine(t, g)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.FrameCount())
	require.NoError(t, e.Shutdown())
}

func TestEngineStopsOnGameError(t *testing.T) {
	g := newPlaceholderGame(0)
	boom := errors.New("boom")
	g.FnRender = func(packet *metadata.RenderPacket, deltaTime float64) error {
		if packet.FrameNumber == 1 {
			return boom
		}
		return nil
	}
	e := startEngine(t, g)

	assert.ErrorIs(t, e.Run(), boom)
	assert.Equal(t, uint64(1), e.FrameCount())
	require.NoError(t, e.Shutdown())
}

func TestEngineSurvivesFailedGeneration(t *testing.T) {
	g := newPlaceholderGame(3)
	g.ApplicationConfig.Systems = systems.DefaultSystemManagerConfig()
	g.ApplicationConfig.Systems.MaxInstanceCount = 100
	e := startEngine(t, g)
	fs := g.SystemManager.FractalSystem()

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.FrameCount())
	assert.ErrorIs(t, fs.Err(), core.ErrInstanceBudget)
	assert.True(t, fs.Driver().IsPending())
	assert.Zero(t, g.SystemManager.InstanceSystem().Count())
	require.NoError(t, e.Shutdown())
}

func TestEngineRetriesAfterReconfigure(t *testing.T) {
	g := newPlaceholderGame(0)
	g.ApplicationConfig.Systems = systems.DefaultSystemManagerConfig()
	g.ApplicationConfig.Systems.MaxInstanceCount = 100
	e := startEngine(t, g)
	defer e.Shutdown()
	fs := g.SystemManager.FractalSystem()

	for i := 0; i < 3; i++ {
		require.NoError(t, e.Tick(0))
	}
	require.Error(t, fs.Err())

	require.NoError(t, fs.Reconfigure(systems.FractalSystemConfig{
		Kind:    fractal.KindSierpinski,
		Request: fractal.Request{Origin: math.NewVec3Zero(), Scale: 1, Depth: 3},
	}))
	require.NoError(t, e.Tick(0))
	assert.NoError(t, fs.Err())
	assert.Equal(t, 84, g.SystemManager.InstanceSystem().Count())
	assert.Equal(t, 84, e.Renderer().Backend().(*renderer.HeadlessBackend).LastFrame().DrawCalls)
}
