package testbed

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/anima-fractals/engine"
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-fractals/engine/systems"
)

// debugExportScale upscales the 8x8 debug texture when it is written to disk.
const debugExportScale = 16

type TestGame struct {
	*engine.Game
	// DebugTextureExport, when set, is the PNG path the generated debug
	// texture is written to during Initialize.
	DebugTextureExport string
}

type gameState struct {
	baseMesh      fractal.BaseMesh
	tetrahedron   *metadata.Geometry
	cube          *metadata.Geometry
	debugTexture  *metadata.Texture
	debugMaterial *metadata.Material

	scene     *metadata.SceneConfig
	scenePath string
	// materials acquired for the current scene, released on the next apply
	sceneMaterials []string
	reloads        int
	reloadErr      error
	generated      int
}

func NewTestGame(assetDir, sceneName string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				Name:      "Anima Fractals",
				LogLevel:  core.DebugLevel,
				TargetFPS: 60,
				AssetDir:  assetDir,
				SceneName: sceneName,
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)

	// Base meshes. Sierpinski nodes are tetrahedra, Menger cells are cubes.
	state.baseMesh = fractal.BuildTetrahedron()
	tetConfig, err := systems.GeometrySystemGenerateTetrahedronConfig(state.baseMesh, metadata.TetrahedronGeometryName, "")
	if err != nil {
		return err
	}
	if state.tetrahedron, err = g.SystemManager.GeometrySystem().AcquireFromConfig(tetConfig, false); err != nil {
		return err
	}
	cubeConfig := systems.GeometrySystemGenerateCubeConfig(1, 1, 1, 1, 1, metadata.CubeGeometryName, "")
	if state.cube, err = g.SystemManager.GeometrySystem().AcquireFromConfig(cubeConfig, false); err != nil {
		return err
	}

	// Debug material over the generated test pattern.
	if state.debugTexture, err = g.SystemManager.TextureSystem().GenerateDebugTexture(); err != nil {
		return err
	}
	state.debugMaterial, err = g.SystemManager.MaterialSystem().AcquireFromConfig(metadata.MaterialConfig{
		Name:           metadata.DebugMaterialName,
		DiffuseColour:  math.NewVec4(1, 1, 1, 1),
		DiffuseMapName: state.debugTexture.Name,
	})
	if err != nil {
		return err
	}
	if len(g.DebugTextureExport) > 0 {
		if err := g.exportDebugTexture(g.DebugTextureExport); err != nil {
			return err
		}
	}

	g.EventSystem.Register(core.EVENT_CODE_SCENE_CHANGED, g, g.onSceneChanged)
	g.EventSystem.Register(core.EVENT_CODE_FRACTAL_GENERATED, g, g.onGenerated)

	scene := defaultScene()
	if name := g.ApplicationConfig.SceneName; len(name) > 0 && g.AssetManager.BaseDir() != "" {
		res, err := g.AssetManager.LoadAsset(name, metadata.ResourceTypeScene, nil)
		if err != nil {
			return err
		}
		scene = res.Data.(*metadata.SceneConfig)
		state.scenePath = res.FullPath
	}
	return g.applyScene(scene)
}

func (g *TestGame) Update(deltaTime float64) error {
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	if packet.FrameNumber > 0 && packet.FrameNumber%600 == 0 {
		fps, frameMS := g.Metrics.Frame()
		ms, instances, passes := g.Metrics.Generation()
		core.LogDebug("frame %d: %.1f fps (%.2fms), %d instances, last pass %.2fms, %d passes",
			packet.FrameNumber, fps, frameMS, instances, ms, passes)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	g.EventSystem.Unregister(core.EVENT_CODE_SCENE_CHANGED, g)
	g.EventSystem.Unregister(core.EVENT_CODE_FRACTAL_GENERATED, g)
	g.releaseMaterials(state.sceneMaterials)
	state.sceneMaterials = nil
	return nil
}

// exportDebugTexture writes the debug texture on a worker; failures are
// logged and do not stop the game.
func (g *TestGame) exportDebugTexture(path string) error {
	state := g.State.(*gameState)
	return g.SystemManager.TextureSystem().ExportPNGAsync(state.debugTexture, path, debugExportScale, func(err error) {
		if err != nil {
			core.LogError("debug texture export to %s failed: %s", path, err)
		}
	})
}

// defaultScene is used when no scene file is configured: one Sierpinski
// placeholder at the origin.
func defaultScene() *metadata.SceneConfig {
	request := fractal.DefaultRequest()
	return &metadata.SceneConfig{
		Name:      "default",
		Generator: string(fractal.KindSierpinski),
		Depth:     request.Depth,
		Scale:     request.Scale,
		Material:  metadata.DebugMaterialName,
		Shapes: []metadata.ShapeConfig{
			{Scale: 1, RotationX: systems.DefaultShapeRotationX},
		},
	}
}

/**
 * @brief Replaces the placeholders with the ones the scene describes and
 * reconfigures the fractal system, which regenerates on the next tick.
 * The scene is checked in full first; on error the previous scene stays.
 */
func (g *TestGame) applyScene(scene *metadata.SceneConfig) error {
	state := g.State.(*gameState)
	kind, err := fractal.ParseKind(scene.Generator)
	if err != nil {
		return err
	}
	geometry := state.tetrahedron
	if kind == fractal.KindMenger {
		geometry = state.cube
	}

	shapes := scene.Shapes
	if len(shapes) == 0 {
		shapes = []metadata.ShapeConfig{{Scale: 1, RotationX: systems.DefaultShapeRotationX}}
	}
	config := systems.FractalSystemConfig{
		Kind:     kind,
		MaxDepth: scene.MaxDepth,
		Request: fractal.Request{
			Origin: scene.OriginVec(),
			Scale:  scene.Scale,
			Depth:  scene.Depth,
		},
	}
	fs := g.SystemManager.FractalSystem()
	if err := fs.Validate(config, len(shapes)); err != nil {
		return fmt.Errorf("scene '%s': %w", scene.Name, err)
	}

	var acquired []string
	placeholders := make([]*metadata.Shape, 0, len(shapes))
	for i, sc := range shapes {
		materialName := sc.Material
		if len(materialName) == 0 {
			materialName = scene.Material
		}
		material, owned := g.resolveMaterial(materialName)
		if owned {
			acquired = append(acquired, material.Name)
		}
		shape, err := systems.NewShape(sc.PositionVec(), sc.Scale, sc.RotationX, geometry.ID, material.ID)
		if err != nil {
			g.releaseMaterials(acquired)
			return fmt.Errorf("scene '%s' shape %d: %w", scene.Name, i, err)
		}
		placeholders = append(placeholders, shape)
	}

	ss := g.SystemManager.ShapeSystem()
	previous, err := ss.Replace(placeholders)
	if err != nil {
		g.releaseMaterials(acquired)
		return fmt.Errorf("scene '%s': %w", scene.Name, err)
	}
	if err := fs.Reconfigure(config); err != nil {
		if _, rerr := ss.Replace(previous); rerr != nil {
			core.LogError("scene '%s': could not restore the previous placeholders: %s", scene.Name, rerr)
		}
		g.releaseMaterials(acquired)
		return err
	}

	g.releaseMaterials(state.sceneMaterials)
	state.sceneMaterials = acquired
	state.scene = scene
	core.LogInfo("scene '%s': %d %s placeholders at depth %d", scene.Name, len(shapes), kind, scene.Depth)
	return nil
}

/**
 * @brief Finds a material by name, loading it from the asset tree on first
 * use. Unknown names fall back to the debug material. The bool reports
 * whether a reference was taken that the caller must release.
 */
func (g *TestGame) resolveMaterial(name string) (*metadata.Material, bool) {
	state := g.State.(*gameState)
	if len(name) == 0 || name == metadata.DebugMaterialName {
		return state.debugMaterial, false
	}
	ms := g.SystemManager.MaterialSystem()
	if m, err := ms.Acquire(name); err == nil {
		return m, true
	}
	if g.AssetManager.BaseDir() == "" {
		return state.debugMaterial, false
	}

	res, err := g.AssetManager.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogWarn("material '%s' not found (%s). Using the debug material.", name, err)
		return state.debugMaterial, false
	}
	config := res.Data.(*metadata.MaterialConfig)
	registered := g.loadTexture(config.DiffuseMapName)

	m, err := ms.AcquireFromConfig(*config)
	if registered {
		// the material holds its own reference from here on
		g.SystemManager.TextureSystem().Release(config.DiffuseMapName)
	}
	if err != nil {
		core.LogWarn("material '%s' could not be created (%s). Using the debug material.", name, err)
		return state.debugMaterial, false
	}
	return m, true
}

func (g *TestGame) releaseMaterials(names []string) {
	ms := g.SystemManager.MaterialSystem()
	for _, name := range names {
		ms.Release(name)
	}
}

// loadTexture registers an image from the asset tree unless a texture with
// that name already exists. It reports whether it registered one, in which
// case the caller owns that first reference.
func (g *TestGame) loadTexture(name string) bool {
	ts := g.SystemManager.TextureSystem()
	if len(name) == 0 {
		return false
	}
	if t, err := ts.Acquire(name); err == nil {
		ts.Release(t.Name)
		return false
	}
	res, err := g.AssetManager.LoadAsset(name, metadata.ResourceTypeImage, nil)
	if err != nil {
		core.LogWarn("texture '%s' not found: %s", name, err)
		return false
	}
	texture := res.Data.(*metadata.Texture)
	if _, err := ts.Register(name, texture.Width, texture.Height, texture.Pixels); err != nil {
		core.LogWarn("texture '%s' could not be registered: %s", name, err)
		return false
	}
	return true
}

func (g *TestGame) onSceneChanged(context core.EventContext) bool {
	state := g.State.(*gameState)
	path, ok := context.Data.(string)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if filepath.Clean(path) != state.scenePath {
		return false
	}
	state.reloads++

	res, err := g.AssetManager.LoadFile(path, nil)
	if err == nil {
		err = g.applyScene(res.Data.(*metadata.SceneConfig))
	}
	state.reloadErr = err
	if err != nil {
		core.LogError("scene reload failed, keeping '%s': %s", state.scene.Name, err)
	}
	return true
}

func (g *TestGame) onGenerated(context core.EventContext) bool {
	state := g.State.(*gameState)
	if count, ok := context.Data.(int); ok {
		state.generated = count
	}
	return false
}
