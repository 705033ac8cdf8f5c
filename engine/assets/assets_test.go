package assets

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

const testScene = "generator = \"sierpinski\"\ndepth = 2\nscale = 1.0\n"

func newAssetTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{ScenesDir, MaterialsDir, TexturesDir} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ScenesDir, "main.toml"), []byte(testScene), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, MaterialsDir, "fractal.toml"), []byte("name = \"fractal\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("ignored"), 0o644))
	return root
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want metadata.ResourceType
		ok   bool
	}{
		{"assets/scenes/main.toml", metadata.ResourceTypeScene, true},
		{"assets/materials/stone.toml", metadata.ResourceTypeMaterial, true},
		{"assets/textures/rock.png", metadata.ResourceTypeImage, true},
		{"assets/textures/rock.jpg", metadata.ResourceTypeImage, true},
		{"assets/other/config.toml", metadata.ResourceTypeCustom, false},
		{"assets/readme.md", metadata.ResourceTypeCustom, false},
	}
	for _, tt := range tests {
		got, ok := determineAssetType(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.path)
		}
	}
}

func TestAssetManagerIndexesAndLoads(t *testing.T) {
	root := newAssetTree(t)
	am, err := NewAssetManager(nil)
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root))
	defer am.Shutdown()

	assert.Equal(t, 2, am.Count())

	res, err := am.LoadAsset("main", metadata.ResourceTypeScene, nil)
	require.NoError(t, err)
	scene := res.Data.(*metadata.SceneConfig)
	assert.Equal(t, "main", scene.Name)
	assert.Equal(t, uint32(2), scene.Depth)

	res, err = am.LoadAsset("fractal", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "fractal", res.Data.(*metadata.MaterialConfig).Name)
	require.NoError(t, am.UnloadAsset(res))

	_, err = am.LoadAsset("missing", metadata.ResourceTypeScene, nil)
	assert.Error(t, err)
	_, err = am.LoadAsset("main", metadata.ResourceTypeText, nil)
	assert.Error(t, err)
}

func TestAssetManagerPostsSceneChanges(t *testing.T) {
	root := newAssetTree(t)
	es, err := core.NewEventSystem(&core.EventSystemConfig{MaxQueuedEvents: 32})
	require.NoError(t, err)

	var changed []string
	es.Register(core.EVENT_CODE_SCENE_CHANGED, t, func(ctx core.EventContext) bool {
		changed = append(changed, ctx.Data.(string))
		return true
	})

	am, err := NewAssetManager(es)
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root))
	defer am.Shutdown()

	scenePath := filepath.Join(am.BaseDir(), ScenesDir, "main.toml")
	require.NoError(t, os.WriteFile(scenePath, []byte(testScene+"max_depth = 6\n"), 0o644))

	require.Eventually(t, func() bool {
		es.Dispatch()
		return len(changed) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, scenePath, changed[0])

	res, err := am.LoadFile(changed[0], nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), res.Data.(*metadata.SceneConfig).MaxDepth)

	// New files are indexed as they appear and dropped when removed.
	extra := filepath.Join(am.BaseDir(), ScenesDir, "extra.toml")
	require.NoError(t, os.WriteFile(extra, []byte(testScene), 0o644))
	require.Eventually(t, func() bool {
		_, ok := am.Lookup(extra)
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(extra))
	require.Eventually(t, func() bool {
		_, ok := am.Lookup(extra)
		return !ok
	}, 5*time.Second, 20*time.Millisecond)
}

func TestAssetManagerShutdownIsIdempotent(t *testing.T) {
	am, err := NewAssetManager(nil)
	require.NoError(t, err)
	require.NoError(t, am.Initialize(newAssetTree(t)))
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())

	idle, err := NewAssetManager(nil)
	require.NoError(t, err)
	assert.NoError(t, idle.Shutdown())
}
