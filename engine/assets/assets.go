package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-fractals/engine/assets/loaders"
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

const (
	ScenesDir    = "scenes"
	MaterialsDir = "materials"
	TexturesDir  = "textures"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the asset tree and watches it for changes. Writes to scene
 * files are posted as EVENT_CODE_SCENE_CHANGED; the event queue is the only
 * channel between the watcher goroutine and the main loop.
 */
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	eventSystem *core.EventSystem
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	fsnotify    *fsnotify.Watcher
	isClosed    bool
	started     bool
}

func NewAssetManager(es *core.EventSystem) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:      make(map[string]AssetInfo),
		loaders:     make(map[metadata.ResourceType]Loader),
		eventSystem: es,
		fsnotify:    fsWatch,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeScene, &loaders.SceneLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	return am, nil
}

// Initialize indexes assetsDir and starts watching it and all sub-directories.
func (am *AssetManager) Initialize(assetsDir string) error {
	abs, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.baseDir = abs

	if err := am.addRecursive(abs); err != nil {
		return err
	}
	am.started = true
	go am.start()
	core.LogInfo("asset manager watching %s (%d assets indexed)", abs, am.Count())
	return nil
}

func (am *AssetManager) BaseDir() string {
	return am.baseDir
}

// Shutdown stops the watcher and waits for its goroutine to exit.
func (am *AssetManager) Shutdown() error {
	var err error
	am.closeOnce.Do(func() {
		am.mutex.Lock()
		am.isClosed = true
		am.mutex.Unlock()
		close(am.done)
		if am.started {
			<-am.stopped
			return
		}
		err = am.fsnotify.Close()
	})
	return err
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.closed() {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name)
}

func (am *AssetManager) closed() bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.isClosed
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// AssetPath maps an asset name to its location in the tree.
func (am *AssetManager) AssetPath(name string, resourceType metadata.ResourceType) (string, error) {
	switch resourceType {
	case metadata.ResourceTypeScene:
		return filepath.Join(am.baseDir, ScenesDir, name+".toml"), nil
	case metadata.ResourceTypeMaterial:
		return filepath.Join(am.baseDir, MaterialsDir, name+".toml"), nil
	case metadata.ResourceTypeImage:
		return filepath.Join(am.baseDir, TexturesDir, name+".png"), nil
	}
	return "", fmt.Errorf("unknown resource type %s", resourceType)
}

// LoadAsset loads a named asset of the given type using the registered loader.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, err := am.AssetPath(name, resourceType)
	if err != nil {
		return nil, err
	}
	return am.LoadFile(path, params)
}

// LoadFile loads an indexed asset by path, as carried by EVENT_CODE_SCENE_CHANGED.
func (am *AssetManager) LoadFile(path string, params interface{}) (*metadata.Resource, error) {
	path = filepath.Clean(path)

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if !exists {
		am.mutex.Unlock()
		return nil, fmt.Errorf("asset not found: %s", path)
	}
	// Update the loaded time
	asset.LastLoaded = time.Now()
	am.assets[path] = asset
	am.mutex.Unlock()

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	assetType, ok := determineAssetType(asset.FullPath)
	if !ok {
		return fmt.Errorf("unknown asset type for %s", asset.FullPath)
	}
	if loader, exists := am.loaders[assetType]; exists {
		return loader.Unload(asset)
	}
	return nil
}

// Lookup returns the index entry of path.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Clean(path)]
	return info, ok
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogWarn("closing asset watcher: %s", err)
			}
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch %s: %s", e.Name, err)
			}
		}
		return
	}
	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if assetType, ok := am.handleFileEvent(e.Name); ok && assetType == metadata.ResourceTypeScene {
			am.postSceneChanged(e.Name)
		}
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

func (am *AssetManager) postSceneChanged(path string) {
	if am.eventSystem == nil {
		return
	}
	err := am.eventSystem.Post(core.EventContext{
		Type:   core.EVENT_CODE_SCENE_CHANGED,
		Sender: am,
		Data:   filepath.Clean(path),
	})
	if err != nil {
		core.LogWarn("scene change for %s dropped: %s", path, err)
		return
	}
	core.LogDebug("scene %s changed", path)
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes every file it finds.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (metadata.ResourceType, bool) {
	assetType, ok := determineAssetType(path)
	if !ok {
		return assetType, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	path = filepath.Clean(path)
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	return assetType, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, filepath.Clean(path))
}

func determineAssetType(path string) (metadata.ResourceType, bool) {
	switch filepath.Ext(path) {
	case ".toml":
		switch filepath.Base(filepath.Dir(path)) {
		case ScenesDir:
			return metadata.ResourceTypeScene, true
		case MaterialsDir:
			return metadata.ResourceTypeMaterial, true
		}
	case ".png", ".jpg", ".jpeg":
		return metadata.ResourceTypeImage, true
	}
	return metadata.ResourceTypeCustom, false
}
