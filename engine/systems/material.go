package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

type materialReference struct {
	referenceCount uint64
	material       *metadata.Material
}

/**
 * @brief Registry of materials. Materials are handed out by pointer; only
 * their ID travels with placeholders and instances.
 */
type MaterialSystem struct {
	Config          *MaterialSystemConfig
	DefaultMaterial *metadata.Material

	mu         sync.Mutex
	registered map[string]*materialReference
	byID       map[uint32]*metadata.Material
	ids        *core.IdentifierPool

	textureSystem *TextureSystem
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{
		Config:        config,
		registered:    make(map[string]*materialReference),
		byID:          make(map[uint32]*metadata.Material),
		ids:           core.NewIdentifierPool(int(config.MaxMaterialCount)),
		textureSystem: ts,
	}, nil
}

// Initialize creates the default material: flat white over the default texture.
func (ms *MaterialSystem) Initialize() error {
	m, err := ms.AcquireFromConfig(metadata.MaterialConfig{
		Name:           metadata.DefaultMaterialName,
		DiffuseColour:  math.NewVec4(1, 1, 1, 1),
		DiffuseMapName: metadata.DEFAULT_TEXTURE_NAME,
	})
	if err != nil {
		return err
	}
	ms.DefaultMaterial = m
	return nil
}

func (ms *MaterialSystem) Shutdown() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for name, ref := range ms.registered {
		if ref.material.DiffuseMap != nil {
			ms.textureSystem.Release(ref.material.DiffuseMap.Name)
		}
		delete(ms.registered, name)
	}
	ms.byID = make(map[uint32]*metadata.Material)
	return nil
}

/**
 * @brief Returns the material named in config, creating it on first use.
 * A named diffuse map must already be registered with the texture system.
 */
func (ms *MaterialSystem) AcquireFromConfig(config metadata.MaterialConfig) (*metadata.Material, error) {
	if len(config.Name) == 0 {
		return nil, fmt.Errorf("material config has no name")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ref, ok := ms.registered[config.Name]; ok {
		ref.referenceCount++
		return ref.material, nil
	}
	if uint32(len(ms.registered)) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("material system is full (%d). Adjust configuration to allow more", ms.Config.MaxMaterialCount)
		core.LogError(err.Error())
		return nil, err
	}

	m := &metadata.Material{
		Name:          config.Name,
		DiffuseColour: config.DiffuseColour,
	}
	if len(config.DiffuseMapName) > 0 {
		t, err := ms.textureSystem.Acquire(config.DiffuseMapName)
		if err != nil {
			core.LogWarn("material '%s': %s. Using the default texture.", config.Name, err)
			t = ms.textureSystem.DefaultTexture
		}
		m.DiffuseMap = t
	}
	m.ID = ms.ids.Acquire(m)
	ms.registered[config.Name] = &materialReference{referenceCount: 1, material: m}
	ms.byID[m.ID] = m
	core.LogDebug("material '%s' registered with id %d", m.Name, m.ID)
	return m, nil
}

// Acquire returns an already registered material by name.
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ref, ok := ms.registered[name]
	if !ok {
		return nil, fmt.Errorf("material '%s' is not registered", name)
	}
	ref.referenceCount++
	return ref.material, nil
}

// ByID resolves a material handle.
func (ms *MaterialSystem) ByID(id uint32) (*metadata.Material, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m, ok := ms.byID[id]
	return m, ok
}

func (ms *MaterialSystem) Release(name string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ref, ok := ms.registered[name]
	if !ok {
		core.LogWarn("material system release: '%s' is not registered. Nothing was done.", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && name != metadata.DefaultMaterialName {
		if ref.material.DiffuseMap != nil && ref.material.DiffuseMap != ms.textureSystem.DefaultTexture {
			ms.textureSystem.Release(ref.material.DiffuseMap.Name)
		}
		if err := ms.ids.Release(ref.material.ID); err != nil {
			core.LogWarn(err.Error())
		}
		delete(ms.byID, ref.material.ID)
		delete(ms.registered, name)
		ref.material.ID = metadata.InvalidID
	}
}
