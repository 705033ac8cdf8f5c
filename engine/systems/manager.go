package systems

import (
	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/renderer"
)

type SystemManagerConfig struct {
	Workers          int
	MaxTextureCount  uint32
	MaxMaterialCount uint32
	MaxGeometryCount uint32
	MaxShapeCount    uint32
	MaxInstanceCount uint32
	Fractal          FractalSystemConfig
}

// DefaultSystemManagerConfig sizes the instance system for the largest
// default Menger sponge on a handful of placeholders.
func DefaultSystemManagerConfig() *SystemManagerConfig {
	return &SystemManagerConfig{
		Workers:          2,
		MaxTextureCount:  64,
		MaxMaterialCount: 64,
		MaxGeometryCount: 64,
		MaxShapeCount:    16,
		MaxInstanceCount: 1 << 21,
		Fractal: FractalSystemConfig{
			Kind:    fractal.KindSierpinski,
			Request: fractal.DefaultRequest(),
		},
	}
}

type SystemManager struct {
	jobSystem      *JobSystem
	textureSystem  *TextureSystem
	materialSystem *MaterialSystem
	geometrySystem *GeometrySystem
	shapeSystem    *ShapeSystem
	instanceSystem *InstanceSystem
	fractalSystem  *FractalSystem
}

func NewSystemManager(config *SystemManagerConfig, r *renderer.Renderer, es *core.EventSystem, metrics *core.Metrics) (*SystemManager, error) {
	js, err := NewJobSystem(&JobSystemConfig{
		Workers:   config.Workers,
		QueueSize: 16,
	})
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, js, r)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, ts)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: config.MaxGeometryCount,
	}, ms, r)
	if err != nil {
		return nil, err
	}
	ss, err := NewShapeSystem(&ShapeSystemConfig{
		MaxShapeCount: config.MaxShapeCount,
	})
	if err != nil {
		return nil, err
	}
	is, err := NewInstanceSystem(&InstanceSystemConfig{
		MaxInstanceCount: config.MaxInstanceCount,
	})
	if err != nil {
		return nil, err
	}
	fs, err := NewFractalSystem(&config.Fractal, es, is, metrics)
	if err != nil {
		return nil, err
	}
	return &SystemManager{
		jobSystem:      js,
		textureSystem:  ts,
		materialSystem: ms,
		geometrySystem: gs,
		shapeSystem:    ss,
		instanceSystem: is,
		fractalSystem:  fs,
	}, nil
}

// Initialize creates the defaults of every system, in dependency order.
func (sm *SystemManager) Initialize() error {
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.materialSystem.Initialize(); err != nil {
		return err
	}
	return sm.geometrySystem.Initialize()
}

func (sm *SystemManager) JobSystem() *JobSystem           { return sm.jobSystem }
func (sm *SystemManager) TextureSystem() *TextureSystem   { return sm.textureSystem }
func (sm *SystemManager) MaterialSystem() *MaterialSystem { return sm.materialSystem }
func (sm *SystemManager) GeometrySystem() *GeometrySystem { return sm.geometrySystem }
func (sm *SystemManager) ShapeSystem() *ShapeSystem       { return sm.shapeSystem }
func (sm *SystemManager) InstanceSystem() *InstanceSystem { return sm.instanceSystem }
func (sm *SystemManager) FractalSystem() *FractalSystem   { return sm.fractalSystem }

func (sm *SystemManager) Shutdown() error {
	if err := sm.fractalSystem.Shutdown(); err != nil {
		return err
	}
	sm.shapeSystem.Clear()
	if err := sm.geometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.materialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
