package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

/** @brief Placeholders are flipped about X so the fractal apex points up. */
const DefaultShapeRotationX float32 = -math.K_PI

type ShapeSystemConfig struct {
	MaxShapeCount uint32
}

// ShapeSystem owns the placeholder shapes of the loaded scene.
type ShapeSystem struct {
	Config *ShapeSystemConfig

	mu     sync.RWMutex
	shapes []*metadata.Shape
}

func NewShapeSystem(config *ShapeSystemConfig) (*ShapeSystem, error) {
	if config.MaxShapeCount == 0 {
		err := fmt.Errorf("func NewShapeSystem - config.MaxShapeCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShapeSystem{Config: config}, nil
}

/**
 * @brief Builds a hidden placeholder at position with a uniform scale and a
 * rotation of rotationX radians about the X axis. The shape is not
 * registered anywhere.
 */
func NewShape(position math.Vec3, scale, rotationX float32, geometry, material uint32) (*metadata.Shape, error) {
	if !position.IsFinite() {
		return nil, core.ErrInvalidPosition
	}
	if !math.IsFinite(scale) || scale <= 0 {
		return nil, core.ErrInvalidScale
	}
	rotation := math.NewQuatFromAxisAngle(math.NewVec3Right(), rotationX, true)
	return &metadata.Shape{
		Geometry:  geometry,
		Material:  material,
		Transform: math.NewTransform(position, rotation, math.NewVec3Splat(scale)),
		Visible:   false,
	}, nil
}

// Spawn builds a placeholder with NewShape and adds it to the system.
func (ss *ShapeSystem) Spawn(position math.Vec3, scale, rotationX float32, geometry, material uint32) (*metadata.Shape, error) {
	shape, err := NewShape(position, scale, rotationX, geometry, material)
	if err != nil {
		return nil, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if err := ss.checkCapacity(len(ss.shapes) + 1); err != nil {
		return nil, err
	}
	ss.shapes = append(ss.shapes, shape)
	return shape, nil
}

/**
 * @brief Swaps the whole placeholder set for shapes and returns the previous
 * one. Either every shape is taken or, on error, nothing changes.
 */
func (ss *ShapeSystem) Replace(shapes []*metadata.Shape) ([]*metadata.Shape, error) {
	for i, s := range shapes {
		if s == nil {
			return nil, fmt.Errorf("shape %d is nil", i)
		}
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if err := ss.checkCapacity(len(shapes)); err != nil {
		return nil, err
	}
	previous := ss.shapes
	ss.shapes = append([]*metadata.Shape(nil), shapes...)
	return previous, nil
}

func (ss *ShapeSystem) checkCapacity(n int) error {
	if uint32(n) > ss.Config.MaxShapeCount {
		err := fmt.Errorf("shape system is full (%d). Adjust configuration to allow more", ss.Config.MaxShapeCount)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (ss *ShapeSystem) Shapes() []*metadata.Shape {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]*metadata.Shape, len(ss.shapes))
	copy(out, ss.shapes)
	return out
}

func (ss *ShapeSystem) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.shapes)
}

func (ss *ShapeSystem) Clear() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.shapes = nil
}
