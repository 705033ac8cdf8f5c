package fractal

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

/**
 * @brief Receives the instances of a generation pass. BeginGeneration is
 * called once before the first Emit of every pass and EndGeneration once
 * after the last. A pass that ends with commit == false must leave the
 * previously committed instances untouched.
 */
type InstanceSink interface {
	BeginGeneration(id uuid.UUID)
	Emit(instance metadata.Instance) error
	EndGeneration(id uuid.UUID, commit bool)
}

// Request seeds every generation pass.
type Request struct {
	Origin math.Vec3
	Scale  float32
	Depth  uint32
}

// DefaultRequest starts at the origin with unit scale and depth 4.
func DefaultRequest() Request {
	return Request{
		Origin: math.NewVec3Zero(),
		Scale:  1.0,
		Depth:  4,
	}
}

// ValidateRequest reports whether g accepts r without generating anything.
func ValidateRequest(g Generator, r Request) error {
	return validateRequest(g.Kind(), r.Origin, r.Scale, r.Depth, g.MaxDepth())
}

type DriverConfig struct {
	Generator Generator
	Sink      InstanceSink
	// Request defaults to DefaultRequest when left zero.
	Request Request
}

/**
 * @brief Expands placeholder shapes into fractals. The driver starts Pending;
 * the first successful Update moves it to Done and it stays there until Reset.
 */
type Driver struct {
	generator Generator
	sink      InstanceSink
	request   Request
	pending   atomic.Bool
	lastID    uuid.UUID
}

func NewDriver(config *DriverConfig) (*Driver, error) {
	if config.Generator == nil {
		err := fmt.Errorf("func NewDriver - config.Generator cannot be nil")
		core.LogError(err.Error())
		return nil, err
	}
	if config.Sink == nil {
		err := fmt.Errorf("func NewDriver - config.Sink cannot be nil")
		core.LogError(err.Error())
		return nil, err
	}
	request := config.Request
	if request == (Request{}) {
		request = DefaultRequest()
	}
	d := &Driver{
		generator: config.Generator,
		sink:      config.Sink,
		request:   request,
	}
	d.pending.Store(true)
	return d, nil
}

func (d *Driver) IsPending() bool {
	return d.pending.Load()
}

// Reset asks for another generation pass on the next Update.
func (d *Driver) Reset() {
	d.pending.Store(true)
}

// Generator returns the rule the driver expands placeholders with.
func (d *Driver) Generator() Generator {
	return d.generator
}

// LastGenerationID identifies the most recent committed pass, or uuid.Nil before the first.
func (d *Driver) LastGenerationID() uuid.UUID {
	return d.lastID
}

/**
 * @brief Runs a generation pass if one is pending. Returns whether a pass ran
 * and how many instances it emitted. A failed pass leaves the driver Pending.
 */
func (d *Driver) Update(placeholders []*metadata.Shape) (bool, int, error) {
	if !d.pending.CompareAndSwap(true, false) {
		return false, 0, nil
	}
	count, err := d.Run(placeholders)
	if err != nil {
		d.pending.Store(true)
		return true, count, err
	}
	return true, count, nil
}

/**
 * @brief Expands every placeholder with the configured request and emits one
 * instance per transform, carrying the placeholder's geometry and material.
 * The placeholder's own transform does not move the fractal. Run ignores the
 * Pending state.
 */
func (d *Driver) Run(placeholders []*metadata.Shape) (int, error) {
	transforms, err := d.generator.Generate(d.request.Origin, d.request.Scale, d.request.Depth)
	if err != nil {
		return 0, fmt.Errorf("generation failed: %w", err)
	}

	id := uuid.New()
	d.sink.BeginGeneration(id)

	emitted := 0
	for _, shape := range placeholders {
		if shape == nil {
			continue
		}
		for _, t := range transforms {
			err := d.sink.Emit(metadata.Instance{
				GenerationID: id,
				GeometryID:   shape.Geometry,
				MaterialID:   shape.Material,
				Transform:    t,
			})
			if err != nil {
				d.sink.EndGeneration(id, false)
				return emitted, fmt.Errorf("instance sink rejected instance %d: %w", emitted, err)
			}
			emitted++
		}
	}
	d.sink.EndGeneration(id, true)
	d.lastID = id
	core.LogDebug("%s generation %s: %d placeholders, %d instances", d.generator.Kind(), id, len(placeholders), emitted)
	return emitted, nil
}
