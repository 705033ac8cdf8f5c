package metadata

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-fractals/engine/math"
)

/**
 * @brief A placeholder shape in the world. The fractal driver expands every
 * placeholder into a full fractal drawn with the placeholder's geometry and
 * material. Placeholders are created hidden.
 */
type Shape struct {
	/** @brief The geometry handle (see Geometry.ID). */
	Geometry uint32
	/** @brief The material handle (see Material.ID). */
	Material uint32
	/** @brief Where the placeholder itself sits. Not used to seed generation. */
	Transform math.Transform
	Visible   bool
}

/**
 * @brief A single renderable copy of a geometry, emitted by a fractal
 * generation pass.
 */
type Instance struct {
	/** @brief Identifies the generation pass that emitted this instance. */
	GenerationID uuid.UUID
	GeometryID   uint32
	MaterialID   uint32
	Transform    math.Transform
}
