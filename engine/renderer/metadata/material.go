package metadata

import "github.com/spaghettifunk/anima-fractals/engine/math"

const (
	DefaultMaterialName string = "default"
	// Samples the generated debug texture.
	DebugMaterialName string = "debug"
)

// MaterialConfig is what a material file or the game code hands to the
// material system. An empty DiffuseMapName gives a flat colour.
type MaterialConfig struct {
	Name           string
	DiffuseColour  math.Vec4
	DiffuseMapName string
}

/**
 * @brief Surface an instance is drawn with. The fractal code only ever sees
 * the ID.
 */
type Material struct {
	ID         uint32
	Generation uint32
	Name       string

	DiffuseColour math.Vec4
	DiffuseMap    *Texture
}
