package fractal

import (
	"github.com/spaghettifunk/anima-fractals/engine/math"
)

/**
 * @brief Places same-size cubes on the 20 surviving cells of a 3x3x3 grid
 * around every node. The scale is kept between levels, so deeper levels
 * extend the structure outward instead of refining it.
 */
type Menger struct {
	maxDepth uint32
}

func NewMenger(maxDepth uint32) *Menger {
	return &Menger{maxDepth: maxDepth}
}

func (mg *Menger) Kind() Kind {
	return KindMenger
}

func (mg *Menger) MaxDepth() uint32 {
	return mg.maxDepth
}

func (mg *Menger) Count(depth uint32) uint64 {
	return math.GeometricSeries(MengerBranching, uint64(depth))
}

func (mg *Menger) Generate(position math.Vec3, scale float32, depth uint32) ([]math.Transform, error) {
	if err := validateRequest(KindMenger, position, scale, depth, mg.maxDepth); err != nil {
		return nil, err
	}
	out := make([]math.Transform, 0, mg.Count(depth))
	return mg.subdivide(out, position, scale, depth), nil
}

// IsRemovedCell reports whether grid cell (i, j, k) is the volume center or a
// face center, i.e. at least two of its indices are 1.
func IsRemovedCell(i, j, k int) bool {
	return (i == 1 && j == 1) || (i == 1 && k == 1) || (j == 1 && k == 1)
}

func (mg *Menger) subdivide(out []math.Transform, position math.Vec3, scale float32, depth uint32) []math.Transform {
	if depth == 0 {
		return out
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				if IsRemovedCell(i, j, k) {
					continue
				}
				child := math.NewVec3(
					position.X+float32(i-1)*scale,
					position.Y+float32(j-1)*scale,
					position.Z+float32(k-1)*scale,
				)
				out = append(out, math.NewTransformUniform(child, scale))
				if depth > 1 {
					out = mg.subdivide(out, child, scale, depth-1)
				}
			}
		}
	}
	return out
}
