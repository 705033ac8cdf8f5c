package fractal

import (
	"github.com/spaghettifunk/anima-fractals/engine/math"
)

// sierpinskiOffsets point from a node towards the corners of its children, in
// emission order: front right, front left, back middle, top.
var sierpinskiOffsets = [4]math.Vec3{
	{X: 1.0, Y: 0.0, Z: -math.K_SQRT_ONE_OVER_TWO},
	{X: -1.0, Y: 0.0, Z: -math.K_SQRT_ONE_OVER_TWO},
	{X: 0.0, Y: 0.0, Z: math.K_SQRT_ONE_OVER_TWO},
	{X: 0.0, Y: math.K_SQRT_TWO, Z: 0.0},
}

/**
 * @brief Places four half-size tetrahedra at the corners of every node.
 */
type Sierpinski struct {
	maxDepth uint32
}

func NewSierpinski(maxDepth uint32) *Sierpinski {
	return &Sierpinski{maxDepth: maxDepth}
}

func (s *Sierpinski) Kind() Kind {
	return KindSierpinski
}

func (s *Sierpinski) MaxDepth() uint32 {
	return s.maxDepth
}

func (s *Sierpinski) Count(depth uint32) uint64 {
	return math.GeometricSeries(SierpinskiBranching, uint64(depth))
}

func (s *Sierpinski) Generate(position math.Vec3, scale float32, depth uint32) ([]math.Transform, error) {
	if err := validateRequest(KindSierpinski, position, scale, depth, s.maxDepth); err != nil {
		return nil, err
	}
	out := make([]math.Transform, 0, s.Count(depth))
	return s.subdivide(out, position, scale, depth), nil
}

func (s *Sierpinski) subdivide(out []math.Transform, position math.Vec3, scale float32, depth uint32) []math.Transform {
	if depth == 0 {
		return out
	}
	newScale := scale / 2.0
	for _, offset := range sierpinskiOffsets {
		child := position.Add(offset.MulScalar(newScale * 2.0))
		out = append(out, math.NewTransformUniform(child, newScale))
		out = s.subdivide(out, child, newScale, depth-1)
	}
	return out
}
