package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// GeometricSeries returns branching^1 + branching^2 + ... + branching^depth,
// the node count of a tree that fans out `branching` ways for `depth` levels
// below its (uncounted) root. Zero depth yields zero.
func GeometricSeries[T constraints.Unsigned](branching, depth T) T {
	var total, level T = 0, 1
	for i := T(0); i < depth; i++ {
		level *= branching
		total += level
	}
	return total
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float32) bool {
	return !m.IsNaN(float64(f)) && !m.IsInf(float64(f), 0)
}
