package fractal

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
)

type Kind string

const (
	KindSierpinski Kind = "sierpinski"
	KindMenger     Kind = "menger"
)

const (
	/** @brief Placements emitted per non-terminal Sierpinski call. */
	SierpinskiBranching uint64 = 4
	/** @brief Placements emitted per non-terminal Menger call (27 cells minus 7). */
	MengerBranching uint64 = 20

	/** @brief Default depth ceiling of the Sierpinski generator (5460 transforms). */
	DefaultSierpinskiMaxDepth uint32 = 6
	/** @brief Default depth ceiling of the Menger generator (168420 transforms). */
	DefaultMengerMaxDepth uint32 = 4
)

// ParseKind maps a scene string to a generator kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSierpinski:
		return KindSierpinski, nil
	case KindMenger:
		return KindMenger, nil
	}
	return "", fmt.Errorf("%w: '%s'", core.ErrUnknownGenerator, s)
}

/**
 * @brief A recursive placement rule. Generate returns the pre-order list of
 * transforms for a fractal rooted at position; depth 0 yields an empty list.
 * Implementations reject depths above MaxDepth, non-finite positions and
 * scales that are not finite and positive.
 */
type Generator interface {
	Kind() Kind
	MaxDepth() uint32
	// Count is the exact number of transforms Generate returns for depth.
	Count(depth uint32) uint64
	Generate(position math.Vec3, scale float32, depth uint32) ([]math.Transform, error)
}

// NewGenerator builds the generator for kind. A zero maxDepth selects the
// kind's default ceiling.
func NewGenerator(kind Kind, maxDepth uint32) (Generator, error) {
	switch kind {
	case KindSierpinski:
		if maxDepth == 0 {
			maxDepth = DefaultSierpinskiMaxDepth
		}
		return NewSierpinski(maxDepth), nil
	case KindMenger:
		if maxDepth == 0 {
			maxDepth = DefaultMengerMaxDepth
		}
		return NewMenger(maxDepth), nil
	}
	err := fmt.Errorf("func NewGenerator - %w: '%s'", core.ErrUnknownGenerator, kind)
	core.LogError(err.Error())
	return nil, err
}

// validateRequest rejects out-of-domain input before any recursion starts.
func validateRequest(kind Kind, position math.Vec3, scale float32, depth, maxDepth uint32) error {
	var err error
	switch {
	case depth > maxDepth:
		err = fmt.Errorf("%s: depth %d > max %d: %w", kind, depth, maxDepth, core.ErrDepthExceeded)
	case !math.IsFinite(scale) || scale <= 0:
		err = fmt.Errorf("%s: scale %v: %w", kind, scale, core.ErrInvalidScale)
	case !position.IsFinite():
		err = fmt.Errorf("%s: position %+v: %w", kind, position, core.ErrInvalidPosition)
	}
	if err != nil {
		core.LogError("rejected fractal request: %s", err)
	}
	return err
}
