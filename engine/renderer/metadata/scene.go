package metadata

import "github.com/spaghettifunk/anima-fractals/engine/math"

/**
 * @brief A scene description as stored in assets/scenes/<name>.toml.
 */
type SceneConfig struct {
	/** @brief The scene name. Defaults to the file name without extension. */
	Name string `toml:"name"`
	/** @brief Which generator expands the placeholders: "sierpinski" or "menger". */
	Generator string `toml:"generator"`
	/** @brief Recursion depth of every generation pass. */
	Depth uint32 `toml:"depth"`
	/** @brief Initial scale handed to the generator. */
	Scale float32 `toml:"scale"`
	/** @brief Origin handed to the generator. */
	Origin [3]float32 `toml:"origin"`
	/** @brief Upper bound on Depth. Zero selects the generator default. */
	MaxDepth uint32 `toml:"max_depth"`
	/** @brief Material used by shapes that do not name one. */
	Material string `toml:"material"`
	/** @brief Placeholder shapes to spawn. */
	Shapes []ShapeConfig `toml:"shapes"`
}

type ShapeConfig struct {
	Position [3]float32 `toml:"position"`
	Scale    float32    `toml:"scale"`
	/** @brief Rotation about the X axis, in radians. */
	RotationX float32 `toml:"rotation_x"`
	Material  string  `toml:"material"`
}

func (sc SceneConfig) OriginVec() math.Vec3 {
	return math.NewVec3(sc.Origin[0], sc.Origin[1], sc.Origin[2])
}

func (sc ShapeConfig) PositionVec() math.Vec3 {
	return math.NewVec3(sc.Position[0], sc.Position[1], sc.Position[2])
}
