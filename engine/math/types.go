package math

type Vec2 struct {
	X, Y float32
}

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 doubles as an RGBA colour and as the storage of a Quaternion.
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief Rotation stored as (x, y, z, w). */
type Quaternion Vec4

/** @brief Column-major 4x4 matrix. */
type Mat4 struct {
	Data [16]float32
}

/**
 * @brief Axis-aligned bounds of a mesh, filled in when a geometry is
 * uploaded.
 */
type Extents3D struct {
	Min Vec3
	Max Vec3
}

/**
 * @brief One vertex of an uploaded mesh. The tetrahedron and cube base
 * meshes fill every field; normals and tangents are derived from the
 * index list.
 */
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
	Colour   Vec4
	Tangent  Vec3
}

/**
 * @brief Placement of a placeholder or a generated instance.
 * Local caches the composed scale, rotation and translation and is rebuilt
 * when IsDirty is set; whoever edits Position, Rotation or Scale sets it.
 * Parent is optional and only walked by GetWorld.
 */
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3

	IsDirty bool
	Local   Mat4
	Parent  *Transform
}
