package metadata

import (
	m "math"

	"github.com/spaghettifunk/anima-fractals/engine/math"
)

/** @brief Handle value that points at nothing. */
const InvalidID uint32 = m.MaxUint32

const (
	DefaultGeometryName string = "default"
	// Drawn for every Sierpinski node.
	TetrahedronGeometryName string = "tetrahedron"
	// Drawn for every Menger cell.
	CubeGeometryName string = "cube"
)

/**
 * @brief Everything needed to upload a mesh: vertex and index data plus the
 * precomputed bounds. An empty MaterialName means the default material.
 */
type GeometryConfig struct {
	Vertices []math.Vertex3D
	Indices  []uint32

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3

	Name         string
	MaterialName string
}

/**
 * @brief An uploaded mesh. Instances refer to it by ID only; InternalID is
 * whatever the renderer backend handed back on upload.
 */
type Geometry struct {
	ID         uint32
	InternalID uint32
	// Bumped on every upload so stale handles can be told apart.
	Generation uint16

	Center  math.Vec3
	Extents math.Extents3D

	Name        string
	VertexCount uint32
	IndexCount  uint32
	Material    *Material
}
