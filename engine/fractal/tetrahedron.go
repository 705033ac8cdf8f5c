package fractal

import (
	"fmt"

	"github.com/spaghettifunk/anima-fractals/engine/math"
)

/**
 * @brief The unit every fractal node is drawn with: vertex positions plus a
 * triangle list. Built once and shared read-only afterwards.
 */
type BaseMesh struct {
	Vertices []math.Vec3
	Indices  []uint32
}

// TriangleCount is the number of faces in the index list.
func (bm BaseMesh) TriangleCount() int {
	return len(bm.Indices) / 3
}

// Validate checks that the index list is made of whole triangles that only
// reference existing vertices.
func (bm BaseMesh) Validate() error {
	if len(bm.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(bm.Indices))
	}
	for i, idx := range bm.Indices {
		if int(idx) >= len(bm.Vertices) {
			return fmt.Errorf("index %d at position %d is out of range (vertex count %d)", idx, i, len(bm.Vertices))
		}
	}
	return nil
}

// Centroid is the average of the vertex positions.
func (bm BaseMesh) Centroid() math.Vec3 {
	c := math.NewVec3Zero()
	if len(bm.Vertices) == 0 {
		return c
	}
	for _, v := range bm.Vertices {
		c = c.Add(v)
	}
	return c.MulScalar(1.0 / float32(len(bm.Vertices)))
}

// FaceNormal returns the unnormalized normal of triangle face, wound
// counter-clockwise.
func (bm BaseMesh) FaceNormal(face int) math.Vec3 {
	a := bm.Vertices[bm.Indices[face*3+0]]
	b := bm.Vertices[bm.Indices[face*3+1]]
	c := bm.Vertices[bm.Indices[face*3+2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// Vertex3D expands the positions into engine vertices with face normals, ready
// for the geometry system.
func (bm BaseMesh) Vertex3D() ([]math.Vertex3D, []uint32) {
	vertices := make([]math.Vertex3D, len(bm.Vertices))
	for i, p := range bm.Vertices {
		vertices[i] = math.Vertex3D{
			Position: p,
			Colour:   math.NewVec4(1, 1, 1, 1),
		}
	}
	indices := make([]uint32, len(bm.Indices))
	copy(indices, bm.Indices)
	math.GeometryGenerateNormals(vertices, indices)
	return vertices, indices
}

/**
 * @brief Builds the regular tetrahedron with edge length 1 that every
 * Sierpinski node is drawn with. One vertex sits at the origin, three lie on
 * the ground plane and the apex points up. Every face winds so its normal
 * points away from the centroid.
 */
func BuildTetrahedron() BaseMesh {
	return BaseMesh{
		Vertices: []math.Vec3{
			math.NewVec3(0.0, 0.0, 0.0),
			math.NewVec3(1.0, 0.0, 0.0),
			math.NewVec3(0.5, 0.0, math.K_SQRT_THREE/2.0),
			math.NewVec3(0.5, math.K_SQRT_SIX/3.0, math.K_SQRT_THREE/6.0),
		},
		Indices: []uint32{
			0, 1, 2,
			0, 2, 3,
			0, 3, 1,
			1, 3, 2,
		},
	}
}
