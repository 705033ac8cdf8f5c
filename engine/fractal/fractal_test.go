package fractal

import (
	"io"
	gomath "math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestBuildTetrahedron(t *testing.T) {
	mesh := BuildTetrahedron()

	require.NoError(t, mesh.Validate())
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, 4, mesh.TriangleCount())
	assert.Equal(t, mesh, BuildTetrahedron())

	for i := 0; i < len(mesh.Vertices); i++ {
		for j := i + 1; j < len(mesh.Vertices); j++ {
			assert.InDelta(t, 1.0, mesh.Vertices[i].Distance(mesh.Vertices[j]), 1e-5, "edge %d-%d", i, j)
		}
	}
}

func TestTetrahedronFacesWindOutward(t *testing.T) {
	mesh := BuildTetrahedron()
	centroid := mesh.Centroid()

	seen := map[[3]uint32]bool{}
	for f := 0; f < mesh.TriangleCount(); f++ {
		a := mesh.Vertices[mesh.Indices[f*3]]
		b := mesh.Vertices[mesh.Indices[f*3+1]]
		c := mesh.Vertices[mesh.Indices[f*3+2]]
		faceCenter := a.Add(b).Add(c).MulScalar(1.0 / 3.0)

		assert.Greater(t, mesh.FaceNormal(f).Dot(faceCenter.Sub(centroid)), float32(0), "face %d", f)

		// every face covers a distinct vertex triple
		key := [3]uint32{mesh.Indices[f*3], mesh.Indices[f*3+1], mesh.Indices[f*3+2]}
		for x := 0; x < 3; x++ {
			for y := x + 1; y < 3; y++ {
				if key[y] < key[x] {
					key[x], key[y] = key[y], key[x]
				}
			}
		}
		assert.False(t, seen[key], "face %d repeats %v", f, key)
		seen[key] = true
	}
}

func TestBaseMeshValidate(t *testing.T) {
	bad := BaseMesh{Vertices: []math.Vec3{{}, {}}, Indices: []uint32{0, 1, 2}}
	assert.Error(t, bad.Validate())

	partial := BaseMesh{Vertices: []math.Vec3{{}, {}, {}}, Indices: []uint32{0, 1}}
	assert.Error(t, partial.Validate())
}

func TestBaseMeshVertex3D(t *testing.T) {
	mesh := BuildTetrahedron()
	vertices, indices := mesh.Vertex3D()

	require.Len(t, vertices, 4)
	assert.Equal(t, mesh.Indices, indices)
	for _, v := range vertices {
		assert.InDelta(t, 1.0, v.Normal.Length(), 1e-5)
	}
	// the copy must not alias the shared mesh
	indices[0] = 3
	assert.Equal(t, uint32(0), mesh.Indices[0])
}

func TestSierpinskiDepthOne(t *testing.T) {
	out, err := NewSierpinski(DefaultSierpinskiMaxDepth).Generate(math.NewVec3Zero(), 1, 1)
	require.NoError(t, err)
	require.Len(t, out, 4)

	for i, tr := range out {
		assert.True(t, tr.Position.Compare(sierpinskiOffsets[i], 1e-6), "child %d at %+v", i, tr.Position)
		assert.Equal(t, math.NewVec3Splat(0.5), tr.Scale)
		assert.Equal(t, math.NewQuatIdentity(), tr.Rotation)
	}
}

func TestSierpinskiCounts(t *testing.T) {
	s := NewSierpinski(DefaultSierpinskiMaxDepth)
	for depth, want := range []int{0, 4, 20, 84, 340} {
		out, err := s.Generate(math.NewVec3Zero(), 1, uint32(depth))
		require.NoError(t, err)
		assert.Len(t, out, want, "depth %d", depth)
		assert.Equal(t, uint64(want), s.Count(uint32(depth)))
	}
}

func TestSierpinskiProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.Uint32Range(0, 5).Draw(t, "depth")
		scale := rapid.Float32Range(0.01, 100).Draw(t, "scale")
		pos := math.NewVec3(
			rapid.Float32Range(-50, 50).Draw(t, "x"),
			rapid.Float32Range(-50, 50).Draw(t, "y"),
			rapid.Float32Range(-50, 50).Draw(t, "z"),
		)

		s := NewSierpinski(DefaultSierpinskiMaxDepth)
		out, err := s.Generate(pos, scale, depth)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pow := 1
		for i := uint32(0); i < depth; i++ {
			pow *= 4
		}
		if want := 4 * (pow - 1) / 3; len(out) != want {
			t.Fatalf("depth %d: got %d transforms, want %d", depth, len(out), want)
		}

		// scale at relative level L is scale / 2^(L+1) for the emitted children
		idx := 0
		var walk func(d uint32, level int)
		walk = func(d uint32, level int) {
			if d == 0 {
				return
			}
			for c := 0; c < 4; c++ {
				want := scale / float32(uint64(1)<<(level+1))
				if got := out[idx].UniformScale(); got != want {
					t.Fatalf("transform %d at level %d: scale %v, want %v", idx, level, got, want)
				}
				idx++
				walk(d-1, level+1)
			}
		}
		walk(depth, 0)
		if idx != len(out) {
			t.Fatalf("walked %d of %d transforms", idx, len(out))
		}
	})
}

func TestSierpinskiSelfSimilar(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.Uint32Range(1, 4).Draw(t, "depth")
		scale := rapid.Float32Range(0.1, 10).Draw(t, "scale")
		pos := math.NewVec3(rapid.Float32Range(-5, 5).Draw(t, "x"), 0, 0)

		s := NewSierpinski(DefaultSierpinskiMaxDepth)
		out, err := s.Generate(pos, scale, depth)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		subtree := int(s.Count(depth - 1))
		for c := 0; c < 4; c++ {
			head := c * (subtree + 1)
			child := out[head]
			sub, err := s.Generate(child.Position, child.UniformScale(), depth-1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range sub {
				if !sub[i].Equal(out[head+1+i], 0) {
					t.Fatalf("child %d subtree differs at %d: %+v vs %+v", c, i, sub[i], out[head+1+i])
				}
			}
		}
	})
}

func TestMengerDepthOne(t *testing.T) {
	out, err := NewMenger(DefaultMengerMaxDepth).Generate(math.NewVec3Zero(), 1, 1)
	require.NoError(t, err)
	require.Len(t, out, 20)

	n := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				if IsRemovedCell(i, j, k) {
					continue
				}
				want := math.NewVec3(float32(i-1), float32(j-1), float32(k-1))
				assert.Equal(t, want, out[n].Position, "cell %d,%d,%d", i, j, k)
				assert.Equal(t, math.NewVec3One(), out[n].Scale)
				n++
			}
		}
	}
}

func TestMengerSurvivors(t *testing.T) {
	removed := map[[3]int]bool{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				if IsRemovedCell(i, j, k) {
					removed[[3]int{i, j, k}] = true
				}
			}
		}
	}
	assert.Len(t, removed, 7)
	assert.True(t, removed[[3]int{1, 1, 1}])
	for _, face := range [][3]int{{0, 1, 1}, {2, 1, 1}, {1, 0, 1}, {1, 2, 1}, {1, 1, 0}, {1, 1, 2}} {
		assert.True(t, removed[face], "face center %v", face)
	}
}

func TestMengerCounts(t *testing.T) {
	mg := NewMenger(DefaultMengerMaxDepth)
	for depth, want := range []int{0, 20, 420, 8420} {
		out, err := mg.Generate(math.NewVec3Zero(), 1, uint32(depth))
		require.NoError(t, err)
		assert.Len(t, out, want, "depth %d", depth)
		assert.Equal(t, uint64(want), mg.Count(uint32(depth)))
	}
	assert.Equal(t, uint64(168420), mg.Count(DefaultMengerMaxDepth))
}

func TestMengerKeepsScale(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.Uint32Range(1, 3).Draw(t, "depth")
		scale := rapid.Float32Range(0.01, 100).Draw(t, "scale")

		mg := NewMenger(DefaultMengerMaxDepth)
		out, err := mg.Generate(math.NewVec3Zero(), scale, depth)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if uint64(len(out)) != mg.Count(depth) {
			t.Fatalf("got %d transforms, want %d", len(out), mg.Count(depth))
		}
		for i, tr := range out {
			if tr.Scale != math.NewVec3Splat(scale) {
				t.Fatalf("transform %d scale %+v, want %v", i, tr.Scale, scale)
			}
		}

		// pre-order: each top-level cell is followed by its own subtree
		subtree := int(mg.Count(depth - 1))
		for c := 0; c < 20; c++ {
			head := c * (subtree + 1)
			sub, err := mg.Generate(out[head].Position, scale, depth-1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range sub {
				if !sub[i].Equal(out[head+1+i], 0) {
					t.Fatalf("cell %d subtree differs at %d", c, i)
				}
			}
		}
	})
}

func TestGenerateRejectsBadInput(t *testing.T) {
	nan := float32(gomath.NaN())
	inf := float32(gomath.Inf(1))

	for _, g := range []Generator{NewSierpinski(3), NewMenger(2)} {
		t.Run(string(g.Kind()), func(t *testing.T) {
			_, err := g.Generate(math.NewVec3Zero(), 1, g.MaxDepth()+1)
			assert.ErrorIs(t, err, core.ErrDepthExceeded)

			for _, s := range []float32{0, -1, nan, inf} {
				_, err = g.Generate(math.NewVec3Zero(), s, 1)
				assert.ErrorIs(t, err, core.ErrInvalidScale, "scale %v", s)
			}

			_, err = g.Generate(math.NewVec3(nan, 0, 0), 1, 1)
			assert.ErrorIs(t, err, core.ErrInvalidPosition)

			out, err := g.Generate(math.NewVec3Zero(), 1, 0)
			require.NoError(t, err)
			assert.Empty(t, out)

			assert.NoError(t, ValidateRequest(g, Request{Origin: math.NewVec3Zero(), Scale: 1, Depth: g.MaxDepth()}))
			assert.ErrorIs(t, ValidateRequest(g, Request{Scale: 1, Depth: g.MaxDepth() + 1}), core.ErrDepthExceeded)
			assert.ErrorIs(t, ValidateRequest(g, Request{Scale: nan, Depth: 1}), core.ErrInvalidScale)
		})
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(KindSierpinski, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSierpinskiMaxDepth, g.MaxDepth())

	g, err = NewGenerator(KindMenger, 2)
	require.NoError(t, err)
	assert.Equal(t, KindMenger, g.Kind())
	assert.Equal(t, uint32(2), g.MaxDepth())

	_, err = NewGenerator(Kind("koch"), 0)
	assert.ErrorIs(t, err, core.ErrUnknownGenerator)

	k, err := ParseKind(" Menger ")
	require.NoError(t, err)
	assert.Equal(t, KindMenger, k)
	_, err = ParseKind("cantor")
	assert.ErrorIs(t, err, core.ErrUnknownGenerator)
}
