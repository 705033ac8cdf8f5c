package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type GeometrySystemConfig struct {
	/**
	 * @brief Max number of geometries that can be loaded at once.
	 * NOTE: Should be significantly greater than the number of static meshes because
	 * there can and will be more than one of these per mesh.
	 */
	MaxGeometryCount uint32
}

type geometryReference struct {
	referenceCount uint64
	autoRelease    bool
	geometry       *metadata.Geometry
}

type GeometrySystem struct {
	Config          *GeometrySystemConfig
	DefaultGeometry *metadata.Geometry

	mu         sync.Mutex
	registered []*geometryReference
	byName     map[string]uint32

	materialSystem *MaterialSystem
	renderer       *renderer.Renderer
}

/**
 * @brief Creates the geometry system. Call Initialize once the material
 * system has its default material.
 */
func NewGeometrySystem(config *GeometrySystemConfig, ms *MaterialSystem, r *renderer.Renderer) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &GeometrySystem{
		Config:         config,
		registered:     make([]*geometryReference, config.MaxGeometryCount),
		byName:         make(map[string]uint32),
		materialSystem: ms,
		renderer:       r,
	}, nil
}

// Initialize uploads the default geometry, a unit cube.
func (gs *GeometrySystem) Initialize() error {
	config := GeometrySystemGenerateCubeConfig(1, 1, 1, 1, 1, metadata.DefaultGeometryName, metadata.DefaultMaterialName)
	g, err := gs.AcquireFromConfig(config, false)
	if err != nil {
		core.LogFatal("Failed to create default geometry. Application cannot continue.")
		return err
	}
	gs.DefaultGeometry = g
	return nil
}

func (gs *GeometrySystem) Shutdown() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for i, ref := range gs.registered {
		if ref == nil {
			continue
		}
		gs.destroyGeometry(ref.geometry)
		gs.registered[i] = nil
	}
	gs.byName = make(map[string]uint32)
	gs.DefaultGeometry = nil
	return nil
}

/**
 * @brief Acquires an existing geometry by id.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if id != metadata.InvalidID && id < uint32(len(gs.registered)) && gs.registered[id] != nil {
		gs.registered[id].referenceCount++
		return gs.registered[id].geometry, nil
	}
	err := fmt.Errorf("func AcquireByID cannot load invalid geometry id %d", id)
	core.LogError(err.Error())
	return nil, err
}

// AcquireByName acquires an existing geometry by the name it was registered with.
func (gs *GeometrySystem) AcquireByName(name string) (*metadata.Geometry, error) {
	gs.mu.Lock()
	id, ok := gs.byName[name]
	gs.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("geometry '%s' is not registered", name)
	}
	return gs.AcquireByID(id)
}

/**
 * @brief Registers and acquires a new geometry using the given config. When
 * autoRelease is set the geometry is destroyed as its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if _, ok := gs.byName[config.Name]; ok {
		return nil, fmt.Errorf("geometry '%s' is already registered", config.Name)
	}

	slot := metadata.InvalidID
	for i := range gs.registered {
		if gs.registered[i] == nil {
			slot = uint32(i)
			break
		}
	}
	if slot == metadata.InvalidID {
		err := fmt.Errorf("unable to obtain free slot for geometry. Adjust configuration to allow more space")
		core.LogError(err.Error())
		return nil, err
	}

	geometry := &metadata.Geometry{
		ID:         slot,
		InternalID: metadata.InvalidID,
		Name:       config.Name,
	}
	if err := gs.renderer.CreateGeometry(geometry, config.Vertices, config.Indices); err != nil {
		core.LogError("failed to create geometry '%s': %s", config.Name, err)
		return nil, err
	}

	// Copy over extents, center, etc.
	geometry.Center = config.Center
	geometry.Extents.Min = config.MinExtents
	geometry.Extents.Max = config.MaxExtents

	if len(config.MaterialName) > 0 {
		mat, err := gs.materialSystem.Acquire(config.MaterialName)
		if err != nil {
			core.LogWarn("geometry '%s': %s. Using the default material.", config.Name, err)
			mat = gs.materialSystem.DefaultMaterial
		}
		geometry.Material = mat
	}

	gs.registered[slot] = &geometryReference{
		referenceCount: 1,
		autoRelease:    autoRelease,
		geometry:       geometry,
	}
	gs.byName[config.Name] = slot
	core.LogDebug("geometry '%s' registered with id %d (%d vertices, %d indices)", geometry.Name, slot, geometry.VertexCount, geometry.IndexCount)
	return geometry, nil
}

/**
 * @brief Releases a reference to the provided geometry.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	if geometry == nil || geometry.ID == metadata.InvalidID {
		core.LogWarn("geometry system release cannot release invalid geometry id. Nothing was done.")
		return
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	id := geometry.ID
	if id >= uint32(len(gs.registered)) || gs.registered[id] == nil || gs.registered[id].geometry != geometry {
		core.LogError("Geometry id mismatch. Check registration logic, as this should never occur.")
		return
	}
	ref := gs.registered[id]
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount < 1 && ref.autoRelease {
		delete(gs.byName, geometry.Name)
		gs.destroyGeometry(geometry)
		gs.registered[id] = nil
	}
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.DefaultGeometry
}

func (gs *GeometrySystem) destroyGeometry(geometry *metadata.Geometry) {
	gs.renderer.DestroyGeometry(geometry)
	geometry.InternalID = metadata.InvalidID
	geometry.ID = metadata.InvalidID

	if geometry.Material != nil && len(geometry.Material.Name) > 0 {
		gs.materialSystem.Release(geometry.Material.Name)
		geometry.Material = nil
	}
}

// cubeFaces lists, per face, the outward normal and the corner signs of the
// four vertices (0 and 1 form the diagonal, see the index pattern below).
var cubeFaces = [6]struct {
	normal  math.Vec3
	corners [4][3]float32
}{
	{math.Vec3{X: 0, Y: 0, Z: 1}, [4][3]float32{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}}},         // front
	{math.Vec3{X: 0, Y: 0, Z: -1}, [4][3]float32{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}},    // back
	{math.Vec3{X: -1, Y: 0, Z: 0}, [4][3]float32{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}},    // left
	{math.Vec3{X: 1, Y: 0, Z: 0}, [4][3]float32{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}}},         // right
	{math.Vec3{X: 0, Y: -1, Z: 0}, [4][3]float32{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}},    // bottom
	{math.Vec3{X: 0, Y: 1, Z: 0}, [4][3]float32{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}}},         // top
}

/**
 * @brief Generates configuration for an axis aligned box centred on the
 * origin. Every Menger cell is drawn with the unit version of it.
 *
 * @param width The overall width of the box. Zero defaults to one.
 * @param height The overall height of the box. Zero defaults to one.
 * @param depth The overall depth of the box. Zero defaults to one.
 * @param tileX The number of times the texture tiles across each face on the x-axis.
 * @param tileY The number of times the texture tiles across each face on the y-axis.
 * @param name The name of the generated geometry.
 * @param materialName The name of the material to be used.
 * @return A geometry configuration which can then be fed into AcquireFromConfig().
 */
func GeometrySystemGenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	uvs := [4]math.Vec2{
		math.NewVec2(0, 0),
		math.NewVec2(tileX, tileY),
		math.NewVec2(0, tileY),
		math.NewVec2(tileX, 0),
	}

	config := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, 4*len(cubeFaces)),
		Indices:  make([]uint32, 6*len(cubeFaces)),
	}
	for f, face := range cubeFaces {
		vOffset := f * 4
		for c, corner := range face.corners {
			config.Vertices[vOffset+c] = math.Vertex3D{
				Position: math.NewVec3(corner[0]*half.X, corner[1]*half.Y, corner[2]*half.Z),
				Normal:   face.normal,
				Texcoord: uvs[c],
				Colour:   math.NewVec4(1, 1, 1, 1),
			}
		}
		iOffset := f * 6
		for i, idx := range [6]int{0, 1, 2, 0, 3, 1} {
			config.Indices[iOffset+i] = uint32(vOffset + idx)
		}
	}

	extents := math.GeometryExtents(config.Vertices)
	config.MinExtents = extents.Min
	config.MaxExtents = extents.Max
	config.Center = extents.Center()

	config.Name = nameOrDefault(name, metadata.DefaultGeometryName)
	config.MaterialName = nameOrDefault(materialName, metadata.DefaultMaterialName)

	math.GeometryGenerateTangents(config.Vertices, config.Indices)
	return config
}

/**
 * @brief Generates configuration for the base mesh every Sierpinski node is
 * drawn with. Normals are derived from the face winding.
 */
func GeometrySystemGenerateTetrahedronConfig(mesh fractal.BaseMesh, name, materialName string) (*metadata.GeometryConfig, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	vertices, indices := mesh.Vertex3D()
	extents := math.GeometryExtents(vertices)
	return &metadata.GeometryConfig{
		Vertices:     vertices,
		Indices:      indices,
		Center:       extents.Center(),
		MinExtents:   extents.Min,
		MaxExtents:   extents.Max,
		Name:         nameOrDefault(name, metadata.TetrahedronGeometryName),
		MaterialName: nameOrDefault(materialName, metadata.DefaultMaterialName),
	}, nil
}

func nameOrDefault(name, fallback string) string {
	if len(name) > 0 {
		return name
	}
	return fallback
}
