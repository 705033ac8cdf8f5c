package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

// FrameStats is what the headless backend saw during one frame.
type FrameStats struct {
	FrameNumber uint64
	DrawCalls   int
	// Draw calls per geometry handle.
	PerGeometry map[uint32]int
}

/**
 * @brief A backend that keeps uploaded resources in memory and counts draw
 * calls instead of talking to a GPU. Used by tests and by the engine when no
 * window is available.
 */
type HeadlessBackend struct {
	mu          sync.Mutex
	initialized bool
	inFrame     bool
	frameNumber uint64
	nextID      uint32
	geometries  map[uint32]int // internal id -> index count
	textures    map[uint32]int // internal id -> byte size
	current     FrameStats
	last        FrameStats
}

func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		geometries: make(map[uint32]int),
		textures:   make(map[uint32]int),
	}
}

func (hb *HeadlessBackend) Initialize(config *metadata.RendererBackendConfig) error {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	hb.initialized = true
	core.LogInfo("headless renderer backend initialized for '%s'", config.ApplicationName)
	return nil
}

func (hb *HeadlessBackend) Shutdown() error {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if len(hb.geometries) > 0 {
		core.LogWarn("headless backend shutting down with %d geometries still uploaded", len(hb.geometries))
	}
	hb.geometries = make(map[uint32]int)
	hb.textures = make(map[uint32]int)
	hb.initialized = false
	return nil
}

func (hb *HeadlessBackend) BeginFrame(deltaTime float64) error {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if !hb.initialized {
		return fmt.Errorf("BeginFrame called before Initialize")
	}
	if hb.inFrame {
		return fmt.Errorf("BeginFrame called twice without EndFrame")
	}
	hb.inFrame = true
	hb.current = FrameStats{
		FrameNumber: hb.frameNumber,
		PerGeometry: make(map[uint32]int),
	}
	return nil
}

func (hb *HeadlessBackend) EndFrame(deltaTime float64) error {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if !hb.inFrame {
		return fmt.Errorf("EndFrame called without BeginFrame")
	}
	hb.inFrame = false
	hb.last = hb.current
	hb.frameNumber++
	return nil
}

func (hb *HeadlessBackend) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("geometry '%s' has no vertex or index data", geometry.Name)
	}
	hb.mu.Lock()
	defer hb.mu.Unlock()
	geometry.InternalID = hb.nextID
	hb.nextID++
	hb.geometries[geometry.InternalID] = len(indices)
	geometry.VertexCount = uint32(len(vertices))
	geometry.IndexCount = uint32(len(indices))
	return nil
}

func (hb *HeadlessBackend) DestroyGeometry(geometry *metadata.Geometry) {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	delete(hb.geometries, geometry.InternalID)
	geometry.InternalID = metadata.InvalidID
}

func (hb *HeadlessBackend) DrawGeometry(data *metadata.GeometryRenderData) {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if !hb.inFrame {
		core.LogWarn("DrawGeometry outside of a frame ignored")
		return
	}
	hb.current.DrawCalls++
	hb.current.PerGeometry[data.GeometryID]++
}

func (hb *HeadlessBackend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	want := int(texture.Width * texture.Height * uint32(texture.ChannelCount))
	if len(pixels) != want {
		return fmt.Errorf("texture '%s' expects %d bytes, got %d", texture.Name, want, len(pixels))
	}
	hb.mu.Lock()
	defer hb.mu.Unlock()
	texture.InternalID = hb.nextID
	hb.nextID++
	hb.textures[texture.InternalID] = len(pixels)
	return nil
}

func (hb *HeadlessBackend) TextureDestroy(texture *metadata.Texture) {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	delete(hb.textures, texture.InternalID)
	texture.InternalID = metadata.InvalidID
}

// LastFrame returns the stats of the most recently completed frame.
func (hb *HeadlessBackend) LastFrame() FrameStats {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return hb.last
}

// Uploaded reports how many geometries and textures are resident.
func (hb *HeadlessBackend) Uploaded() (geometries, textures int) {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return len(hb.geometries), len(hb.textures)
}
