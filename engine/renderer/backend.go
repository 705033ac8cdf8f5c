package renderer

import (
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

// RendererBackend is the boundary to the graphics API. Geometry and textures
// are uploaded once and referenced by their InternalID afterwards.
type RendererBackend interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error
	DestroyGeometry(geometry *metadata.Geometry)
	DrawGeometry(data *metadata.GeometryRenderData)
	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture)
}

type RendererType uint8

const (
	Headless RendererType = iota
	Vulkan
)
