package renderer

import (
	"fmt"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

// Renderer is the frontend the systems talk to. It owns the backend.
type Renderer struct {
	backend     RendererBackend
	frameNumber uint64
}

func New(rendererType RendererType) (*Renderer, error) {
	switch rendererType {
	case Headless:
		return NewWithBackend(NewHeadlessBackend()), nil
	}
	err := fmt.Errorf("renderer type %d is not available in this build", rendererType)
	core.LogError(err.Error())
	return nil, err
}

func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Initialize(appName string) error {
	return r.backend.Initialize(&metadata.RendererBackendConfig{
		ApplicationName: appName,
		CullMode:        metadata.FaceCullModeBack,
	})
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

/**
 * @brief Draws every visible placeholder and every fractal instance in the
 * packet, bracketed by BeginFrame/EndFrame.
 */
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}

	for _, shape := range packet.Shapes {
		if shape == nil || !shape.Visible {
			continue
		}
		r.backend.DrawGeometry(&metadata.GeometryRenderData{
			Model:      shape.Transform.GetWorld(),
			GeometryID: shape.Geometry,
			MaterialID: shape.Material,
		})
	}
	// Instances are read-only; the matrix is built on a copy.
	for i := range packet.Instances {
		inst := &packet.Instances[i]
		transform := inst.Transform
		r.backend.DrawGeometry(&metadata.GeometryRenderData{
			Model:      transform.GetWorld(),
			GeometryID: inst.GeometryID,
			MaterialID: inst.MaterialID,
		})
	}

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	return r.backend.CreateGeometry(geometry, vertices, indices)
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) {
	r.backend.DestroyGeometry(geometry)
}

func (r *Renderer) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	return r.backend.TextureCreate(pixels, texture)
}

func (r *Renderer) TextureDestroy(texture *metadata.Texture) {
	r.backend.TextureDestroy(texture)
}
