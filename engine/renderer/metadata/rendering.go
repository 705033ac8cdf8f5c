package metadata

import "github.com/spaghettifunk/anima-fractals/engine/math"

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Back faces are culled by default; fractal meshes wind outward. */
	CullMode FaceCullMode
}

type GeometryRenderData struct {
	Model      math.Mat4
	GeometryID uint32
	MaterialID uint32
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame. Consists of the frame timing
 * and every instance that should be visible.
 */
type RenderPacket struct {
	DeltaTime   float64
	FrameNumber uint64
	/** @brief The placeholder shapes, drawn when visible. */
	Shapes []*Shape
	/** @brief The fractal instances emitted by the last generation. */
	Instances []Instance
}
