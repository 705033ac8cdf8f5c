package metadata

const (
	DEFAULT_TEXTURE_NAME string = "default"
	// Generated debug textures are named DEBUG_TEXTURE_PREFIX + "-" + uuid.
	DEBUG_TEXTURE_PREFIX string = "debug"
)

type TextureFlag int

const (
	/** @brief At least one pixel has alpha below 255. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Pixels were synthesized in code, not read from the asset tree. */
	TextureFlagIsGenerated TextureFlag = 0x2
)

type TextureFlagBits uint8

type TextureType int

const (
	TextureType2d TextureType = iota
)

type TextureFormat int

const (
	/** @brief Packed RGBA, one byte per channel. */
	TextureFormatRGBA8UnormSRGB TextureFormat = iota
)

/**
 * @brief A registered texture. Pixels are row-major RGBA and are kept on the
 * CPU side so they can be exported or re-uploaded.
 */
type Texture struct {
	ID          uint32
	InternalID  uint32
	TextureType TextureType
	Format      TextureFormat

	Width        uint32
	Height       uint32
	ChannelCount uint8
	Flags        TextureFlagBits
	// Bumped whenever the pixel data is replaced.
	Generation uint32

	Name   string
	Pixels []uint8
}
