package metadata

type ResourceType int

const (
	ResourceTypeText ResourceType = iota
	ResourceTypeImage
	/** @brief TOML material description under materials/. */
	ResourceTypeMaterial
	/** @brief TOML fractal scene under scenes/. */
	ResourceTypeScene
	/** @brief Anything the asset manager indexes but has no loader for. */
	ResourceTypeCustom
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeText:
		return "text"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeScene:
		return "scene"
	}
	return "custom"
}

/**
 * @brief The result of a loader. Data holds the decoded value:
 * *SceneConfig, *MaterialConfig or *Texture depending on the type.
 */
type Resource struct {
	Name     string
	FullPath string
	DataSize uint64
	Data     interface{}
}
