package assets

import "github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"

// Loader turns a file into a resource. Data carries the loader specific type:
// *metadata.SceneConfig, *metadata.MaterialConfig or *metadata.Texture.
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
