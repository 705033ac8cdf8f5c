package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/fractal"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type SceneLoader struct{}

func (sl *SceneLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	sCfg, err := parseSceneFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     sCfg.Name,
		FullPath: path,
		DataSize: uint64(unsafe.Sizeof(metadata.SceneConfig{})),
		Data:     sCfg,
	}, nil
}

func (sl *SceneLoader) Unload(*metadata.Resource) error {
	return nil
}

func parseSceneFile(filename string) (*metadata.SceneConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sceneConfig := &metadata.SceneConfig{}
	if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(sceneConfig); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("scene %s: %s", filename, strict.String())
		}
		return nil, fmt.Errorf("scene %s: %w", filename, err)
	}

	if len(sceneConfig.Name) == 0 {
		sceneConfig.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if err := ValidateScene(sceneConfig); err != nil {
		core.LogError("scene %s rejected: %s", filename, err)
		return nil, err
	}
	return sceneConfig, nil
}

// ValidateScene checks a decoded scene before anything is spawned from it.
func ValidateScene(scene *metadata.SceneConfig) error {
	kind, err := fractal.ParseKind(scene.Generator)
	if err != nil {
		return err
	}
	scene.Generator = string(kind)

	if !math.IsFinite(scene.Scale) || scene.Scale <= 0 {
		return fmt.Errorf("scale %v: %w", scene.Scale, core.ErrInvalidScale)
	}
	if !scene.OriginVec().IsFinite() {
		return fmt.Errorf("origin %v: %w", scene.Origin, core.ErrInvalidPosition)
	}

	maxDepth := scene.MaxDepth
	if maxDepth == 0 {
		maxDepth = fractal.DefaultSierpinskiMaxDepth
		if kind == fractal.KindMenger {
			maxDepth = fractal.DefaultMengerMaxDepth
		}
	}
	if scene.Depth > maxDepth {
		return fmt.Errorf("depth %d > max_depth %d: %w", scene.Depth, maxDepth, core.ErrDepthExceeded)
	}

	for i, shape := range scene.Shapes {
		if !math.IsFinite(shape.Scale) || shape.Scale <= 0 {
			return fmt.Errorf("shape %d: scale %v: %w", i, shape.Scale, core.ErrInvalidScale)
		}
		if !shape.PositionVec().IsFinite() {
			return fmt.Errorf("shape %d: position %v: %w", i, shape.Position, core.ErrInvalidPosition)
		}
	}
	return nil
}
