package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type MaterialLoader struct{}

// materialFile mirrors assets/materials/<name>.toml.
type materialFile struct {
	Name           string     `toml:"name"`
	DiffuseColour  [4]float32 `toml:"diffuse_colour"`
	DiffuseMapName string     `toml:"diffuse_map_name"`
}

func (ml *MaterialLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	mCfg, err := parseMaterialFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Name:     mCfg.Name,
		FullPath: path,
		DataSize: uint64(unsafe.Sizeof(metadata.MaterialConfig{})),
		Data:     mCfg,
	}, nil
}

func parseMaterialFile(filename string) (*metadata.MaterialConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	// Colour defaults to opaque white when the file leaves it out.
	mf := materialFile{DiffuseColour: [4]float32{1, 1, 1, 1}}
	if err := toml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("material %s: %w", filename, err)
	}

	materialConfig := &metadata.MaterialConfig{
		Name:           mf.Name,
		DiffuseColour:  math.NewVec4(mf.DiffuseColour[0], mf.DiffuseColour[1], mf.DiffuseColour[2], mf.DiffuseColour[3]),
		DiffuseMapName: strings.TrimSpace(mf.DiffuseMapName),
	}
	if len(materialConfig.Name) == 0 {
		materialConfig.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	// Perform validation
	if err := validateMaterial(materialConfig); err != nil {
		core.LogError("material %s rejected: %s", filename, err)
		return nil, err
	}
	return materialConfig, nil
}

func validateMaterial(material *metadata.MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	// Check that DiffuseColour values are within [0.0, 1.0] range
	if !isValidVec4(material.DiffuseColour) {
		return fmt.Errorf("diffuse_colour values must be between 0.0 and 1.0")
	}
	return nil
}

func isValidVec4(v math.Vec4) bool {
	return inRange(v.X) && inRange(v.Y) && inRange(v.Z) && inRange(v.W)
}

func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}

func (ml *MaterialLoader) Unload(*metadata.Resource) error {
	return nil
}
