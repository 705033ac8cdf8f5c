package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type TextureLoader struct{}

/**
 * @brief Decodes a PNG or JPEG file into tightly packed RGBA pixels. The
 * resource data is a *metadata.Texture that still has to be registered with
 * the texture system.
 */
func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	texture := &metadata.Texture{
		TextureType:  metadata.TextureType2d,
		Format:       metadata.TextureFormatRGBA8UnormSRGB,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
		ChannelCount: 4,
		Name:         name,
		Pixels:       rgba.Pix,
	}
	return &metadata.Resource{
		Name:     name + "." + format,
		FullPath: path,
		DataSize: uint64(len(rgba.Pix)),
		Data:     texture,
	}, nil
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}
