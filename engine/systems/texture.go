package systems

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

const (
	/** @brief Width and height of the debug texture in pixels. */
	DebugTextureSize = 8
	/** @brief Width and height of the default checkerboard texture. */
	defaultTextureSize = 16
)

// debugPalette is one row of the debug pattern, eight RGBA pixels.
var debugPalette = [DebugTextureSize * 4]uint8{
	255, 102, 159, 255,
	255, 159, 102, 255,
	236, 255, 102, 255,
	121, 255, 102, 255,
	102, 255, 198, 255,
	102, 198, 255, 255,
	121, 102, 255, 255,
	236, 102, 255, 255,
}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type textureReference struct {
	referenceCount uint64
	texture        *metadata.Texture
}

type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *metadata.Texture

	mu         sync.Mutex
	registered map[string]*textureReference
	ids        *core.IdentifierPool

	jobSystem *JobSystem
	renderer  *renderer.Renderer
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, r *renderer.Renderer) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		Config:     config,
		registered: make(map[string]*textureReference),
		ids:        core.NewIdentifierPool(int(config.MaxTextureCount)),
		jobSystem:  js,
		renderer:   r,
	}, nil
}

/**
 * @brief Creates the default texture, a blue/white checkerboard generated in
 * code so the engine has no asset dependency.
 */
func (ts *TextureSystem) Initialize() error {
	pixels := make([]uint8, defaultTextureSize*defaultTextureSize*4)
	for row := 0; row < defaultTextureSize; row++ {
		for col := 0; col < defaultTextureSize; col++ {
			i := (row*defaultTextureSize + col) * 4
			pixels[i+0], pixels[i+1], pixels[i+2], pixels[i+3] = 255, 255, 255, 255
			if (row%2 == 0) == (col%2 == 0) {
				pixels[i+0] = 0
				pixels[i+1] = 0
			}
		}
	}
	t, err := ts.Register(metadata.DEFAULT_TEXTURE_NAME, defaultTextureSize, defaultTextureSize, pixels)
	if err != nil {
		return err
	}
	ts.DefaultTexture = t
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for name, ref := range ts.registered {
		ts.renderer.TextureDestroy(ref.texture)
		delete(ts.registered, name)
	}
	return nil
}

/**
 * @brief Registers RGBA pixels under name and uploads them. Registering an
 * existing name is an error.
 */
func (ts *TextureSystem) Register(name string, width, height uint32, pixels []uint8) (*metadata.Texture, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, ok := ts.registered[name]; ok {
		return nil, fmt.Errorf("texture '%s' is already registered", name)
	}
	if uint32(len(ts.registered)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture system is full (%d). Adjust configuration to allow more", ts.Config.MaxTextureCount)
		core.LogError(err.Error())
		return nil, err
	}

	t := &metadata.Texture{
		TextureType:  metadata.TextureType2d,
		Format:       metadata.TextureFormatRGBA8UnormSRGB,
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Name:         name,
		Pixels:       pixels,
	}
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] < 255 {
			t.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
			break
		}
	}
	if err := ts.renderer.TextureCreate(pixels, t); err != nil {
		return nil, err
	}
	t.ID = ts.ids.Acquire(t)
	ts.registered[name] = &textureReference{referenceCount: 1, texture: t}
	return t, nil
}

// Acquire returns a registered texture and bumps its reference count.
func (ts *TextureSystem) Acquire(name string) (*metadata.Texture, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ref, ok := ts.registered[name]
	if !ok {
		return nil, fmt.Errorf("texture '%s' is not registered", name)
	}
	ref.referenceCount++
	return ref.texture, nil
}

// Release drops a reference; the texture is destroyed when none remain.
func (ts *TextureSystem) Release(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ref, ok := ts.registered[name]
	if !ok {
		core.LogWarn("texture system release: '%s' is not registered. Nothing was done.", name)
		return
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && name != metadata.DEFAULT_TEXTURE_NAME {
		ts.renderer.TextureDestroy(ref.texture)
		if err := ts.ids.Release(ref.texture.ID); err != nil {
			core.LogWarn(err.Error())
		}
		ref.texture.Generation = metadata.InvalidID
		delete(ts.registered, name)
	}
}

/**
 * @brief Builds the colourful 8x8 test pattern. Every row is the palette
 * rotated one pixel further to the right than the row above it.
 */
func DebugTexturePixels() []uint8 {
	palette := debugPalette
	rowBytes := DebugTextureSize * 4
	data := make([]uint8, DebugTextureSize*rowBytes)
	for y := 0; y < DebugTextureSize; y++ {
		copy(data[y*rowBytes:(y+1)*rowBytes], palette[:])
		// rotate right by one pixel
		var last [4]uint8
		copy(last[:], palette[rowBytes-4:])
		copy(palette[4:], palette[:rowBytes-4])
		copy(palette[:4], last[:])
	}
	return data
}

// GenerateDebugTexture registers a fresh debug pattern under a unique name.
func (ts *TextureSystem) GenerateDebugTexture() (*metadata.Texture, error) {
	name := fmt.Sprintf("%s-%s", metadata.DEBUG_TEXTURE_PREFIX, uuid.NewString())
	t, err := ts.Register(name, DebugTextureSize, DebugTextureSize, DebugTexturePixels())
	if err != nil {
		return nil, err
	}
	t.Flags |= metadata.TextureFlagBits(metadata.TextureFlagIsGenerated)
	core.LogDebug("generated debug texture '%s'", name)
	return t, nil
}

// ToImage wraps the texture pixels in an image.RGBA without copying.
func ToImage(t *metadata.Texture) (*image.RGBA, error) {
	if t.ChannelCount != 4 || len(t.Pixels) != int(t.Width*t.Height*4) {
		return nil, fmt.Errorf("texture '%s' is not a packed RGBA image", t.Name)
	}
	return &image.RGBA{
		Pix:    t.Pixels,
		Stride: int(t.Width) * 4,
		Rect:   image.Rect(0, 0, int(t.Width), int(t.Height)),
	}, nil
}

/**
 * @brief Writes the texture as a PNG, upscaled by factor with nearest
 * neighbour sampling so single texels stay crisp.
 */
func ExportPNG(t *metadata.Texture, path string, factor int) error {
	if factor < 1 {
		factor = 1
	}
	src, err := ToImage(t)
	if err != nil {
		return err
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx()*factor, src.Rect.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportPNGAsync runs ExportPNG on the job system. done may be nil.
func (ts *TextureSystem) ExportPNGAsync(t *metadata.Texture, path string, factor int, done func(error)) error {
	return ts.jobSystem.Submit(JobTask{
		Name:    "export " + t.Name,
		OnStart: func() error { return ExportPNG(t, path, factor) },
		OnComplete: func() {
			core.LogInfo("texture '%s' written to %s", t.Name, path)
			if done != nil {
				done(nil)
			}
		},
		OnFailure: func(err error) {
			if done != nil {
				done(err)
			}
		},
	})
}
