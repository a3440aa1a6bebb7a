package scene

import (
	"bytes"
	"fmt"
	stdmath "math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"

	"pathtracer/core"
)

// Texture holds CPU-side pixel data in RGBA8 format (4 bytes per
// pixel, row-major, top-to-bottom).
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// LoadTexture reads an image file from disk. PNG, JPEG, BMP, TIFF and
// GIF are accepted.
func LoadTexture(path string) (*Texture, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	nrgba := imaging.Clone(img)
	return &Texture{
		Name:   path,
		Width:  nrgba.Bounds().Dx(),
		Height: nrgba.Bounds().Dy(),
		Pixels: nrgba.Pix,
	}, nil
}

// ColorAt samples the texel containing (u, v). Coordinates wrap, so
// tiling UVs outside [0,1) behave as expected.
func (t *Texture) ColorAt(u, v float32) core.Color {
	x := int(stdmath.Floor(float64(u * float32(t.Width))))
	y := int(stdmath.Floor(float64(v * float32(t.Height))))
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height

	i := (y*t.Width + x) * 4
	return core.Color{
		R: float32(t.Pixels[i]) / 255.0,
		G: float32(t.Pixels[i+1]) / 255.0,
		B: float32(t.Pixels[i+2]) / 255.0,
	}
}

// TextureCache deduplicates textures by file content, so materials
// referencing the same map share one decoded copy.
type TextureCache struct {
	byHash map[uint64]*Texture
}

func NewTextureCache() *TextureCache {
	return &TextureCache{byHash: make(map[uint64]*Texture)}
}

// Load returns the cached texture for the file's content hash, or
// decodes and caches it.
func (c *TextureCache) Load(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture %q: %w", path, err)
	}

	key := xxhash.Sum64(data)
	if tex, ok := c.byHash[key]; ok {
		return tex, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	nrgba := imaging.Clone(img)
	tex := &Texture{
		Name:   path,
		Width:  nrgba.Bounds().Dx(),
		Height: nrgba.Bounds().Dy(),
		Pixels: nrgba.Pix,
	}
	c.byHash[key] = tex
	return tex, nil
}

// NewSolidTexture creates a 1x1 texture with the given RGBA values.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}
