package main

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pathtracer/core"
	"pathtracer/scene"
)

var hudColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}

// bufferImage adapts the BGRA pixel buffer to draw.Image so the font
// drawer can write glyphs straight into the frame.
type bufferImage struct {
	pix    []core.Pixel
	width  int
	height int
}

func (b *bufferImage) ColorModel() color.Model { return color.RGBAModel }

func (b *bufferImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

func (b *bufferImage) At(x, y int) color.Color {
	p := b.pix[x+y*b.width]
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 255}
}

func (b *bufferImage) Set(x, y int, c color.Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	r, g, bl, _ := c.RGBA()
	b.pix[x+y*b.width] = core.Pixel(r>>8)<<16 | core.Pixel(g>>8)<<8 | core.Pixel(bl>>8)
}

// drawHUD overlays camera state, the sample count and the frame rate.
func drawHUD(buffer []core.Pixel, width, height int, cam *scene.Camera, frames uint32, fps float32) {
	img := &bufferImage{pix: buffer, width: width, height: height}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(hudColor),
		Face: basicfont.Face7x13,
	}

	lines := []string{
		fmt.Sprintf("Pos: %.2f %.2f %.2f", cam.Position.X, cam.Position.Y, cam.Position.Z),
		fmt.Sprintf("Dir: %.2f %.2f %.2f", cam.Direction.X, cam.Direction.Y, cam.Direction.Z),
		fmt.Sprintf("Samples: %d", frames),
		fmt.Sprintf("FPS: %.1f", fps),
	}
	for i, line := range lines {
		d.Dot = fixed.P(4, 14+i*14)
		d.DrawString(line)
	}
}
