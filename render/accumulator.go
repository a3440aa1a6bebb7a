package render

import (
	"pathtracer/core"
	"pathtracer/math"
)

// MaterialMiss marks pixels whose primary ray left the scene, so the
// filter never mixes them with surface pixels.
const MaterialMiss = int32(-2147483647)

// PixelData is the per-pixel accumulator plus the G-buffer features
// that drive the edge-aware filter. Illumination is demodulated: the
// first-hit albedo is stored separately and multiplied back after
// filtering.
type PixelData struct {
	Accumulated  core.Color
	Illumination core.Color

	Albedo         core.Color
	FirstIntersect math.Vec3
	InterNormal    math.Vec3
	MaterialIndex  int32

	// Scratch for the two-pass filter.
	Filtered    core.Color
	TotalWeight float32
}

// Accumulator owns the pixel buffer and the progressive sample mean.
type Accumulator struct {
	Width  int
	Height int
	Frames uint32 // samples folded in since the last reset
	Pixels []PixelData
}

func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		Width:  width,
		Height: height,
		Pixels: make([]PixelData, width*height),
	}
}

// Reset discards the accumulated estimate, called on camera motion.
func (a *Accumulator) Reset() {
	a.Frames = 0
	for i := range a.Pixels {
		a.Pixels[i].Accumulated = core.ColorBlack
		a.Pixels[i].Illumination = core.ColorBlack
	}
}

// BeginFrame advances the sample count; each frame adds exactly one
// (possibly supersampled) sample per pixel.
func (a *Accumulator) BeginFrame() {
	a.Frames++
}

// Add folds a sample into the pixel's running mean.
func (a *Accumulator) Add(id int, c core.Color) {
	p := &a.Pixels[id]
	p.Accumulated = p.Accumulated.Add(c)
	p.Illumination = p.Accumulated.Mul(1 / float32(a.Frames))
}
