package render

import (
	"image"
	stdmath "math"
	"runtime"
	"sync"
	"sync/atomic"

	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/scene"
)

// Renderer drives the per-frame pipeline: sample and accumulate, two
// filter passes, then tonemap into the BGRA buffer. Phases run
// data-parallel over rows with a barrier between them; each pixel is
// written by exactly one worker per phase.
type Renderer struct {
	Scene  *scene.Scene
	Config Config

	Acc        *Accumulator
	Buffer     []core.Pixel
	integrator Integrator
	filter     *Filter

	workers int
	rngSalt uint32
}

func NewRenderer(sc *scene.Scene, cfg Config) *Renderer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Renderer{
		Scene:   sc,
		Config:  cfg,
		Acc:     NewAccumulator(cfg.Width, cfg.Height),
		Buffer:  make([]core.Pixel, cfg.Width*cfg.Height),
		workers: workers,
	}
	r.integrator = Integrator{Scene: sc, Config: &r.Config}
	r.filter = NewFilter(&r.Config)
	return r
}

// parallelRows fans rows out over the worker pool and waits for all of
// them; this is the barrier between pipeline phases. Every worker gets
// its own RNG, reseeded from a global counter each phase.
func (r *Renderer) parallelRows(fn func(y int, rng *math.RNG)) {
	var next int64
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		seed := atomic.AddUint32(&r.rngSalt, 0x9e3779b9)
		wg.Add(1)
		go func(seed uint32) {
			defer wg.Done()
			rng := math.NewRNG(seed)
			for {
				y := int(atomic.AddInt64(&next, 1)) - 1
				if y >= r.Config.Height {
					return
				}
				fn(y, rng)
			}
		}(seed)
	}
	wg.Wait()
}

// RenderFrame adds one sample per pixel (with supersampling, the
// average of four rays), filters, and fills the pixel buffer. Camera motion restarts
// accumulation first.
func (r *Renderer) RenderFrame() {
	if r.Scene.Camera.Moved() {
		r.Acc.Reset()
	}
	r.Acc.BeginFrame()

	r.parallelRows(r.sampleRow)

	if r.filter.Enabled() {
		r.parallelRows(func(y int, _ *math.RNG) {
			for x := 0; x < r.Config.Width; x++ {
				r.filter.filterPixel(r.Acc, x, y, true)
			}
		})
		r.parallelRows(func(y int, _ *math.RNG) {
			for x := 0; x < r.Config.Width; x++ {
				r.filter.normalizeFirstPass(&r.Acc.Pixels[x+y*r.Config.Width])
			}
		})
		r.parallelRows(func(y int, _ *math.RNG) {
			for x := 0; x < r.Config.Width; x++ {
				r.filter.filterPixel(r.Acc, x, y, false)
			}
		})
	}

	r.parallelRows(r.tonemapRow)
}

func (r *Renderer) sampleRow(y int, rng *math.RNG) {
	cam := r.Scene.Camera
	for x := 0; x < r.Config.Width; x++ {
		id := x + y*r.Config.Width
		pixel := &r.Acc.Pixels[id]

		var color core.Color
		if r.Config.UseSSAA {
			// Four stratified rays, averaged.
			for i := 0; i < 4; i++ {
				ray := cam.PrimaryRay(x, y, r.Config.Width, r.Config.Height, float32(i)*0.25, 0.25, rng)
				color = color.Add(r.integrator.Sample(ray, pixel, rng))
			}
			color = color.Mul(0.25)
		} else {
			ray := cam.PrimaryRay(x, y, r.Config.Width, r.Config.Height, 0.5, 0, rng)
			color = r.integrator.Sample(ray, pixel, rng)
		}

		r.Acc.Add(id, color)
	}
}

func (r *Renderer) tonemapRow(y int, _ *math.RNG) {
	w, h := r.Config.Width, r.Config.Height
	invMaxDist := float32(1 / stdmath.Sqrt(float64(w*w+h*h)/4))

	for x := 0; x < w; x++ {
		id := x + y*w
		pixel := &r.Acc.Pixels[id]

		// Remodulate the first-hit albedo the filter was blind to.
		result := pixel.Illumination.MulColor(pixel.Albedo).GammaCorrect()
		if r.Config.UseVignette {
			result = result.Vignette(x-w/2, y-h/2, invMaxDist)
		}
		r.Buffer[id] = result.ToPixel()
	}
}

// Image copies the pixel buffer into an NRGBA image for file output.
func (r *Renderer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Config.Width, r.Config.Height))
	for i, p := range r.Buffer {
		img.Pix[i*4+0] = uint8(p >> 16)
		img.Pix[i*4+1] = uint8(p >> 8)
		img.Pix[i*4+2] = uint8(p)
		img.Pix[i*4+3] = 255
	}
	return img
}
