package render

import (
	stdmath "math"

	"pathtracer/core"
	"pathtracer/math"
)

// Filter is the separable two-pass edge-aware denoiser. A 1-D spatial
// Gaussian is modulated per pixel pair by feature weights from the
// G-buffer: illumination distance, first-hit position distance, normal
// angle and material equality. Each pass writes only the pixel it is
// centered on, so passes parallelise over pixels with a barrier in
// between.
type Filter struct {
	cfg    *Config
	kernel []float32 // half kernel; kernel[0] is the center tap
}

// NewFilter precomputes the spatial half kernel. A zero kernel size
// disables filtering.
func NewFilter(cfg *Config) *Filter {
	f := &Filter{cfg: cfg}
	if cfg.KernelSize <= 0 {
		return f
	}
	center := cfg.KernelSize / 2
	s := 2 * cfg.SigmaSpatial * cfg.SigmaSpatial
	f.kernel = make([]float32, center+1)
	for i := range f.kernel {
		r := float32(i)
		f.kernel[i] = float32(stdmath.Exp(float64(-(r*r)/s))) / (math.Pi * s)
	}
	return f
}

// Enabled reports whether the filter will run.
func (f *Filter) Enabled() bool {
	return len(f.kernel) > 0
}

func weightRaw(sigma, value float32) float32 {
	return float32(stdmath.Exp(float64(-value / (2 * sigma * sigma))))
}

// featureWeight compares the G-buffer features of two pixels. The
// illumination term reads Filtered on the second pass, where the
// horizontal result lives.
func (f *Filter) featureWeight(center, other *PixelData, secondPass bool) float32 {
	cIllum, oIllum := center.Illumination, other.Illumination
	if secondPass {
		cIllum, oIllum = center.Filtered, other.Filtered
	}

	weight := weightRaw(f.cfg.SigmaIllumination, cIllum.SqrDistance(oIllum))
	weight *= weightRaw(f.cfg.SigmaPosition, center.FirstIntersect.Sub(other.FirstIntersect).LengthSqr())

	// Unit normals: a large dot product means a small angle.
	angle := 1 - center.InterNormal.Dot(other.InterNormal)
	weight *= weightRaw(f.cfg.SigmaNormal, angle*angle)

	if center.MaterialIndex != other.MaterialIndex {
		weight *= weightRaw(f.cfg.SigmaMaterial, 1)
	}
	return weight
}

// filterPixel runs one direction of the separable kernel centered on
// (x, y). The first pass gathers Illumination into Filtered; the
// second gathers Filtered into Illumination.
func (f *Filter) filterPixel(acc *Accumulator, x, y int, firstPass bool) {
	center := &acc.Pixels[x+y*acc.Width]
	centerTaps := len(f.kernel) - 1

	var sum core.Color
	var total float32

	for i := -centerTaps; i <= centerTaps; i++ {
		ox, oy := x, y
		if firstPass {
			ox += i
		} else {
			oy += i
		}
		if ox < 0 || ox >= acc.Width || oy < 0 || oy >= acc.Height {
			continue
		}

		other := &acc.Pixels[ox+oy*acc.Width]
		weight := f.kernel[abs(i)] * f.featureWeight(center, other, !firstPass)

		// Firefly suppression: an overbright center pixel does not
		// vote for itself.
		if i == 0 {
			limit := 3 * f.cfg.SigmaFirefly * f.cfg.SigmaFirefly
			if center.Illumination.Max() > limit {
				weight = 0
			}
		}
		if weight == 0 {
			continue
		}

		if firstPass {
			sum = sum.Add(other.Illumination.Mul(weight))
		} else {
			sum = sum.Add(other.Filtered.Mul(weight))
		}
		total += weight
	}

	if firstPass {
		center.Filtered = sum
		center.TotalWeight = total
	} else {
		if total > 0 {
			center.Illumination = sum.Mul(1 / total)
		}
		// total == 0 keeps the unfiltered illumination.
	}
}

// normalizeFirstPass divides the horizontal result by its weight. A
// zero weight falls back to the unfiltered pixel.
func (f *Filter) normalizeFirstPass(p *PixelData) {
	if p.TotalWeight > 0 {
		p.Filtered = p.Filtered.Mul(1 / p.TotalWeight)
	} else {
		p.Filtered = p.Illumination
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
