package scene

import (
	"pathtracer/core"
	"pathtracer/math"
)

// Material describes how a surface scatters light. Reflection and
// Refraction are branch probabilities with Reflection+Refraction <= 1;
// the remainder is the diffuse fraction.
type Material struct {
	Name       string
	Albedo     core.Color
	Texture    *Texture // nil = flat albedo
	Reflection float32
	Refraction float32
	IoR        float32 // 1 = no refraction interface, glass is ~1.5
	Density    float32 // Beer-Lambert absorption inside the medium
}

// NewMaterial clamps the branch probabilities so their sum stays <= 1.
func NewMaterial(reflection, refraction, ior float32, albedo core.Color, texture *Texture) Material {
	reflection = math.Clamp(reflection, 0, 1)
	refraction = math.Clamp(refraction, 0, 1)
	if reflection+refraction > 1 {
		reflection = 1 - refraction
	}
	if ior < 0 {
		ior = 0
	}
	return Material{
		Albedo:     albedo,
		Texture:    texture,
		Reflection: reflection,
		Refraction: refraction,
		IoR:        ior,
	}
}

// DefaultMaterial is plain white diffuse, used for primitives with no
// material reference.
func DefaultMaterial() Material {
	return NewMaterial(0, 0, 1, core.ColorWhite, nil)
}

// Diffuse returns the probability of the diffuse branch.
func (m *Material) Diffuse() float32 {
	return 1 - m.Reflection - m.Refraction
}

// ColorAt looks up the surface color, sampling the texture when set.
func (m *Material) ColorAt(uv math.Vec2) core.Color {
	if m.Texture != nil {
		return m.Texture.ColorAt(uv.X, uv.Y)
	}
	return m.Albedo
}
