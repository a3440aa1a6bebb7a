package scene

import (
	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/trace"
)

// Light is a uniform emissive sphere. Lights are visible geometry: a
// camera ray that reaches one sees its radiance directly.
type Light struct {
	Center math.Vec3
	Radius float32
	Color  core.Color // emitted radiance
}

func NewLight(center math.Vec3, radius float32, color core.Color) Light {
	return Light{Center: center, Radius: radius, Color: color}
}

func (l *Light) sphere() trace.Sphere {
	return trace.Sphere{Center: l.Center, Radius: l.Radius}
}

// Intersect records a hit on the ray when the light is the nearest
// object so far.
func (l *Light) Intersect(r *trace.Ray, index int32) bool {
	s := l.sphere()
	if !s.Intersect(r, index) {
		return false
	}
	r.HitKind = trace.HitLight
	return true
}

// Occludes reports whether the light body blocks the ray before its
// current T.
func (l *Light) Occludes(r *trace.Ray) bool {
	s := l.sphere()
	return s.Occludes(r)
}

// SamplePoint returns a uniform point on the emitting surface.
func (l *Light) SamplePoint(rng *math.RNG) math.Vec3 {
	return math.PointOnSphere(rng, l.Radius).Add(l.Center)
}

// NormalAt returns the outward unit normal at a surface point.
func (l *Light) NormalAt(point math.Vec3) math.Vec3 {
	return point.Sub(l.Center).Mul(1 / l.Radius)
}

// Area returns the emitting surface area. Together with uniform
// full-sphere point sampling this makes the light PDF unbiased.
func (l *Light) Area() float32 {
	return 4 * math.Pi * l.Radius * l.Radius
}
