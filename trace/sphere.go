package trace

import (
	stdmath "math"

	"pathtracer/math"
)

// Sphere is an analytic sphere referencing a material by index.
type Sphere struct {
	Center   math.Vec3
	Radius   float32
	Material int32
}

func NewSphere(center math.Vec3, radius float32, material int32) Sphere {
	return Sphere{Center: center, Radius: radius, Material: material}
}

// intersectionDistance returns the parameter of the near root, or a
// non-positive value on a miss. Only the near root is computed, so a
// ray starting inside the sphere also gets a non-positive value.
func (s *Sphere) intersectionDistance(r *Ray) float32 {
	c := s.Center.Sub(r.Origin)
	t := c.Dot(r.Direction)
	q := c.Sub(r.Direction.Mul(t))
	p2 := q.Dot(q)
	r2 := s.Radius * s.Radius
	if p2 > r2 {
		return -1
	}
	return t - float32(stdmath.Sqrt(float64(r2-p2)))
}

// Intersect records a hit on the ray when the sphere is the nearest
// primitive so far.
func (s *Sphere) Intersect(r *Ray, index int32) bool {
	t := s.intersectionDistance(r)
	if t <= 0 || t >= r.T {
		return false
	}
	r.RecordHit(t, HitSphere, index)
	return true
}

// Occludes reports whether the sphere blocks the ray before its current T.
func (s *Sphere) Occludes(r *Ray) bool {
	t := s.intersectionDistance(r)
	return t > 0 && t < r.T
}

// NormalAt returns the outward unit normal at a surface point.
func (s *Sphere) NormalAt(point math.Vec3) math.Vec3 {
	return point.Sub(s.Center).Mul(1 / s.Radius)
}

// UVAt maps a surface point to spherical texture coordinates.
func (s *Sphere) UVAt(point math.Vec3) math.Vec2 {
	d := point.Sub(s.Center).Normalize()
	u := (1 + float32(stdmath.Atan2(float64(d.X), float64(-d.Z)))*math.InvPi) / 2
	v := float32(stdmath.Acos(float64(math.Clamp(d.Y, -1, 1)))) * math.InvPi
	return math.Vec2{X: u, Y: v}
}

// Bounds returns the tight axis-aligned box around the sphere.
func (s *Sphere) Bounds() AABB {
	r := math.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}
