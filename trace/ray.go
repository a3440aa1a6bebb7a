package trace

import (
	stdmath "math"

	"pathtracer/math"
)

// Hit kinds recorded on a ray. Primitives live in parallel slices per
// kind; the pair (kind, index) identifies the nearest hit so far.
const (
	HitNone int32 = iota
	HitSphere
	HitTriangle
	HitLight
)

// Epsilon is the offset applied to secondary rays to avoid
// self-intersection at their origin.
const Epsilon = 1e-3

// Ray is a half line with a shrinking search interval. T only ever
// decreases during traversal.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
	T         float32
	HitKind   int32
	HitIndex  int32
}

func NewRay(origin, direction math.Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		T:         float32(stdmath.Inf(1)),
		HitKind:   HitNone,
		HitIndex:  -1,
	}
}

// At returns the point at parameter t along the ray.
func (r *Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitPoint returns the recorded intersection point.
func (r *Ray) HitPoint() math.Vec3 {
	return r.At(r.T)
}

// Offset nudges the origin along the direction, used on secondary rays.
func (r *Ray) Offset(dist float32) {
	r.Origin = r.Origin.Add(r.Direction.Mul(dist))
}

// RecordHit stores a nearer intersection.
func (r *Ray) RecordHit(t float32, kind, index int32) {
	r.T = t
	r.HitKind = kind
	r.HitIndex = index
}
