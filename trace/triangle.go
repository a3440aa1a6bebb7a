package trace

import (
	stdmath "math"

	"pathtracer/math"
)

// detEpsilon rejects rays (near) parallel to the triangle plane.
const detEpsilon = 1e-7

// Triangle stores three positions, the face normal and texture
// coordinates. T1 and T2 are deltas relative to T0, so a UV lookup is
// T0 + T1*u + T2*v.
type Triangle struct {
	P0, P1, P2 math.Vec3
	Normal     math.Vec3
	T0, T1, T2 math.Vec2
	Material   int32
}

// NewTriangle builds a triangle with a computed face normal and the
// default UV mapping (barycentric identity).
func NewTriangle(p0, p1, p2 math.Vec3, material int32) Triangle {
	return Triangle{
		P0:       p0,
		P1:       p1,
		P2:       p2,
		Normal:   ComputeNormal(p0, p1, p2),
		T0:       math.Vec2{X: 0, Y: 0},
		T1:       math.Vec2{X: 1, Y: 0},
		T2:       math.Vec2{X: 0, Y: 1},
		Material: material,
	}
}

// ComputeNormal returns the unit face normal of the winding p0, p1, p2.
func ComputeNormal(p0, p1, p2 math.Vec3) math.Vec3 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// intersectionDistance runs Moller-Trumbore and returns the hit
// parameter, or a non-positive value on a miss.
func (tri *Triangle) intersectionDistance(r *Ray) float32 {
	edge1 := tri.P1.Sub(tri.P0)
	edge2 := tri.P2.Sub(tri.P0)
	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)

	if det > -detEpsilon && det < detEpsilon {
		return -1
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(tri.P0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return -1
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return -1
	}

	return edge2.Dot(qvec) * invDet
}

// Intersect records a hit on the ray when the triangle is the nearest
// primitive so far.
func (tri *Triangle) Intersect(r *Ray, index int32) bool {
	t := tri.intersectionDistance(r)
	if t <= 0 || t >= r.T {
		return false
	}
	r.RecordHit(t, HitTriangle, index)
	return true
}

// Occludes reports whether the triangle blocks the ray before its
// current T.
func (tri *Triangle) Occludes(r *Ray) bool {
	t := tri.intersectionDistance(r)
	return t > 0 && t < r.T
}

// UVAt returns the texture coordinates at a point on the triangle
// plane via barycentric projection.
func (tri *Triangle) UVAt(point math.Vec3) math.Vec2 {
	edge1 := tri.P1.Sub(tri.P0)
	edge2 := tri.P2.Sub(tri.P0)
	d := point.Sub(tri.P0)

	d00 := edge1.Dot(edge1)
	d01 := edge1.Dot(edge2)
	d11 := edge2.Dot(edge2)
	d20 := d.Dot(edge1)
	d21 := d.Dot(edge2)

	denom := d00*d11 - d01*d01
	if float32(stdmath.Abs(float64(denom))) < detEpsilon {
		return tri.T0
	}
	u := (d11*d20 - d01*d21) / denom
	v := (d00*d21 - d01*d20) / denom

	return tri.T0.Add(tri.T1.Mul(u)).Add(tri.T2.Mul(v))
}

// Bounds returns the triangle's axis-aligned box.
func (tri *Triangle) Bounds() AABB {
	bb := NewAABB()
	bb.Grow(tri.P0)
	bb.Grow(tri.P1)
	bb.Grow(tri.P2)
	return bb
}
