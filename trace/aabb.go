package trace

import (
	stdmath "math"

	"pathtracer/math"
)

// AABB is an axis-aligned bounding box. The zero value from NewAABB is
// inverted (empty) so that the first Grow sets both corners.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

func NewAABB() AABB {
	inf := float32(stdmath.Inf(1))
	return AABB{
		Min: math.Vec3{X: inf, Y: inf, Z: inf},
		Max: math.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Grow extends the box to contain the point.
func (b *AABB) Grow(p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// GrowAABB extends the box to contain another box.
func (b *AABB) GrowAABB(other AABB) {
	b.Min = math.Vec3{X: min32(b.Min.X, other.Min.X), Y: min32(b.Min.Y, other.Min.Y), Z: min32(b.Min.Z, other.Min.Z)}
	b.Max = math.Vec3{X: max32(b.Max.X, other.Max.X), Y: max32(b.Max.Y, other.Max.Y), Z: max32(b.Max.Z, other.Max.Z)}
}

// Area returns the surface area; empty or degenerate boxes report 0.
func (b *AABB) Area() float32 {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	dz := b.Max.Z - b.Min.Z
	if dx < 0 || dy < 0 || dz < 0 {
		return 0
	}
	area := 2 * (dx*dy + dy*dz + dz*dx)
	if stdmath.IsInf(float64(area), 0) || stdmath.IsNaN(float64(area)) {
		return 0
	}
	return area
}

// LongestAxis returns 0, 1 or 2 for the widest extent.
func (b *AABB) LongestAxis() int {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	dz := b.Max.Z - b.Min.Z
	if dx >= dy && dx >= dz {
		return 0
	}
	if dy >= dz {
		return 1
	}
	return 2
}

// Center returns the midpoint along the given axis.
func (b *AABB) Center(axis int) float32 {
	return 0.5 * (b.Min.Axis(axis) + b.Max.Axis(axis))
}

// Contains reports whether other fits entirely inside b, with a small
// tolerance for float accumulation.
func (b *AABB) Contains(other AABB) bool {
	const eps = 1e-4
	return other.Min.X >= b.Min.X-eps && other.Min.Y >= b.Min.Y-eps && other.Min.Z >= b.Min.Z-eps &&
		other.Max.X <= b.Max.X+eps && other.Max.Y <= b.Max.Y+eps && other.Max.Z <= b.Max.Z+eps
}

// Intersect performs the slab test. On a hit it returns the entry and
// exit parameters; tmin may be negative when the origin is inside.
func (b *AABB) Intersect(r *Ray) (tmin, tmax float32, hit bool) {
	invDir := r.Direction.Inverse()
	vmin := b.Min.Sub(r.Origin).MulVec(invDir)
	vmax := b.Max.Sub(r.Origin).MulVec(invDir)

	tmax = min32(min32(max32(vmin.X, vmax.X), max32(vmin.Y, vmax.Y)), max32(vmin.Z, vmax.Z))
	if tmax < 0 {
		return 0, 0, false
	}

	tmin = max32(max32(min32(vmin.X, vmax.X), min32(vmin.Y, vmax.Y)), min32(vmin.Z, vmax.Z))
	if tmin > tmax {
		return 0, 0, false
	}

	return tmin, tmax, true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
