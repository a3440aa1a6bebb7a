package trace

import (
	stdmath "math"
	"testing"

	"pathtracer/math"
)

func TestAABBGrow(t *testing.T) {
	bb := NewAABB()
	bb.Grow(math.NewVec3(1, 2, 3))
	bb.Grow(math.NewVec3(-1, 0, 5))

	if bb.Min != math.NewVec3(-1, 0, 3) {
		t.Errorf("Grow: expected min (-1,0,3), got %v", bb.Min)
	}
	if bb.Max != math.NewVec3(1, 2, 5) {
		t.Errorf("Grow: expected max (1,2,5), got %v", bb.Max)
	}
}

func TestAABBArea(t *testing.T) {
	bb := AABB{Min: math.NewVec3(0, 0, 0), Max: math.NewVec3(1, 2, 3)}
	// 2*(1*2 + 2*3 + 3*1) = 22
	if bb.Area() != 22 {
		t.Errorf("Area: expected 22, got %v", bb.Area())
	}

	// An empty (inverted) box has zero area.
	empty := NewAABB()
	if empty.Area() != 0 {
		t.Errorf("Area: expected 0 for empty box, got %v", empty.Area())
	}

	// A single point has zero area.
	point := NewAABB()
	point.Grow(math.NewVec3(4, 4, 4))
	if point.Area() != 0 {
		t.Errorf("Area: expected 0 for point box, got %v", point.Area())
	}
}

func TestAABBLongestAxis(t *testing.T) {
	bb := AABB{Min: math.Vec3Zero, Max: math.NewVec3(1, 5, 2)}
	if bb.LongestAxis() != 1 {
		t.Errorf("LongestAxis: expected 1, got %v", bb.LongestAxis())
	}
	bb.Max = math.NewVec3(9, 5, 2)
	if bb.LongestAxis() != 0 {
		t.Errorf("LongestAxis: expected 0, got %v", bb.LongestAxis())
	}
	bb.Max = math.NewVec3(1, 2, 7)
	if bb.LongestAxis() != 2 {
		t.Errorf("LongestAxis: expected 2, got %v", bb.LongestAxis())
	}
}

func TestAABBCenter(t *testing.T) {
	bb := AABB{Min: math.NewVec3(0, -2, 4), Max: math.NewVec3(2, 2, 8)}
	if bb.Center(0) != 1 || bb.Center(1) != 0 || bb.Center(2) != 6 {
		t.Errorf("Center: got (%v,%v,%v)", bb.Center(0), bb.Center(1), bb.Center(2))
	}
}

func TestAABBIntersect(t *testing.T) {
	bb := AABB{Min: math.NewVec3(-1, -1, 4), Max: math.NewVec3(1, 1, 6)}

	r := NewRay(math.Vec3Zero, math.Vec3Front)
	tmin, tmax, hit := bb.Intersect(&r)
	if !hit {
		t.Fatal("Intersect: expected hit")
	}
	if stdmath.Abs(float64(tmin-4)) > 1e-5 || stdmath.Abs(float64(tmax-6)) > 1e-5 {
		t.Errorf("Intersect: expected (4,6), got (%v,%v)", tmin, tmax)
	}

	// Ray pointing away misses.
	r = NewRay(math.Vec3Zero, math.Vec3Front.Negate())
	if _, _, hit := bb.Intersect(&r); hit {
		t.Error("Intersect: expected miss behind the origin")
	}

	// Ray starting inside hits with negative tmin.
	r = NewRay(math.NewVec3(0, 0, 5), math.Vec3Front)
	tmin, _, hit = bb.Intersect(&r)
	if !hit || tmin > 0 {
		t.Errorf("Intersect: expected hit from inside with tmin <= 0, got tmin=%v hit=%v", tmin, hit)
	}

	// Axis-parallel ray outside the slab misses (inf handling).
	r = NewRay(math.NewVec3(5, 0, 0), math.Vec3Front)
	if _, _, hit := bb.Intersect(&r); hit {
		t.Error("Intersect: expected miss for parallel ray outside the slab")
	}
}
