package trace

import (
	stdmath "math"
	"testing"

	"pathtracer/math"
)

func TestSphereIntersect(t *testing.T) {
	s := NewSphere(math.NewVec3(0, 0, 10), 3, 0)

	r := NewRay(math.Vec3Zero, math.Vec3Front)
	if !s.Intersect(&r, 4) {
		t.Fatal("Intersect: expected hit")
	}
	if stdmath.Abs(float64(r.T-7)) > 1e-4 {
		t.Errorf("Intersect: expected t=7, got %v", r.T)
	}
	if r.HitKind != HitSphere || r.HitIndex != 4 {
		t.Errorf("Intersect: expected hit record (sphere,4), got (%v,%v)", r.HitKind, r.HitIndex)
	}

	// A hit behind an existing nearer hit is not recorded.
	r = NewRay(math.Vec3Zero, math.Vec3Front)
	r.T = 5
	if s.Intersect(&r, 4) {
		t.Error("Intersect: expected rejection past current t")
	}

	// Miss leaves the ray untouched.
	r = NewRay(math.Vec3Zero, math.Vec3Up)
	if s.Intersect(&r, 4) || r.HitKind != HitNone {
		t.Error("Intersect: expected clean miss")
	}
}

func TestSphereNormalAndOcclusion(t *testing.T) {
	s := NewSphere(math.NewVec3(0, 0, 10), 3, 0)

	n := s.NormalAt(math.NewVec3(0, 0, 7))
	if n.Distance(math.NewVec3(0, 0, -1)) > 1e-5 {
		t.Errorf("NormalAt: expected (0,0,-1), got %v", n)
	}

	r := NewRay(math.Vec3Zero, math.Vec3Front)
	r.T = 20
	if !s.Occludes(&r) {
		t.Error("Occludes: expected occlusion")
	}
	r.T = 5
	if s.Occludes(&r) {
		t.Error("Occludes: expected no occlusion before the sphere")
	}
}

func TestTriangleIntersect(t *testing.T) {
	tri := NewTriangle(
		math.NewVec3(-1, -1, 5),
		math.NewVec3(1, -1, 5),
		math.NewVec3(0, 1, 5),
		0,
	)

	r := NewRay(math.Vec3Zero, math.Vec3Front)
	if !tri.Intersect(&r, 2) {
		t.Fatal("Intersect: expected hit")
	}
	if stdmath.Abs(float64(r.T-5)) > 1e-4 {
		t.Errorf("Intersect: expected t=5, got %v", r.T)
	}
	if r.HitKind != HitTriangle || r.HitIndex != 2 {
		t.Errorf("Intersect: expected hit record (triangle,2), got (%v,%v)", r.HitKind, r.HitIndex)
	}

	// Outside the barycentric range.
	r = NewRay(math.NewVec3(2, 2, 0), math.Vec3Front)
	if tri.Intersect(&r, 2) {
		t.Error("Intersect: expected miss outside the triangle")
	}

	// Parallel ray.
	r = NewRay(math.NewVec3(0, -2, 5), math.Vec3Up)
	if tri.Intersect(&r, 2) {
		t.Error("Intersect: expected miss for in-plane ray")
	}
}

func TestTriangleNormal(t *testing.T) {
	tri := NewTriangle(
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 0, 0),
		math.NewVec3(0, 1, 0),
		0,
	)
	if tri.Normal.Distance(math.NewVec3(0, 0, 1)) > 1e-6 {
		t.Errorf("Normal: expected (0,0,1), got %v", tri.Normal)
	}
}

func TestTriangleUV(t *testing.T) {
	tri := NewTriangle(
		math.NewVec3(0, 0, 0),
		math.NewVec3(2, 0, 0),
		math.NewVec3(0, 2, 0),
		0,
	)

	// Corner p0 maps to T0.
	uv := tri.UVAt(math.NewVec3(0, 0, 0))
	if uv.Length() > 1e-5 {
		t.Errorf("UVAt: expected (0,0) at p0, got %v", uv)
	}

	// Midpoint of the p1 edge maps to u=0.5.
	uv = tri.UVAt(math.NewVec3(1, 0, 0))
	if stdmath.Abs(float64(uv.X-0.5)) > 1e-5 || stdmath.Abs(float64(uv.Y)) > 1e-5 {
		t.Errorf("UVAt: expected (0.5,0), got %v", uv)
	}
}

func TestRayOffset(t *testing.T) {
	r := NewRay(math.Vec3Zero, math.Vec3Front)
	r.Offset(Epsilon)
	if r.Origin.Z != Epsilon {
		t.Errorf("Offset: expected origin z %v, got %v", Epsilon, r.Origin.Z)
	}
}
