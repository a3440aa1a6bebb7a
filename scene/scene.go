package scene

import (
	"pathtracer/trace"
)

// Scene owns the geometry, materials, lights and the acceleration
// structure. It is immutable once rendering starts and safe to share
// across workers.
type Scene struct {
	Spheres   []trace.Sphere
	Triangles []trace.Triangle
	Materials []Material
	Lights    []Light
	BVH       *trace.BVH
	Sky       *SkyDome
	Camera    *Camera

	defaultMaterial Material
}

func NewScene() *Scene {
	return &Scene{defaultMaterial: DefaultMaterial()}
}

// BuildBVH constructs the triangle hierarchy. bins <= 0 uses the
// default bin count; useBVH false leaves the scene on brute-force
// triangle loops.
func (s *Scene) BuildBVH(bins int, useBVH bool) {
	if !useBVH || len(s.Triangles) == 0 {
		s.BVH = nil
		return
	}
	s.BVH = trace.NewBVH(s.Triangles, bins)
}

// Intersect finds the nearest surface hit, updating the ray's record.
// depth, when non-nil, counts visited BVH nodes.
func (s *Scene) Intersect(r *trace.Ray, depth *int) bool {
	found := false
	for i := range s.Spheres {
		if s.Spheres[i].Intersect(r, int32(i)) {
			found = true
		}
	}
	if s.BVH != nil {
		if s.BVH.IntersectDepth(r, depth) {
			found = true
		}
	} else {
		for i := range s.Triangles {
			if s.Triangles[i].Intersect(r, int32(i)) {
				found = true
			}
		}
	}
	return found
}

// IntersectLights tests the emitters, which are visible geometry, and
// returns the index of the nearest light hit or -1.
func (s *Scene) IntersectLights(r *trace.Ray) int {
	found := -1
	for i := range s.Lights {
		if s.Lights[i].Intersect(r, int32(i)) {
			found = i
		}
	}
	return found
}

// Occluded reports whether anything blocks the ray before its current
// T. It returns on the first blocker found.
func (s *Scene) Occluded(r *trace.Ray) bool {
	for i := range s.Spheres {
		if s.Spheres[i].Occludes(r) {
			return true
		}
	}
	if s.BVH != nil {
		if s.BVH.Occludes(r) {
			return true
		}
	} else {
		for i := range s.Triangles {
			if s.Triangles[i].Occludes(r) {
				return true
			}
		}
	}
	for i := range s.Lights {
		if s.Lights[i].Occludes(r) {
			return true
		}
	}
	return false
}

// MaterialFor resolves a material index; negative indices map to the
// default material.
func (s *Scene) MaterialFor(index int32) *Material {
	if index < 0 || int(index) >= len(s.Materials) {
		return &s.defaultMaterial
	}
	return &s.Materials[index]
}
