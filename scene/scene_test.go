package scene

import (
	stdmath "math"
	"os"
	"path/filepath"
	"testing"

	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/trace"
)

func TestMaterialInvariant(t *testing.T) {
	m := NewMaterial(0.8, 0.6, 1.5, core.ColorWhite, nil)
	if m.Reflection+m.Refraction > 1 {
		t.Errorf("NewMaterial: expected reflection+refraction <= 1, got %v",
			m.Reflection+m.Refraction)
	}
	if m.Diffuse() < 0 {
		t.Errorf("Diffuse: expected non-negative, got %v", m.Diffuse())
	}

	m = NewMaterial(0.25, 0.5, 1.5, core.ColorWhite, nil)
	if m.Reflection != 0.25 || m.Refraction != 0.5 {
		t.Errorf("NewMaterial: expected fractions kept, got %v/%v", m.Reflection, m.Refraction)
	}
	if stdmath.Abs(float64(m.Diffuse()-0.25)) > 1e-6 {
		t.Errorf("Diffuse: expected 0.25, got %v", m.Diffuse())
	}
}

func TestMaterialColorAt(t *testing.T) {
	m := NewMaterial(0, 0, 1, core.ColorRed, nil)
	if m.ColorAt(math.Vec2{X: 0.3, Y: 0.7}) != core.ColorRed {
		t.Error("ColorAt: expected flat albedo without texture")
	}

	tex := NewSolidTexture("green", 0, 255, 0, 255)
	m.Texture = tex
	c := m.ColorAt(math.Vec2{X: 0.5, Y: 0.5})
	if c.G != 1 || c.R != 0 {
		t.Errorf("ColorAt: expected texture color, got %v", c)
	}
}

func TestTextureWraps(t *testing.T) {
	tex := &Texture{
		Name:  "2x1",
		Width: 2, Height: 1,
		Pixels: []byte{255, 0, 0, 255, 0, 255, 0, 255},
	}
	if c := tex.ColorAt(0.1, 0.5); c.R != 1 {
		t.Errorf("ColorAt: expected red texel, got %v", c)
	}
	if c := tex.ColorAt(0.7, 0.5); c.G != 1 {
		t.Errorf("ColorAt: expected green texel, got %v", c)
	}
	// Negative coordinates wrap instead of faulting.
	if c := tex.ColorAt(-0.3, -2.5); c.G != 1 {
		t.Errorf("ColorAt: expected wrapped texel, got %v", c)
	}
}

func TestLightSampling(t *testing.T) {
	l := NewLight(math.NewVec3(1, 2, 3), 0.5, core.NewColor(10, 10, 10))
	rng := math.NewRNG(9)

	for i := 0; i < 100; i++ {
		p := l.SamplePoint(rng)
		if stdmath.Abs(float64(p.Distance(l.Center)-0.5)) > 1e-3 {
			t.Fatalf("SamplePoint: expected distance 0.5, got %v", p.Distance(l.Center))
		}
		n := l.NormalAt(p)
		if stdmath.Abs(float64(n.Length()-1)) > 1e-3 {
			t.Fatalf("NormalAt: expected unit normal, got length %v", n.Length())
		}
	}

	if stdmath.Abs(float64(l.Area()-math.Pi)) > 1e-5 {
		t.Errorf("Area: expected 4*pi*r^2, got %v", l.Area())
	}
}

func TestLightIntersectRecordsKind(t *testing.T) {
	l := NewLight(math.NewVec3(0, 0, 10), 1, core.ColorWhite)
	r := trace.NewRay(math.Vec3Zero, math.Vec3Front)
	if !l.Intersect(&r, 3) {
		t.Fatal("Intersect: expected hit")
	}
	if r.HitKind != trace.HitLight || r.HitIndex != 3 {
		t.Errorf("Intersect: expected (light,3), got (%v,%v)", r.HitKind, r.HitIndex)
	}
	if stdmath.Abs(float64(r.T-9)) > 1e-4 {
		t.Errorf("Intersect: expected t=9, got %v", r.T)
	}
}

func TestCameraPrimaryRay(t *testing.T) {
	c := NewCamera(math.Vec3Zero, math.Vec3Front)

	// The center pixel of any frame looks straight down the view axis.
	r := c.PrimaryRay(256, 256, 512, 512, 0.5, 0, nil)
	if r.Direction.Distance(math.Vec3Front) > 1e-4 {
		t.Errorf("PrimaryRay: expected center ray (0,0,1), got %v", r.Direction)
	}
	if r.Origin != c.Position {
		t.Errorf("PrimaryRay: expected origin at camera, got %v", r.Origin)
	}

	// The top-left corner ray passes through the cached TopLeft point.
	r = c.PrimaryRay(0, 0, 512, 512, 0, 0, nil)
	want := c.TopLeft.Sub(c.Position).Normalize()
	if r.Direction.Distance(want) > 1e-4 {
		t.Errorf("PrimaryRay: expected corner ray %v, got %v", want, r.Direction)
	}
}

func TestCameraMovedFlag(t *testing.T) {
	c := NewCamera(math.Vec3Zero, math.Vec3Front)
	if !c.Moved() {
		t.Error("Moved: a fresh camera reports one pending change")
	}
	if c.Moved() {
		t.Error("Moved: the flag must clear after polling")
	}

	c.Move(1, 0, 0)
	if !c.Moved() {
		t.Error("Moved: expected flag after movement")
	}

	if !c.Yaw(0.1) {
		t.Error("Yaw: expected small rotation accepted")
	}
	if !c.Moved() {
		t.Error("Moved: expected flag after rotation")
	}
}

func TestCameraGimbalGuard(t *testing.T) {
	c := NewCamera(math.Vec3Zero, math.Vec3Front)
	c.Moved()

	// Pitching almost straight down is rejected and leaves the camera alone.
	before := c.Direction
	if c.Pitch(float32(stdmath.Pi/2) - 0.05) {
		t.Error("Pitch: expected rejection near the pole")
	}
	if c.Direction != before {
		t.Error("Pitch: rejected rotation must not alter the view")
	}
	if c.Moved() {
		t.Error("Pitch: rejected rotation must not signal motion")
	}
}

func TestCameraBasisOrthogonal(t *testing.T) {
	c := NewCamera(math.NewVec3(1, 2, 3), math.NewVec3(0.5, 0.1, 0.8))
	c.Yaw(0.3)
	c.Pitch(-0.2)

	right := c.Right.Normalize()
	down := c.Down.Normalize()
	if stdmath.Abs(float64(right.Dot(down))) > 1e-5 ||
		stdmath.Abs(float64(right.Dot(c.Direction))) > 1e-5 ||
		stdmath.Abs(float64(down.Dot(c.Direction))) > 1e-5 {
		t.Error("camera basis must stay orthogonal after rotation")
	}
}

func TestSkyCacheRoundTrip(t *testing.T) {
	sky := &SkyDome{
		Width:  4,
		Height: 2,
		Pixels: make([]core.Color, 8),
	}
	for i := range sky.Pixels {
		sky.Pixels[i] = core.NewColor(float32(i), float32(i)*0.5, 2)
	}

	path := filepath.Join(t.TempDir(), "sky.bin")
	if err := sky.WriteCache(path); err != nil {
		t.Fatalf("WriteCache: %v", err)
	}

	loaded, err := LoadSkyDome(path)
	if err != nil {
		t.Fatalf("LoadSkyDome: %v", err)
	}
	if loaded.Width != sky.Width || loaded.Height != sky.Height {
		t.Fatalf("LoadSkyDome: expected %dx%d, got %dx%d",
			sky.Width, sky.Height, loaded.Width, loaded.Height)
	}
	for i := range sky.Pixels {
		if loaded.Pixels[i] != sky.Pixels[i] {
			t.Fatalf("pixel %d: expected %v, got %v", i, sky.Pixels[i], loaded.Pixels[i])
		}
	}
}

func TestSkyFindColorMapping(t *testing.T) {
	sky := &SkyDome{Width: 8, Height: 4, Pixels: make([]core.Color, 32)}
	for i := range sky.Pixels {
		sky.Pixels[i] = core.NewColor(float32(i), 0, 0)
	}

	// Straight up lands in the top row.
	c := sky.FindColor(math.Vec3Up)
	if c.R >= 8 {
		t.Errorf("FindColor: expected top row, got %v", c.R)
	}
	// Straight down lands in the bottom row.
	c = sky.FindColor(math.Vec3Down)
	if c.R < 24 {
		t.Errorf("FindColor: expected bottom row, got %v", c.R)
	}
}

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "quad.obj")
	obj := `# two triangles and one rejected quad
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
f 2/2 4/1 3/3
f 1 2 3 4
`
	if err := os.WriteFile(objPath, []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	tris, mats, err := LoadOBJ(objPath, NewTextureCache())
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("LoadOBJ: expected 2 triangles (quad rejected), got %d", len(tris))
	}
	if len(mats) != 0 {
		t.Fatalf("LoadOBJ: expected no materials, got %d", len(mats))
	}
	if tris[0].Material != -1 {
		t.Errorf("LoadOBJ: expected default material index -1, got %d", tris[0].Material)
	}

	// UV deltas are stored relative to T0.
	if tris[0].T0 != (math.Vec2{X: 0, Y: 0}) ||
		tris[0].T1 != (math.Vec2{X: 1, Y: 0}) ||
		tris[0].T2 != (math.Vec2{X: 0, Y: 1}) {
		t.Errorf("LoadOBJ: unexpected UVs %v %v %v", tris[0].T0, tris[0].T1, tris[0].T2)
	}
}

func TestLoadOBJWithMTL(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "box.mtl"), []byte(`newmtl shiny
Kd 0.8 0.1 0.1
Ns 0.25
Ni 1.5
`), 0o644); err != nil {
		t.Fatal(err)
	}
	objPath := filepath.Join(dir, "box.obj")
	if err := os.WriteFile(objPath, []byte(`mtllib box.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl shiny
f 1 2 3
`), 0o644); err != nil {
		t.Fatal(err)
	}

	tris, mats, err := LoadOBJ(objPath, NewTextureCache())
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mats) != 1 {
		t.Fatalf("LoadOBJ: expected 1 material, got %d", len(mats))
	}
	if tris[0].Material != 0 {
		t.Errorf("LoadOBJ: expected material 0, got %d", tris[0].Material)
	}
	m := mats[0]
	if m.Albedo.R != 0.8 {
		t.Errorf("LoadOBJ: expected Kd red 0.8, got %v", m.Albedo.R)
	}
	if stdmath.Abs(float64(m.Reflection-0.75)) > 1e-5 {
		t.Errorf("LoadOBJ: expected reflection 0.75, got %v", m.Reflection)
	}
	if m.IoR != 1.5 {
		t.Errorf("LoadOBJ: expected IoR 1.5, got %v", m.IoR)
	}
}

func TestDefaultScene(t *testing.T) {
	s := DefaultScene()
	if len(s.Triangles) != 12 || len(s.Spheres) != 6 || len(s.Lights) != 1 {
		t.Fatalf("DefaultScene: unexpected counts %d/%d/%d",
			len(s.Triangles), len(s.Spheres), len(s.Lights))
	}
	for i := range s.Materials {
		m := &s.Materials[i]
		if m.Reflection+m.Refraction > 1 {
			t.Errorf("material %d: reflection+refraction > 1", i)
		}
	}

	s.BuildBVH(trace.DefaultBins, true)
	if s.BVH == nil {
		t.Fatal("BuildBVH: expected a BVH")
	}

	// A camera ray into the room hits something.
	r := s.Camera.PrimaryRay(256, 256, 512, 512, 0.5, 0, nil)
	if !s.Intersect(&r, nil) {
		t.Error("Intersect: expected the room to enclose the camera")
	}
}

func TestSceneOcclusionAndLights(t *testing.T) {
	s := NewScene()
	s.Triangles = []trace.Triangle{
		trace.NewTriangle(math.NewVec3(-2, -2, 5), math.NewVec3(2, -2, 5), math.NewVec3(0, 2, 5), -1),
	}
	s.Lights = []Light{NewLight(math.NewVec3(0, 0, 20), 1, core.ColorWhite)}
	s.BuildBVH(trace.DefaultBins, true)

	// The triangle shadows the light.
	r := trace.NewRay(math.Vec3Zero, math.Vec3Front)
	r.T = 19
	if !s.Occluded(&r) {
		t.Error("Occluded: expected triangle to block")
	}

	// The light is visible geometry.
	r = trace.NewRay(math.Vec3Zero, math.Vec3Front)
	if idx := s.IntersectLights(&r); idx != 0 {
		t.Fatalf("IntersectLights: expected light 0, got %d", idx)
	}
	if stdmath.Abs(float64(r.T-19)) > 1e-3 {
		t.Errorf("IntersectLights: expected t=19, got %v", r.T)
	}
}

func TestMaterialForOutOfRange(t *testing.T) {
	s := NewScene()
	m := s.MaterialFor(-1)
	if m == nil || m.Albedo != core.ColorWhite {
		t.Error("MaterialFor: expected default material for negative index")
	}
	if s.MaterialFor(99) == nil {
		t.Error("MaterialFor: expected default material for out-of-range index")
	}
}
