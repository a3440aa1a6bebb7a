package scene

import (
	"pathtracer/core"
	"pathtracer/math"
	"pathtracer/trace"
)

// DefaultScene builds the hard-coded demo room: a white box with a
// mirror, a glass sphere and a few colored spheres, lit by one sphere
// light in the ceiling.
func DefaultScene() *Scene {
	s := NewScene()

	const (
		matWall = iota
		matMirror
		matGlass
		matRed
		matGreen
		matBlue
		matYellow
	)
	s.Materials = []Material{
		NewMaterial(0, 0, 1, core.ColorWhite, nil),
		NewMaterial(1, 0, 1, core.ColorWhite, nil),
		NewMaterial(0.5, 0.5, 1.5, core.ColorWhite, nil),
		NewMaterial(0, 0, 1, core.ColorRed, nil),
		NewMaterial(0, 0, 1, core.ColorGreen, nil),
		NewMaterial(0, 0, 1, core.ColorBlue, nil),
		NewMaterial(0, 0, 1, core.ColorYellow, nil),
	}

	const (
		roomSize  = 5
		roomDepth = 10
	)
	// Corner naming: l/r = left/right, b/t = bottom/top, n/f = near/far.
	lbn := math.NewVec3(0, 0, 0)
	lbf := math.NewVec3(0, 0, roomDepth)
	ltn := math.NewVec3(0, roomSize, 0)
	ltf := math.NewVec3(0, roomSize, roomDepth)
	rbn := math.NewVec3(roomSize, 0, 0)
	rbf := math.NewVec3(roomSize, 0, roomDepth)
	rtn := math.NewVec3(roomSize, roomSize, 0)
	rtf := math.NewVec3(roomSize, roomSize, roomDepth)

	s.Triangles = []trace.Triangle{
		trace.NewTriangle(lbn, lbf, rbn, matWall), // floor
		trace.NewTriangle(lbf, rbn, rbf, matWall),
		trace.NewTriangle(ltn, ltf, rtn, matWall), // ceiling
		trace.NewTriangle(ltf, rtn, rtf, matWall),
		trace.NewTriangle(lbn, ltn, lbf, matRed), // left wall
		trace.NewTriangle(ltn, lbf, ltf, matRed),
		trace.NewTriangle(rbn, rtn, rbf, matYellow), // right wall
		trace.NewTriangle(rtn, rbf, rtf, matYellow),
		trace.NewTriangle(lbn, ltn, rbn, matWall), // back wall
		trace.NewTriangle(ltn, rbn, rtn, matWall),
		trace.NewTriangle(lbf, ltf, rbf, matWall), // front wall
		trace.NewTriangle(ltf, rbf, rtf, matWall),
	}

	const radius = 0.5
	s.Spheres = []trace.Sphere{
		trace.NewSphere(math.NewVec3(2, radius+0.2, 2.5), radius, matRed),
		trace.NewSphere(math.NewVec3(3, radius+0.2, 3.5), radius, matBlue),
		trace.NewSphere(math.NewVec3(4, radius+0.2, 4.5), radius, matGreen),
		trace.NewSphere(math.NewVec3(2, radius+1.4, 2.5), radius, matMirror),
		trace.NewSphere(math.NewVec3(3, radius+1.4, 3.5), radius, matGlass),
		trace.NewSphere(math.NewVec3(4, radius+1.4, 4.5), radius, matWall),
	}

	s.Lights = []Light{
		NewLight(math.NewVec3(roomSize/2.0, roomSize, roomDepth/2.0), 0.5, core.NewColor(200, 200, 200)),
	}

	s.Camera = NewCamera(math.NewVec3(roomSize/2.0, 1, 0.3), math.Vec3Front)
	return s
}
