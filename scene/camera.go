package scene

import (
	stdmath "math"

	"pathtracer/math"
	"pathtracer/trace"
)

// gimbalLimit rejects rotations that would bring the view within 10
// degrees of the world vertical, where the basis degenerates.
var gimbalLimit = float32(stdmath.Cos(10 * stdmath.Pi / 180))

// Camera holds the eye position and the screen-space basis of the
// virtual image plane. Right and Down span the full plane; TopLeft is
// cached at distance FOV along the view direction.
type Camera struct {
	Position  math.Vec3
	Direction math.Vec3
	Right     math.Vec3
	Down      math.Vec3
	FOV       float32
	TopLeft   math.Vec3

	moved bool
}

func NewCamera(position, direction math.Vec3) *Camera {
	c := &Camera{
		Position:  position,
		Direction: direction.Normalize(),
		FOV:       1,
		moved:     true,
	}
	c.update()
	return c
}

// update re-derives the screen basis from the view direction.
func (c *Camera) update() {
	right := math.Vec3Up.Cross(c.Direction).Normalize()
	down := c.Direction.Cross(right).Negate().Normalize()

	// The plane spans two world units in each direction.
	c.Right = right.Mul(2)
	c.Down = down.Mul(2)
	c.TopLeft = c.Position.
		Add(c.Direction.Mul(c.FOV)).
		Sub(right).
		Sub(down)
}

// Move translates the camera along its basis: forward, sideways and
// vertical are distances along the view direction, screen right and
// screen up.
func (c *Camera) Move(forward, sideways, vertical float32) {
	right := c.Right.Normalize()
	up := c.Down.Normalize().Negate()
	c.Position = c.Position.
		Add(c.Direction.Mul(forward)).
		Add(right.Mul(sideways)).
		Add(up.Mul(vertical))
	c.update()
	c.moved = true
}

// Pitch rotates the view around the screen-right axis. The rotation is
// rejected near the vertical poles.
func (c *Camera) Pitch(angle float32) bool {
	return c.rotate(c.Right.Normalize(), angle)
}

// Yaw rotates the view around the world vertical.
func (c *Camera) Yaw(angle float32) bool {
	return c.rotate(math.Vec3Up, angle)
}

func (c *Camera) rotate(axis math.Vec3, angle float32) bool {
	m := math.Mat4RotationAxis(axis, angle)
	dir := m.MulVec3(c.Direction).Normalize()

	if abs32(dir.Dot(math.Vec3Down)) > gimbalLimit {
		return false
	}

	c.Direction = dir
	c.update()
	c.moved = true
	return true
}

// Moved reports and clears the pending-motion flag; the renderer polls
// it once per frame to reset accumulation.
func (c *Camera) Moved() bool {
	m := c.moved
	c.moved = false
	return m
}

// PrimaryRay builds the ray through pixel (x, y) of a width x height
// frame. offset shifts the sample point inside the pixel and jitter
// adds a random sub-pixel offset of the given size for supersampling.
func (c *Camera) PrimaryRay(x, y, width, height int, offset, jitter float32, rng *math.RNG) trace.Ray {
	u := float32(x) + offset
	v := float32(y) + offset
	if jitter > 0 {
		u += rng.Range(jitter)
		v += rng.Range(jitter)
	}
	u /= float32(width)
	v /= float32(height)

	point := c.TopLeft.Add(c.Right.Mul(u)).Add(c.Down.Mul(v))
	return trace.NewRay(c.Position, point.Sub(c.Position).Normalize())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
