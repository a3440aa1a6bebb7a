package main

import (
	"pathtracer/core"
	"pathtracer/scene"
)

// controller maps held keys onto camera motion. WASD translates, Q/E
// move vertically and the arrow keys rotate; any accepted change marks
// the camera moved, which restarts accumulation.
type controller struct {
	moveSpeed float32 // world units per second
	turnSpeed float32 // radians per second
}

func newController() *controller {
	return &controller{
		moveSpeed: 3.0,
		turnSpeed: 1.2,
	}
}

func (c *controller) update(win *core.Window, cam *scene.Camera, dt float32) {
	move := c.moveSpeed * dt
	turn := c.turnSpeed * dt

	var forward, sideways, vertical float32
	if win.IsKeyPressed(core.KeyW) {
		forward += move
	}
	if win.IsKeyPressed(core.KeyS) {
		forward -= move
	}
	if win.IsKeyPressed(core.KeyD) {
		sideways += move
	}
	if win.IsKeyPressed(core.KeyA) {
		sideways -= move
	}
	if win.IsKeyPressed(core.KeyE) {
		vertical += move
	}
	if win.IsKeyPressed(core.KeyQ) {
		vertical -= move
	}
	if forward != 0 || sideways != 0 || vertical != 0 {
		cam.Move(forward, sideways, vertical)
	}

	if win.IsKeyPressed(core.KeyLeft) {
		cam.Yaw(-turn)
	}
	if win.IsKeyPressed(core.KeyRight) {
		cam.Yaw(turn)
	}
	if win.IsKeyPressed(core.KeyUp) {
		cam.Pitch(-turn)
	}
	if win.IsKeyPressed(core.KeyDown) {
		cam.Pitch(turn)
	}
}
