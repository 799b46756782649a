// Package physics is a small kinematic stand-in for the rigid body engine.
// It integrates character bodies against a flat ground plane and drives
// hinge constraints towards their target angles.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Gravity in units per second squared.
	Gravity = 9.81
	// JumpSpeed is the vertical speed given by a jump impulse.
	JumpSpeed = 5.0
	// HingeSpeed is how fast a driven hinge turns, radians per second.
	HingeSpeed = 4.0
)

// Body is a character capsule.
type Body struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	onGround bool
	// Kinematic bodies are moved by their owner and ignore gravity.
	Kinematic bool
}

// CanJump reports whether the body rests on the ground.
func (b *Body) CanJump() bool {
	return b.onGround
}

// Jump applies the jump impulse when grounded.
func (b *Body) Jump() {
	if !b.onGround {
		return
	}
	b.Velocity[2] = JumpSpeed
	b.onGround = false
}

// Hinge is a single axis constraint used for vehicle doors.
type Hinge struct {
	angle   float32
	target  float32
	enabled bool
}

// HingeAngle returns the current angle in radians.
func (h *Hinge) HingeAngle() float32 {
	return h.angle
}

// SetTarget enables or disables the motor towards angle.
func (h *Hinge) SetTarget(enabled bool, angle float32) {
	h.enabled = enabled
	h.target = angle
}

// Target returns the motor target and whether the motor is enabled.
func (h *Hinge) Target() (float32, bool) {
	return h.target, h.enabled
}

func (h *Hinge) step(dt float32) {
	if !h.enabled {
		return
	}
	diff := h.target - h.angle
	limit := HingeSpeed * dt
	if float32(math.Abs(float64(diff))) <= limit {
		h.angle = h.target
		return
	}
	if diff > 0 {
		h.angle += limit
	} else {
		h.angle -= limit
	}
}

// World owns every body and hinge and steps them together.
type World struct {
	GroundHeight float32

	bodies []*Body
	hinges []*Hinge
}

// NewWorld creates an empty world with the ground at z = 0.
func NewWorld() *World {
	return &World{}
}

// NewBody adds a grounded body at position.
func (w *World) NewBody(position mgl32.Vec3) *Body {
	b := &Body{Position: position, onGround: position.Z() <= w.GroundHeight}
	w.bodies = append(w.bodies, b)
	return b
}

// NewHinge adds a hinge resting at angle.
func (w *World) NewHinge(angle float32) *Hinge {
	h := &Hinge{angle: angle, target: angle}
	w.hinges = append(w.hinges, h)
	return h
}

// RemoveBody drops b from the simulation.
func (w *World) RemoveBody(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// RemoveHinge drops h from the simulation.
func (w *World) RemoveHinge(h *Hinge) {
	for i, other := range w.hinges {
		if other == h {
			w.hinges = append(w.hinges[:i], w.hinges[i+1:]...)
			return
		}
	}
}

// BodyCount returns the number of simulated bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// StepSimulation advances by dt, split into at most maxSubSteps fixed steps
// of fixedStep seconds. A maxSubSteps of zero steps once by dt.
func (w *World) StepSimulation(dt float32, maxSubSteps int, fixedStep float32) {
	if maxSubSteps <= 0 || fixedStep <= 0 {
		w.step(dt)
		return
	}
	steps := int(dt / fixedStep)
	if steps < 1 {
		steps = 1
	}
	if steps > maxSubSteps {
		steps = maxSubSteps
	}
	for i := 0; i < steps; i++ {
		w.step(fixedStep)
	}
}

func (w *World) step(dt float32) {
	for _, b := range w.bodies {
		if b.Kinematic {
			continue
		}
		if b.onGround && b.Position.Z() > w.GroundHeight {
			b.onGround = false
		}
		if !b.onGround {
			b.Velocity[2] -= Gravity * dt
		}
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		if b.Position.Z() <= w.GroundHeight && b.Velocity.Z() <= 0 {
			b.Position[2] = w.GroundHeight
			b.Velocity[2] = 0
			b.onGround = true
		}
	}
	for _, h := range w.hinges {
		h.step(dt)
	}
}
