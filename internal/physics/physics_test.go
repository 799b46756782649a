package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBody_JumpAndLand(t *testing.T) {
	w := NewWorld()
	b := w.NewBody(mgl32.Vec3{1, 2, 0})
	require.True(t, b.CanJump())

	b.Jump()
	assert.False(t, b.CanJump())
	w.StepSimulation(1.0/60, 0, 0)
	assert.Greater(t, b.Position.Z(), float32(0))

	// второй прыжок в воздухе игнорируется
	vz := b.Velocity.Z()
	b.Jump()
	assert.Equal(t, vz, b.Velocity.Z())

	for i := 0; i < 90; i++ {
		w.StepSimulation(1.0/60, 0, 0)
	}
	assert.True(t, b.CanJump())
	assert.Zero(t, b.Position.Z())
	assert.Equal(t, float32(1), b.Position.X())
}

func TestBody_FallsFromAbove(t *testing.T) {
	w := NewWorld()
	b := w.NewBody(mgl32.Vec3{0, 0, 3})
	assert.False(t, b.CanJump())
	w.StepSimulation(2, 10, 0.1)
	assert.Less(t, b.Position.Z(), float32(3))
	w.StepSimulation(2, 10, 0.1)
	assert.True(t, b.CanJump())
}

func TestBody_KinematicIgnoresGravity(t *testing.T) {
	w := NewWorld()
	b := w.NewBody(mgl32.Vec3{0, 0, 2})
	b.Kinematic = true
	w.StepSimulation(1, 0, 0)
	assert.Equal(t, float32(2), b.Position.Z())
}

func TestHinge_DrivesTowardsTarget(t *testing.T) {
	w := NewWorld()
	h := w.NewHinge(0)

	w.StepSimulation(0.1, 0, 0)
	assert.Zero(t, h.HingeAngle(), "motor disabled")

	h.SetTarget(true, 1.2)
	target, enabled := h.Target()
	assert.True(t, enabled)
	assert.Equal(t, float32(1.2), target)

	w.StepSimulation(0.1, 0, 0)
	assert.InDelta(t, HingeSpeed*0.1, h.HingeAngle(), 1e-5)
	w.StepSimulation(1, 0, 0)
	assert.Equal(t, float32(1.2), h.HingeAngle())

	h.SetTarget(true, -1)
	w.StepSimulation(1, 0, 0)
	assert.Equal(t, float32(-1), h.HingeAngle())
}

func TestWorld_RemoveAndSubSteps(t *testing.T) {
	w := NewWorld()
	a := w.NewBody(mgl32.Vec3{})
	b := w.NewBody(mgl32.Vec3{})
	h := w.NewHinge(0)
	assert.Equal(t, 2, w.BodyCount())
	w.RemoveBody(a)
	w.RemoveBody(a)
	assert.Equal(t, 1, w.BodyCount())

	w.RemoveHinge(h)
	h.SetTarget(true, 1)
	w.StepSimulation(1, 0, 0)
	assert.Zero(t, h.HingeAngle())

	// не больше maxSubSteps шагов
	b.Velocity = mgl32.Vec3{1, 0, 0}
	w.StepSimulation(1, 2, 0.1)
	assert.InDelta(t, 0.2, b.Position.X(), 1e-5)
}
