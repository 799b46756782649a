// Package ai drives characters: the per-character controller, its activity
// queue and the activities themselves.
package ai

import (
	"expvar"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/objectmanager"
)

const (
	// vehicleIdleDoorDelay is how long a seated character must sit still
	// before pulling its door shut, in seconds.
	vehicleIdleDoorDelay = 1.0
	vehicleIdleThreshold = 0.1
	moveThreshold        = 0.01
	idleThreshold        = 0.001
)

var activitiesCompleted = expvar.NewInt("activities_completed")

// Goal is a long running intent that produces activities.
type Goal int

const (
	GoalNone Goal = iota
	GoalFollowLeader
	GoalGoToNode
)

// CharacterController translates movement intents into animation and runs
// the character's activities. Each character owns exactly one controller.
type CharacterController struct {
	character Character
	queue     ActivityQueue

	rawMovement mgl32.Vec3
	running     bool
	vehicleIdle float32

	goal       Goal
	leader     objectmanager.ID
	targetNode objectmanager.ID

	onFinish func(Activity)
}

// NewCharacterController creates the controller for character.
func NewCharacterController(character Character) *CharacterController {
	return &CharacterController{character: character}
}

// Character returns the controlled character.
func (c *CharacterController) Character() Character {
	return c.character
}

// CurrentActivity returns the running activity or nil.
func (c *CharacterController) CurrentActivity() Activity {
	return c.queue.Current()
}

// NextActivity returns the queued activity or nil.
func (c *CharacterController) NextActivity() Activity {
	return c.queue.Next()
}

// SetActivity interrupts whatever is running and starts a. Passing nil
// leaves the character idle.
func (c *CharacterController) SetActivity(a Activity) {
	c.queue.Set(a)
}

// SkipActivity drops the running activity.
func (c *CharacterController) SkipActivity() {
	c.SetActivity(nil)
}

// SetNextActivity starts a when idle, otherwise queues it behind the running
// activity. A previously queued activity is dropped.
func (c *CharacterController) SetNextActivity(a Activity) {
	c.queue.SetNext(a)
}

// OnActivityFinished registers fn to be called with every completed activity.
func (c *CharacterController) OnActivityFinished(fn func(Activity)) {
	c.onFinish = fn
}

// SetRawMovement sets the movement intent for the next update:
// x is forward/back, y is turn.
func (c *CharacterController) SetRawMovement(m mgl32.Vec3) {
	c.rawMovement = m
}

// RawMovement returns the pending movement intent.
func (c *CharacterController) RawMovement() mgl32.Vec3 {
	return c.rawMovement
}

// SetRunning toggles running locomotion.
func (c *CharacterController) SetRunning(run bool) {
	c.running = run
}

// IsRunning reports the running flag.
func (c *CharacterController) IsRunning() bool {
	return c.running
}

// UseItem presses or releases the active item's primary or secondary action.
func (c *CharacterController) UseItem(active, primary bool) {
	item := c.character.ActiveItem()
	if item == nil {
		return
	}
	if primary {
		item.Primary(active)
	} else {
		item.Secondary(active)
	}
}

// Update runs one simulation step of dt seconds.
func (c *CharacterController) Update(dt float32) {
	d := c.rawMovement
	character := c.character
	anims := character.Animations()

	if vehicle := character.CurrentVehicle(); vehicle != nil {
		if character.CurrentSeat() == 0 {
			vehicle.SetSteeringAngle(d.Y())
			if math.Abs(float64(d.X())) > moveThreshold {
				vehicle.SetHandbraking(false)
			}
			vehicle.SetThrottle(d.X())
		}

		if c.queue.Current() == nil {
			character.PlayAnimation(anims.CarSit, true)

			if d.Len() <= vehicleIdleThreshold {
				c.vehicleIdle += dt
			} else {
				c.vehicleIdle = 0
			}

			if c.vehicleIdle >= vehicleIdleDoorDelay {
				door := vehicle.SeatEntryDoor(character.CurrentSeat())
				if door != nil && door.Constraint() != nil {
					vehicle.SetPartTarget(door, true, door.ClosedAngle())
				}
			}
		}
	} else {
		c.vehicleIdle = 0
		animator := character.Animator()

		if d.Len() > moveThreshold {
			if c.running {
				if animator.Animation() != anims.Run {
					character.PlayAnimation(anims.Run, true)
				}
			} else if animator.Animation() == anims.WalkStart {
				if animator.IsCompleted() {
					character.PlayAnimation(anims.Walk, true)
				}
			} else if animator.Animation() != anims.Walk {
				character.PlayAnimation(anims.WalkStart, false)
			}
		}

		if c.queue.Current() == nil && d.Len() <= idleThreshold {
			character.PlayAnimation(anims.Idle, true)
		}
	}

	// One update consumes one input sample.
	c.rawMovement = mgl32.Vec3{}

	if c.updateActivity() {
		done := c.queue.Finish()
		activitiesCompleted.Add(1)
		if c.onFinish != nil && done != nil {
			c.onFinish(done)
		}
	}
}

func (c *CharacterController) updateActivity() bool {
	current := c.queue.Current()
	if current == nil {
		return false
	}
	return updateActivity(current, c.character, c)
}
