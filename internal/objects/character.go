// Package objects contains the concrete game objects: pedestrians,
// vehicles, weapons, pickups and path nodes.
package objects

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/anim"
	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/physics"
)

const (
	// WalkSpeed and RunSpeed are locomotion speeds in units per second.
	WalkSpeed = 1.5
	RunSpeed  = 4.0

	locomotionThreshold = 0.01
)

// CharacterObject is a pedestrian driven by a CharacterController.
type CharacterObject struct {
	id    objectmanager.ID
	Model string

	body         *physics.Body
	rotation     mgl32.Quat
	lastPosition mgl32.Vec3

	animator   *anim.Animator
	anims      *anim.Set
	controller *ai.CharacterController

	physics *physics.World
	objects *objectmanager.ObjectManager

	vehicle *VehicleObject
	seat    int

	inventory []*WeaponItem
	active    int
}

// NewCharacter creates a pedestrian standing at pos. The registry is used to
// resolve goal targets and may be nil.
func NewCharacter(pw *physics.World, om *objectmanager.ObjectManager, anims *anim.Set, pos mgl32.Vec3) *CharacterObject {
	c := &CharacterObject{
		id:           objectmanager.NewID(),
		body:         pw.NewBody(pos),
		rotation:     mgl32.QuatIdent(),
		lastPosition: pos,
		animator:     anim.NewAnimator(),
		anims:        anims,
		physics:      pw,
		objects:      om,
		active:       -1,
	}
	c.controller = ai.NewCharacterController(c)
	return c
}

func (c *CharacterObject) ID() objectmanager.ID     { return c.id }
func (c *CharacterObject) Kind() objectmanager.Kind { return objectmanager.KindCharacter }

// Controller returns the character's controller.
func (c *CharacterObject) Controller() *ai.CharacterController {
	return c.controller
}

func (c *CharacterObject) Position() mgl32.Vec3 {
	return c.body.Position
}

func (c *CharacterObject) SetPosition(p mgl32.Vec3) {
	c.body.Position = p
}

// LastPosition is the position at the start of the current step.
func (c *CharacterObject) LastPosition() mgl32.Vec3 {
	return c.lastPosition
}

func (c *CharacterObject) Rotation() mgl32.Quat {
	return c.rotation
}

func (c *CharacterObject) SetRotation(r mgl32.Quat) {
	c.rotation = r
}

// Heading returns the yaw in radians, zero facing +Y.
func (c *CharacterObject) Heading() float32 {
	dir := c.rotation.Rotate(mgl32.Vec3{0, 1, 0})
	return float32(math.Atan2(float64(dir.Y()), float64(dir.X())) - math.Pi/2)
}

// SetHeading faces the character along yaw.
func (c *CharacterObject) SetHeading(yaw float32) {
	c.rotation = mgl32.QuatRotate(yaw, mgl32.Vec3{0, 0, 1})
}

func (c *CharacterObject) Animator() ai.Animator {
	return c.animator
}

func (c *CharacterObject) Animations() *anim.Set {
	return c.anims
}

func (c *CharacterObject) PlayAnimation(clip *anim.Clip, repeat bool) {
	c.animator.SetAnimation(clip, repeat)
}

// CurrentAnimation returns the playing clip, nil when none.
func (c *CharacterObject) CurrentAnimation() *anim.Clip {
	return c.animator.Animation()
}

func (c *CharacterObject) Jump() {
	if c.vehicle != nil {
		return
	}
	c.body.Jump()
}

func (c *CharacterObject) CanJump() bool {
	return c.vehicle == nil && c.body.CanJump()
}

func (c *CharacterObject) CurrentVehicle() ai.Vehicle {
	if c.vehicle == nil {
		return nil
	}
	return c.vehicle
}

// Vehicle returns the occupied vehicle object or nil.
func (c *CharacterObject) Vehicle() *VehicleObject {
	return c.vehicle
}

func (c *CharacterObject) CurrentSeat() int {
	return c.seat
}

// EnterVehicle seats the character in v. A nil vehicle leaves the current one.
func (c *CharacterObject) EnterVehicle(v ai.Vehicle, seat int) {
	if c.vehicle != nil {
		c.vehicle.setOccupant(c.seat, nil)
	}

	vehicle, ok := v.(*VehicleObject)
	if !ok || vehicle == nil {
		c.vehicle = nil
		c.body.Kinematic = false
		return
	}

	c.vehicle = vehicle
	c.seat = seat
	vehicle.setOccupant(seat, c)
	c.body.Kinematic = true
	c.body.Velocity = mgl32.Vec3{}
	c.body.Position = vehicle.SeatPosition(seat)
}

// GiveWeapon adds a weapon to the inventory and makes it active.
func (c *CharacterObject) GiveWeapon(wd *data.WeaponData) *WeaponItem {
	for i, item := range c.inventory {
		if item.data.Name == wd.Name {
			item.ammo += wd.Ammo
			c.active = i
			return item
		}
	}
	item := NewWeaponItem(wd, c)
	c.inventory = append(c.inventory, item)
	c.active = len(c.inventory) - 1
	return item
}

// Inventory returns the carried weapons.
func (c *CharacterObject) Inventory() []*WeaponItem {
	return c.inventory
}

// SetActiveItem selects an inventory slot; -1 holsters.
func (c *CharacterObject) SetActiveItem(slot int) {
	if slot < -1 || slot >= len(c.inventory) {
		return
	}
	c.active = slot
}

// ActiveWeapon returns the equipped weapon or nil.
func (c *CharacterObject) ActiveWeapon() *WeaponItem {
	if c.active < 0 {
		return nil
	}
	return c.inventory[c.active]
}

func (c *CharacterObject) ActiveItem() ai.Weapon {
	if w := c.ActiveWeapon(); w != nil {
		return w
	}
	return nil
}

// Tick advances the character by one step: animation, root motion from the
// previous decision, goal, then the controller.
func (c *CharacterObject) Tick(dt float32) {
	c.lastPosition = c.body.Position
	c.animator.Tick(dt)

	if c.vehicle == nil {
		c.applyLocomotion(dt)
	}

	if c.objects != nil {
		c.controller.UpdateGoal(c.objects)
	}
	c.controller.Update(dt)

	if c.vehicle != nil {
		c.body.Position = c.vehicle.SeatPosition(c.seat)
		c.rotation = c.vehicle.Rotation()
	}
}

func (c *CharacterObject) applyLocomotion(dt float32) {
	move := c.controller.RawMovement()
	clip := c.animator.Animation()
	if !c.anims.IsLocomotion(clip) || math.Abs(float64(move.X())) <= locomotionThreshold {
		return
	}
	speed := float32(WalkSpeed)
	if clip == c.anims.Run {
		speed = RunSpeed
	}
	dir := c.rotation.Rotate(mgl32.Vec3{0, 1, 0})
	c.body.Position = c.body.Position.Add(dir.Mul(move.X() * speed * dt))
}

// Destroy removes the character from the simulation.
func (c *CharacterObject) Destroy() {
	if c.vehicle != nil {
		c.vehicle.setOccupant(c.seat, nil)
		c.vehicle = nil
	}
	c.physics.RemoveBody(c.body)
}
