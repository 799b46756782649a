package ai

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/anim"
	"github.com/annelo/rwsim/internal/data"
)

// Animator is the character's animation player.
type Animator interface {
	Animation() *anim.Clip
	IsCompleted() bool
	// AnimationTime is the play position as a fraction in [0,1].
	AnimationTime() float32
	SetAnimationTime(f float32)
	SetAnimation(clip *anim.Clip, repeat bool)
}

// Hinge is the physical constraint driving a door.
type Hinge interface {
	HingeAngle() float32
}

// Door is a hinged vehicle part.
type Door interface {
	DefaultTranslation() mgl32.Vec3
	OpenAngle() float32
	ClosedAngle() float32
	// Constraint returns nil for doors without a hinge.
	Constraint() Hinge
}

// Vehicle is what a character can sit in and drive.
type Vehicle interface {
	Info() *data.VehicleInfo
	Rotation() mgl32.Quat
	SeatEntryPosition(seat int) mgl32.Vec3
	// SeatEntryDoor returns nil when the seat has no door.
	SeatEntryDoor(seat int) Door
	SetPartTarget(door Door, enable bool, angle float32)
	SetSteeringAngle(angle float32)
	SetThrottle(throttle float32)
	SetHandbraking(on bool)
}

// Weapon is an item a character can fire.
type Weapon interface {
	WeaponData() *data.WeaponData
	Fire()
	IsFiring() bool
	Primary(active bool)
	Secondary(active bool)
}

// Character is the body a controller drives.
type Character interface {
	Position() mgl32.Vec3
	SetPosition(p mgl32.Vec3)
	Rotation() mgl32.Quat
	SetRotation(r mgl32.Quat)

	Animator() Animator
	Animations() *anim.Set
	PlayAnimation(clip *anim.Clip, repeat bool)

	Jump()
	CanJump() bool

	// CurrentVehicle returns nil while on foot.
	CurrentVehicle() Vehicle
	CurrentSeat() int
	// EnterVehicle seats the character; a nil vehicle leaves the current one.
	EnterVehicle(v Vehicle, seat int)

	// ActiveItem returns nil when nothing is equipped.
	ActiveItem() Weapon
}
