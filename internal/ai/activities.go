package ai

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/data"
)

const (
	// AnySeat lets EnterVehicle pick the closest passenger seat.
	AnySeat = -1

	goToArrivalDistance = 0.1
	enterSeatDistance   = 0.4
	enterGiveUpDistance = 15.0
	// doorOpenEnough skips the open-door clip when the hinge is already past it.
	doorOpenEnough = 0.6
	// doorOpenPoint is the fraction of the open clip at which the door swings.
	doorOpenPoint = 0.5
)

var forward = mgl32.Vec3{1, 0, 0}

// headingTowards returns the rotation facing dir in the XY plane. Models
// face +Y, hence the quarter turn.
func headingTowards(dir mgl32.Vec3) mgl32.Quat {
	angle := math.Atan2(float64(dir.Y()), float64(dir.X())) - math.Pi/2
	return mgl32.QuatRotate(float32(angle), mgl32.Vec3{0, 0, 1})
}

func horizontal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), v.Y(), 0}
}

// GoTo walks to Target, ignoring height.
type GoTo struct {
	Target mgl32.Vec3
}

func (a *GoTo) Name() string { return "GoTo" }

func (a *GoTo) update(character Character, controller *CharacterController) bool {
	pos := character.Position()
	dir := horizontal(a.Target.Sub(pos))

	if dir.Len() < goToArrivalDistance {
		character.SetPosition(mgl32.Vec3{a.Target.X(), a.Target.Y(), pos.Z()})
		return true
	}

	character.SetRotation(headingTowards(dir))
	controller.SetRawMovement(forward)
	return false
}

// Jump launches the character and waits for it to land.
type Jump struct {
	jumped bool
}

func (a *Jump) Name() string { return "Jump" }

func (a *Jump) update(character Character, controller *CharacterController) bool {
	anims := character.Animations()

	if !a.jumped {
		character.Jump()
		character.PlayAnimation(anims.JumpStart, false)
		a.jumped = true
		return false
	}

	if character.CanJump() {
		character.PlayAnimation(anims.JumpLand, false)
		return true
	}

	animator := character.Animator()
	if animator.Animation() == anims.JumpStart && animator.IsCompleted() {
		character.PlayAnimation(anims.JumpGlide, true)
	}
	return false
}

// EnterVehicle walks to a seat's door and climbs in.
type EnterVehicle struct {
	Vehicle Vehicle
	Seat    int

	entering bool
}

// NewEnterVehicle creates the activity; seat may be AnySeat.
func NewEnterVehicle(v Vehicle, seat int) *EnterVehicle {
	return &EnterVehicle{Vehicle: v, Seat: seat}
}

func (a *EnterVehicle) Name() string { return "EnterVehicle" }

// nearestPassengerSeat returns the passenger seat whose entry point is
// closest to pos, or AnySeat when the vehicle has none.
func nearestPassengerSeat(v Vehicle, pos mgl32.Vec3) int {
	seat := AnySeat
	nearest := float32(math.MaxFloat32)
	for s := 1; s < len(v.Info().Seats); s++ {
		dist := v.SeatEntryPosition(s).Sub(pos).Len()
		if dist < nearest {
			seat = s
			nearest = dist
		}
	}
	return seat
}

func (a *EnterVehicle) update(character Character, controller *CharacterController) bool {
	if a.Seat == AnySeat {
		a.Seat = nearestPassengerSeat(a.Vehicle, character.Position())
		if a.Seat == AnySeat {
			return true
		}
	}

	// Boats have no entry animation.
	if a.Vehicle.Info().Type == data.VehicleBoat {
		character.EnterVehicle(a.Vehicle, a.Seat)
		return true
	}

	anims := character.Animations()
	door := a.Vehicle.SeatEntryDoor(a.Seat)
	anmOpen, anmEnter := anims.CarOpenLHS, anims.CarGetInLHS
	if door != nil && door.DefaultTranslation().X() > 0 {
		anmOpen, anmEnter = anims.CarOpenRHS, anims.CarGetInRHS
	}

	animator := character.Animator()
	if a.entering {
		switch animator.Animation() {
		case anmOpen:
			if animator.IsCompleted() {
				character.PlayAnimation(anmEnter, false)
				character.EnterVehicle(a.Vehicle, a.Seat)
			} else if door != nil && animator.AnimationTime() >= doorOpenPoint {
				a.Vehicle.SetPartTarget(door, true, door.OpenAngle())
			} else {
				character.SetRotation(a.Vehicle.Rotation())
			}
		case anmEnter:
			if animator.IsCompleted() {
				return true
			}
		}
		return false
	}

	dir := horizontal(a.Vehicle.SeatEntryPosition(a.Seat).Sub(character.Position()))
	distance := dir.Len()

	switch {
	case distance <= enterSeatDistance:
		a.entering = true
		controller.SetRawMovement(mgl32.Vec3{})
		character.SetRotation(a.Vehicle.Rotation())

		if door == nil || doorAlreadyOpen(door) {
			character.PlayAnimation(anmEnter, false)
			character.EnterVehicle(a.Vehicle, a.Seat)
		} else {
			character.PlayAnimation(anmOpen, false)
		}
	case distance > enterGiveUpDistance:
		return true
	default:
		character.SetRotation(headingTowards(dir))
		controller.SetRawMovement(forward)
	}
	return false
}

func doorAlreadyOpen(door Door) bool {
	hinge := door.Constraint()
	return hinge != nil && math.Abs(float64(hinge.HingeAngle())) >= doorOpenEnough
}

// ExitVehicle climbs out of the current seat.
type ExitVehicle struct{}

func (a *ExitVehicle) Name() string { return "ExitVehicle" }

func (a *ExitVehicle) update(character Character, controller *CharacterController) bool {
	vehicle := character.CurrentVehicle()
	if vehicle == nil {
		return true
	}

	seat := character.CurrentSeat()
	door := vehicle.SeatEntryDoor(seat)

	anims := character.Animations()
	anmExit := anims.CarGetOutLHS
	if door != nil && door.DefaultTranslation().X() > 0 {
		anmExit = anims.CarGetOutRHS
	}

	if vehicle.Info().Type == data.VehicleBoat {
		pos := character.Position()
		character.EnterVehicle(nil, seat)
		character.SetPosition(pos)
		return true
	}

	animator := character.Animator()
	if animator.Animation() == anmExit {
		if animator.IsCompleted() {
			exit := vehicle.SeatEntryPosition(seat)
			character.EnterVehicle(nil, seat)
			character.SetPosition(exit)
			return true
		}
		return false
	}

	character.PlayAnimation(anmExit, false)
	if door != nil {
		vehicle.SetPartTarget(door, true, door.OpenAngle())
	}
	return false
}

// ShootWeapon plays the firing animation of Item and discharges it at the
// weapon's fire point.
type ShootWeapon struct {
	Item Weapon

	fired bool
}

// NewShootWeapon creates the activity for item.
func NewShootWeapon(item Weapon) *ShootWeapon {
	return &ShootWeapon{Item: item}
}

func (a *ShootWeapon) Name() string { return "ShootWeapon" }

func (a *ShootWeapon) update(character Character, controller *CharacterController) bool {
	if a.Item == nil {
		return true
	}
	wepdata := a.Item.WeaponData()

	switch wepdata.FireType {
	case data.FireInstantHit:
		return a.updateInstantHit(character, wepdata)
	case data.FireProjectile:
		return a.updateProjectile(character, wepdata)
	default:
		return true
	}
}

// Instant hit weapons loop their animation while the trigger is held.
func (a *ShootWeapon) updateInstantHit(character Character, wepdata *data.WeaponData) bool {
	animator := character.Animator()
	shootanim := character.Animations().Lookup(wepdata.Animation1)

	if !a.Item.IsFiring() {
		return shootanim == nil || animator.Animation() != shootanim || animator.IsCompleted()
	}
	if shootanim == nil {
		return false
	}

	if animator.Animation() != shootanim {
		character.PlayAnimation(shootanim, false)
	}

	loopStart := wepdata.AnimLoopStart / 100
	loopEnd := wepdata.AnimLoopEnd / 100
	fireTime := wepdata.AnimFirePoint / 100

	current := animator.AnimationTime()
	if current >= fireTime && !a.fired {
		a.Item.Fire()
		a.fired = true
	}
	if current > loopEnd {
		animator.SetAnimationTime(loopStart)
		a.fired = false
	}
	return false
}

// Projectiles wind up, then throw once.
func (a *ShootWeapon) updateProjectile(character Character, wepdata *data.WeaponData) bool {
	animator := character.Animator()
	anims := character.Animations()
	shootanim := anims.Lookup(wepdata.Animation1)
	throwanim := anims.Lookup(wepdata.Animation2)

	if throwanim == nil {
		return true
	}

	current := animator.Animation()
	switch {
	case shootanim != nil && current == shootanim:
		if animator.IsCompleted() {
			animator.SetAnimation(throwanim, false)
		}
	case current == throwanim:
		fireTime := wepdata.AnimCrouchFirePoint / 100
		if animator.AnimationTime() >= fireTime && !a.fired {
			a.Item.Fire()
			a.fired = true
		}
		if animator.IsCompleted() {
			return true
		}
	case shootanim != nil:
		animator.SetAnimation(shootanim, false)
	default:
		animator.SetAnimation(throwanim, false)
	}
	return false
}
