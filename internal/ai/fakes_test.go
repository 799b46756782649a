package ai_test

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/anim"
	"github.com/annelo/rwsim/internal/data"
)

type fakeCharacter struct {
	pos      mgl32.Vec3
	rot      mgl32.Quat
	animator *anim.Animator
	anims    *anim.Set

	canJump bool
	jumps   int

	vehicle ai.Vehicle
	seat    int
	item    ai.Weapon
}

func newFakeCharacter(pos mgl32.Vec3) *fakeCharacter {
	lib := anim.NewLibrary(data.DefaultCatalog().Clips)
	return &fakeCharacter{
		pos:      pos,
		rot:      mgl32.QuatIdent(),
		animator: anim.NewAnimator(),
		anims:    anim.NewSet(lib),
		canJump:  true,
	}
}

func (c *fakeCharacter) Position() mgl32.Vec3     { return c.pos }
func (c *fakeCharacter) SetPosition(p mgl32.Vec3) { c.pos = p }
func (c *fakeCharacter) Rotation() mgl32.Quat     { return c.rot }
func (c *fakeCharacter) SetRotation(r mgl32.Quat) { c.rot = r }
func (c *fakeCharacter) Animator() ai.Animator    { return c.animator }
func (c *fakeCharacter) Animations() *anim.Set    { return c.anims }
func (c *fakeCharacter) CanJump() bool            { return c.canJump }
func (c *fakeCharacter) CurrentVehicle() ai.Vehicle {
	return c.vehicle
}
func (c *fakeCharacter) CurrentSeat() int      { return c.seat }
func (c *fakeCharacter) ActiveItem() ai.Weapon { return c.item }

func (c *fakeCharacter) PlayAnimation(clip *anim.Clip, repeat bool) {
	c.animator.SetAnimation(clip, repeat)
}

func (c *fakeCharacter) Jump() {
	if c.canJump {
		c.canJump = false
		c.jumps++
	}
}

func (c *fakeCharacter) EnterVehicle(v ai.Vehicle, seat int) {
	c.vehicle = v
	c.seat = seat
}

// walk moves the character the way the locomotion system would.
func (c *fakeCharacter) walk(movement mgl32.Vec3, speed, dt float32) {
	if movement.X() == 0 {
		return
	}
	dir := c.rot.Rotate(mgl32.Vec3{0, 1, 0})
	c.pos = c.pos.Add(dir.Mul(movement.X() * speed * dt))
}

type fakeHinge struct {
	angle float32
}

func (h *fakeHinge) HingeAngle() float32 { return h.angle }

type fakeDoor struct {
	translation mgl32.Vec3
	open        float32
	closed      float32
	hinge       *fakeHinge
}

func (d *fakeDoor) DefaultTranslation() mgl32.Vec3 { return d.translation }
func (d *fakeDoor) OpenAngle() float32             { return d.open }
func (d *fakeDoor) ClosedAngle() float32           { return d.closed }

func (d *fakeDoor) Constraint() ai.Hinge {
	if d.hinge == nil {
		return nil
	}
	return d.hinge
}

type partTarget struct {
	door   ai.Door
	enable bool
	angle  float32
}

type fakeVehicle struct {
	info    *data.VehicleInfo
	rot     mgl32.Quat
	entries []mgl32.Vec3
	doors   []*fakeDoor

	targets   []partTarget
	steer     float32
	throttle  float32
	handbrake bool
}

func newFakeVehicle(kind data.VehicleType, entries ...mgl32.Vec3) *fakeVehicle {
	info := &data.VehicleInfo{Model: "fake", Type: kind}
	for range entries {
		info.Seats = append(info.Seats, data.SeatInfo{})
	}
	return &fakeVehicle{
		info:      info,
		rot:       mgl32.QuatIdent(),
		entries:   entries,
		doors:     make([]*fakeDoor, len(entries)),
		handbrake: true,
	}
}

func (v *fakeVehicle) Info() *data.VehicleInfo { return v.info }
func (v *fakeVehicle) Rotation() mgl32.Quat    { return v.rot }

func (v *fakeVehicle) SeatEntryPosition(seat int) mgl32.Vec3 {
	return v.entries[seat]
}

func (v *fakeVehicle) SeatEntryDoor(seat int) ai.Door {
	if seat < 0 || seat >= len(v.doors) || v.doors[seat] == nil {
		return nil
	}
	return v.doors[seat]
}

func (v *fakeVehicle) SetPartTarget(door ai.Door, enable bool, angle float32) {
	v.targets = append(v.targets, partTarget{door: door, enable: enable, angle: angle})
}

func (v *fakeVehicle) SetSteeringAngle(angle float32) { v.steer = angle }
func (v *fakeVehicle) SetThrottle(throttle float32)   { v.throttle = throttle }
func (v *fakeVehicle) SetHandbraking(on bool)         { v.handbrake = on }

type fakeWeapon struct {
	data   *data.WeaponData
	firing bool
	fires  int
}

func newFakeWeapon(name string) *fakeWeapon {
	wd, ok := data.DefaultCatalog().Weapon(name)
	if !ok {
		panic("unknown weapon " + name)
	}
	return &fakeWeapon{data: wd}
}

func (w *fakeWeapon) WeaponData() *data.WeaponData { return w.data }
func (w *fakeWeapon) Fire()                        { w.fires++ }
func (w *fakeWeapon) IsFiring() bool               { return w.firing }
func (w *fakeWeapon) Primary(active bool)          { w.firing = active }
func (w *fakeWeapon) Secondary(active bool)        {}
