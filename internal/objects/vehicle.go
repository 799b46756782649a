package objects

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/physics"
)

const (
	// entryOutset is how far beside the seat a pedestrian stands to get in.
	entryOutset = 1.0
	// acceleration and braking in units per second squared.
	acceleration = 8.0
	braking      = 20.0
	wheelBase    = 2.5
)

// VehiclePart is a hinged door.
type VehiclePart struct {
	info  *data.DoorInfo
	hinge *physics.Hinge
}

func (p *VehiclePart) Name() string { return p.info.Name }

func (p *VehiclePart) DefaultTranslation() mgl32.Vec3 {
	t := p.info.Translation
	return mgl32.Vec3{t[0], t[1], t[2]}
}

func (p *VehiclePart) OpenAngle() float32   { return p.info.OpenAngle }
func (p *VehiclePart) ClosedAngle() float32 { return p.info.ClosedAngle }

func (p *VehiclePart) Constraint() ai.Hinge {
	if p.hinge == nil {
		return nil
	}
	return p.hinge
}

// Angle returns the door's hinge angle, zero for unhinged parts.
func (p *VehiclePart) Angle() float32 {
	if p.hinge == nil {
		return 0
	}
	return p.hinge.HingeAngle()
}

// VehicleObject is a drivable vehicle.
type VehicleObject struct {
	id   objectmanager.ID
	info *data.VehicleInfo

	position     mgl32.Vec3
	lastPosition mgl32.Vec3
	rotation     mgl32.Quat

	parts     []*VehiclePart
	occupants []*CharacterObject

	steering  float32
	throttle  float32
	speed     float32
	handbrake bool

	physics *physics.World
}

// NewVehicle places a vehicle of the given model. Hinged doors start closed.
func NewVehicle(pw *physics.World, info *data.VehicleInfo, pos mgl32.Vec3, rot mgl32.Quat) *VehicleObject {
	v := &VehicleObject{
		id:           objectmanager.NewID(),
		info:         info,
		position:     pos,
		lastPosition: pos,
		rotation:     rot,
		occupants:    make([]*CharacterObject, len(info.Seats)),
		handbrake:    true,
		physics:      pw,
	}
	for i := range info.Doors {
		part := &VehiclePart{info: &info.Doors[i]}
		if part.info.Constrained {
			part.hinge = pw.NewHinge(part.info.ClosedAngle)
		}
		v.parts = append(v.parts, part)
	}
	return v
}

func (v *VehicleObject) ID() objectmanager.ID     { return v.id }
func (v *VehicleObject) Kind() objectmanager.Kind { return objectmanager.KindVehicle }
func (v *VehicleObject) Info() *data.VehicleInfo  { return v.info }
func (v *VehicleObject) Position() mgl32.Vec3     { return v.position }
func (v *VehicleObject) Rotation() mgl32.Quat     { return v.rotation }

// LastPosition is the position at the start of the current step.
func (v *VehicleObject) LastPosition() mgl32.Vec3 {
	return v.lastPosition
}

// SetPosition teleports the vehicle.
func (v *VehicleObject) SetPosition(p mgl32.Vec3) {
	v.position = p
}

// SetRotation turns the vehicle in place.
func (v *VehicleObject) SetRotation(r mgl32.Quat) {
	v.rotation = r
}

// Speed returns the forward speed in units per second.
func (v *VehicleObject) Speed() float32 {
	return v.speed
}

func (v *VehicleObject) Throttle() float32 { return v.throttle }
func (v *VehicleObject) Steering() float32 { return v.steering }
func (v *VehicleObject) Handbraking() bool { return v.handbrake }

// Parts returns the doors in catalog order.
func (v *VehicleObject) Parts() []*VehiclePart {
	return v.parts
}

// Part returns the named door or nil.
func (v *VehicleObject) Part(name string) *VehiclePart {
	for _, p := range v.parts {
		if p.info.Name == name {
			return p
		}
	}
	return nil
}

// SeatPosition returns the world position of a seat.
func (v *VehicleObject) SeatPosition(seat int) mgl32.Vec3 {
	if seat < 0 || seat >= len(v.info.Seats) {
		return v.position
	}
	return v.position.Add(v.rotation.Rotate(v.info.Seats[seat].Position()))
}

// SeatEntryPosition returns where a pedestrian stands to use a seat.
func (v *VehicleObject) SeatEntryPosition(seat int) mgl32.Vec3 {
	if seat < 0 || seat >= len(v.info.Seats) {
		return v.position
	}
	local := v.info.Seats[seat].Position()
	if v.info.Type != data.VehicleBoat {
		if local.X() < 0 {
			local[0] -= entryOutset
		} else {
			local[0] += entryOutset
		}
	}
	return v.position.Add(v.rotation.Rotate(local))
}

// SeatEntryDoor returns the seat's door.
func (v *VehicleObject) SeatEntryDoor(seat int) ai.Door {
	if seat < 0 || seat >= len(v.info.Seats) {
		return nil
	}
	part := v.Part(v.info.Seats[seat].Door)
	if part == nil {
		return nil
	}
	return part
}

// SetPartTarget drives a door's hinge towards angle.
func (v *VehicleObject) SetPartTarget(door ai.Door, enable bool, angle float32) {
	part, ok := door.(*VehiclePart)
	if !ok || part.hinge == nil {
		return
	}
	part.hinge.SetTarget(enable, angle)
}

func (v *VehicleObject) SetSteeringAngle(angle float32) {
	v.steering = mgl32.Clamp(angle, -1, 1)
}

func (v *VehicleObject) SetThrottle(throttle float32) {
	v.throttle = mgl32.Clamp(throttle, -1, 1)
}

func (v *VehicleObject) SetHandbraking(on bool) {
	v.handbrake = on
}

// Occupant returns who sits in seat, or nil.
func (v *VehicleObject) Occupant(seat int) *CharacterObject {
	if seat < 0 || seat >= len(v.occupants) {
		return nil
	}
	return v.occupants[seat]
}

// Driver returns the occupant of seat 0.
func (v *VehicleObject) Driver() *CharacterObject {
	return v.Occupant(0)
}

func (v *VehicleObject) setOccupant(seat int, c *CharacterObject) {
	if seat < 0 || seat >= len(v.occupants) {
		return
	}
	v.occupants[seat] = c
}

// Tick integrates speed and heading from the driver's inputs.
func (v *VehicleObject) Tick(dt float32) {
	v.lastPosition = v.position

	if v.Driver() == nil {
		v.throttle = 0
	}

	if v.handbrake {
		v.speed = approach(v.speed, 0, braking*dt)
	} else {
		v.speed = approach(v.speed, v.throttle*v.info.MaxSpeed, acceleration*dt)
	}

	if v.speed != 0 && v.steering != 0 {
		yaw := v.steering * v.info.MaxSteer * v.speed / wheelBase * dt
		v.rotation = mgl32.QuatRotate(yaw, mgl32.Vec3{0, 0, 1}).Mul(v.rotation).Normalize()
	}

	forward := v.rotation.Rotate(mgl32.Vec3{0, 1, 0})
	v.position = v.position.Add(forward.Mul(v.speed * dt))
}

// Destroy removes the vehicle's hinges and ejects its occupants.
func (v *VehicleObject) Destroy() {
	for seat, c := range v.occupants {
		if c != nil {
			c.EnterVehicle(nil, seat)
		}
	}
	for _, p := range v.parts {
		if p.hinge != nil {
			v.physics.RemoveHinge(p.hinge)
		}
	}
}

func approach(value, target, step float32) float32 {
	if value < target {
		return mgl32.Clamp(value+step, value, target)
	}
	return mgl32.Clamp(value-step, target, value)
}
