package objects

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/objectmanager"
)

// PickupRadius is how close an on-foot character must come to collect.
const PickupRadius = 1.0

// PickupObject hands its weapon to the first pedestrian that walks over it.
type PickupObject struct {
	id       objectmanager.ID
	position mgl32.Vec3
	weapon   *data.WeaponData
	objects  *objectmanager.ObjectManager

	collected bool
}

// NewPickup places a weapon pickup.
func NewPickup(om *objectmanager.ObjectManager, wd *data.WeaponData, pos mgl32.Vec3) *PickupObject {
	return &PickupObject{
		id:       objectmanager.NewID(),
		position: pos,
		weapon:   wd,
		objects:  om,
	}
}

func (p *PickupObject) ID() objectmanager.ID     { return p.id }
func (p *PickupObject) Kind() objectmanager.Kind { return objectmanager.KindPickup }
func (p *PickupObject) Position() mgl32.Vec3     { return p.position }
func (p *PickupObject) Weapon() *data.WeaponData { return p.weapon }

// Collected reports whether someone has taken the pickup.
func (p *PickupObject) Collected() bool {
	return p.collected
}

func (p *PickupObject) Tick(dt float32) {
	if p.collected {
		return
	}
	for _, obj := range p.objects.All() {
		c, ok := obj.(*CharacterObject)
		if !ok || c.Vehicle() != nil {
			continue
		}
		if c.Position().Sub(p.position).Len() <= PickupRadius {
			c.GiveWeapon(p.weapon)
			p.collected = true
			return
		}
	}
}

// PathNode is a named waypoint pedestrians can be sent to.
type PathNode struct {
	id       objectmanager.ID
	Name     string
	position mgl32.Vec3
}

// NewPathNode creates a waypoint.
func NewPathNode(name string, pos mgl32.Vec3) *PathNode {
	return &PathNode{id: objectmanager.NewID(), Name: name, position: pos}
}

func (n *PathNode) ID() objectmanager.ID     { return n.id }
func (n *PathNode) Kind() objectmanager.Kind { return objectmanager.KindPathNode }
func (n *PathNode) Position() mgl32.Vec3     { return n.position }
func (n *PathNode) Tick(dt float32)          {}
