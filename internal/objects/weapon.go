package objects

import (
	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/data"
)

// WeaponItem is a weapon in a character's inventory.
type WeaponItem struct {
	data  *data.WeaponData
	owner *CharacterObject

	firing bool
	aiming bool
	ammo   int
	shots  int

	onFire func(*WeaponItem)
}

// NewWeaponItem creates a weapon with the catalog's starting ammo.
func NewWeaponItem(wd *data.WeaponData, owner *CharacterObject) *WeaponItem {
	return &WeaponItem{data: wd, owner: owner, ammo: wd.Ammo}
}

func (w *WeaponItem) WeaponData() *data.WeaponData { return w.data }
func (w *WeaponItem) IsFiring() bool               { return w.firing }
func (w *WeaponItem) IsAiming() bool               { return w.aiming }
func (w *WeaponItem) Ammo() int                    { return w.ammo }
func (w *WeaponItem) Shots() int                   { return w.shots }
func (w *WeaponItem) Owner() *CharacterObject      { return w.owner }

// SetAmmo overrides the remaining rounds.
func (w *WeaponItem) SetAmmo(n int) {
	if n < 0 {
		n = 0
	}
	w.ammo = n
}

// OnFire registers a callback invoked for every discharged round.
func (w *WeaponItem) OnFire(fn func(*WeaponItem)) {
	w.onFire = fn
}

// Fire discharges one round if there is ammo left.
func (w *WeaponItem) Fire() {
	if w.ammo <= 0 {
		w.firing = false
		return
	}
	w.ammo--
	w.shots++
	if w.onFire != nil {
		w.onFire(w)
	}
}

// Primary holds or releases the trigger. Pulling it queues a ShootWeapon
// activity on the owner unless one is already running.
func (w *WeaponItem) Primary(active bool) {
	w.firing = active && w.ammo > 0
	if !w.firing || w.owner == nil {
		return
	}
	ctrl := w.owner.Controller()
	if _, shooting := ctrl.CurrentActivity().(*ai.ShootWeapon); shooting {
		return
	}
	ctrl.SetNextActivity(ai.NewShootWeapon(w))
}

// Secondary toggles aiming.
func (w *WeaponItem) Secondary(active bool) {
	w.aiming = active
}
