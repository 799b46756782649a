package world

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/storage"
)

// Snapshot captures the world into a save. Path nodes and effects are not
// saved; the caller fills TimeScale.
func (w *GameWorld) Snapshot() *storage.SaveGame {
	save := &storage.SaveGame{
		Version:  storage.SaveVersion,
		SavedAt:  time.Now().Unix(),
		GameTime: w.Clock.GameTime().Seconds(),
		Hour:     w.Clock.Hour,
		Minute:   w.Clock.Minute,
		Weather:  w.Weather.Type.String(),
	}

	for _, obj := range w.Objects.All() {
		switch o := obj.(type) {
		case *objects.VehicleObject:
			r := o.Rotation()
			save.Vehicles = append(save.Vehicles, storage.VehicleState{
				ID:       string(o.ID()),
				Model:    o.Info().Model,
				Position: vec(o.Position()),
				Rotation: [4]float32{r.W, r.V.X(), r.V.Y(), r.V.Z()},
			})
		case *objects.CharacterObject:
			state := storage.CharacterState{
				ID:       string(o.ID()),
				Model:    o.Model,
				Position: vec(o.Position()),
				Heading:  o.Heading(),
				Player:   o.ID() == w.player,
				Ambient:  w.ambient[o.ID()],
				Active:   -1,
			}
			if v := o.Vehicle(); v != nil {
				state.Vehicle = string(v.ID())
				state.Seat = o.CurrentSeat()
			}
			active := o.ActiveWeapon()
			for i, item := range o.Inventory() {
				state.Weapons = append(state.Weapons, storage.WeaponState{
					Name: item.WeaponData().Name,
					Ammo: item.Ammo(),
				})
				if item == active {
					state.Active = i
				}
			}
			save.Characters = append(save.Characters, state)
		case *objects.PickupObject:
			if o.Collected() {
				continue
			}
			save.Pickups = append(save.Pickups, storage.PickupState{
				Weapon:   o.Weapon().Name,
				Position: vec(o.Position()),
			})
		}
	}
	return save
}

// Restore replaces the world contents with save. Objects get fresh handles.
func (w *GameWorld) Restore(save *storage.SaveGame) error {
	if save.Version != storage.SaveVersion {
		return fmt.Errorf("restore: save version %d, want %d", save.Version, storage.SaveVersion)
	}
	weather, err := ParseWeather(save.Weather)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	w.Clear()
	w.Clock.Set(save.Hour, save.Minute)
	w.Clock.SetGameTime(time.Duration(save.GameTime * float64(time.Second)))
	w.Weather.Type = weather

	vehicles := make(map[string]*objects.VehicleObject, len(save.Vehicles))
	for _, vs := range save.Vehicles {
		v, err := w.CreateVehicle(vs.Model, unvec(vs.Position), 0)
		if err != nil {
			return fmt.Errorf("restore vehicle %s: %w", vs.ID, err)
		}
		v.SetRotation(mgl32.Quat{W: vs.Rotation[0], V: mgl32.Vec3{vs.Rotation[1], vs.Rotation[2], vs.Rotation[3]}})
		vehicles[vs.ID] = v
	}

	for _, cs := range save.Characters {
		c, err := w.CreatePedestrian(unvec(cs.Position), cs.Heading)
		if err != nil {
			return fmt.Errorf("restore character %s: %w", cs.ID, err)
		}
		c.Model = cs.Model
		if cs.Player {
			w.player = c.ID()
		}
		if cs.Ambient {
			w.ambient[c.ID()] = true
		}
		for _, ws := range cs.Weapons {
			item, err := w.GiveWeapon(c, ws.Name)
			if err != nil {
				return fmt.Errorf("restore character %s: %w", cs.ID, err)
			}
			item.SetAmmo(ws.Ammo)
		}
		c.SetActiveItem(cs.Active)
		if cs.Vehicle != "" {
			v, ok := vehicles[cs.Vehicle]
			if !ok {
				w.logger.Warnw("[World] saved character references a missing vehicle",
					"character", cs.ID, "vehicle", cs.Vehicle)
				continue
			}
			c.EnterVehicle(v, cs.Seat)
		}
	}

	for _, ps := range save.Pickups {
		if _, err := w.CreatePickup(ps.Weapon, unvec(ps.Position)); err != nil {
			return fmt.Errorf("restore pickup: %w", err)
		}
	}

	w.logger.Infow("[World] restored save",
		"characters", len(save.Characters),
		"vehicles", len(save.Vehicles),
		"pickups", len(save.Pickups))
	return nil
}

func vec(v mgl32.Vec3) [3]float32 {
	return [3]float32{v.X(), v.Y(), v.Z()}
}

func unvec(a [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{a[0], a[1], a[2]}
}
