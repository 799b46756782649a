package world

import (
	"time"

	"github.com/annelo/rwsim/internal/objectmanager"
)

// Summary is a read-only view of the world for frontends and inspectors.
type Summary struct {
	GameTime    time.Duration
	Clock       string
	Weather     string
	Pedestrians int
	Vehicles    int
	Pickups     int
	Effects     int
	Ambient     int
	Cutscene    bool

	PlayerPosition [3]float32
	PlayerActivity string
	PlayerVehicle  string
	PlayerAmmo     int

	Texts []string
}

// Summarize collects the current Summary.
func (w *GameWorld) Summarize() Summary {
	s := Summary{
		GameTime:    w.Clock.GameTime(),
		Clock:       w.Clock.String(),
		Weather:     w.Weather.Type.String(),
		Pedestrians: w.Objects.Count(objectmanager.KindCharacter),
		Vehicles:    w.Objects.Count(objectmanager.KindVehicle),
		Pickups:     w.Objects.Count(objectmanager.KindPickup),
		Effects:     len(w.effects),
		Ambient:     len(w.ambient),
		Cutscene:    w.InCutscene(),
		Texts:       w.Texts(),
	}
	if p := w.Player(); p != nil {
		pos := p.Position()
		s.PlayerPosition = [3]float32{pos.X(), pos.Y(), pos.Z()}
		if a := p.Controller().CurrentActivity(); a != nil {
			s.PlayerActivity = a.Name()
		}
		if v := p.Vehicle(); v != nil {
			s.PlayerVehicle = v.Info().Model
		}
		if wpn := p.ActiveWeapon(); wpn != nil {
			s.PlayerAmmo = wpn.Ammo()
		}
	}
	return s
}
