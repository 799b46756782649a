package world

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/objects"
)

// SpawnAmbientPedestrian creates a pedestrian owned by the traffic system.
func (w *GameWorld) SpawnAmbientPedestrian(pos mgl32.Vec3, heading float32) (*objects.CharacterObject, error) {
	c, err := w.CreatePedestrian(pos, heading)
	if err != nil {
		return nil, err
	}
	w.ambient[c.ID()] = true
	return c, nil
}

// SpawnAmbientVehicle parks a vehicle owned by the traffic system.
func (w *GameWorld) SpawnAmbientVehicle(model string, pos mgl32.Vec3, heading float32) (*objects.VehicleObject, error) {
	v, err := w.CreateVehicle(model, pos, heading)
	if err != nil {
		return nil, err
	}
	w.ambient[v.ID()] = true
	return v, nil
}

// IsAmbient reports whether id was spawned by the traffic system.
func (w *GameWorld) IsAmbient(id objectmanager.ID) bool {
	return w.ambient[id]
}

// AmbientCount counts live ambient objects of kind.
func (w *GameWorld) AmbientCount(kind objectmanager.Kind) int {
	n := 0
	for id := range w.ambient {
		obj, err := w.Objects.Get(id)
		if err == nil && obj.Kind() == kind {
			n++
		}
	}
	return n
}

// CleanupAmbient queues ambient objects farther than radius from center for
// destruction. Vehicles carrying the player and seated pedestrians are kept.
func (w *GameWorld) CleanupAmbient(center mgl32.Vec3, radius float32) int {
	player := w.Player()
	n := 0
	for _, obj := range w.Objects.All() {
		if !w.ambient[obj.ID()] {
			continue
		}
		if obj.Position().Sub(center).Len() <= radius {
			continue
		}
		switch o := obj.(type) {
		case *objects.VehicleObject:
			if player != nil && player.Vehicle() == o {
				continue
			}
		case *objects.CharacterObject:
			if o.Vehicle() != nil {
				continue
			}
		}
		w.DestroyObject(obj.ID())
		n++
	}
	return n
}

// WanderAmbient sends idle ambient pedestrians to a random point within
// radius of where they stand. It returns how many were given a destination.
func (w *GameWorld) WanderAmbient(rng *rand.Rand, radius float32) int {
	n := 0
	for _, c := range w.Characters() {
		if !w.ambient[c.ID()] || c.Vehicle() != nil {
			continue
		}
		ctrl := c.Controller()
		if ctrl.Goal() != ai.GoalNone || ctrl.CurrentActivity() != nil || ctrl.NextActivity() != nil {
			continue
		}
		angle := rng.Float64() * 2 * math.Pi
		dist := float32(rng.Float64()) * radius
		offset := mgl32.Vec3{float32(math.Cos(angle)) * dist, float32(math.Sin(angle)) * dist, 0}
		ctrl.SetNextActivity(&ai.GoTo{Target: c.Position().Add(offset)})
		n++
	}
	return n
}
