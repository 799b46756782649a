package gameloop

import (
	"context"
	"fmt"
	"time"
)

// TimeSystem отвечает за ход игрового времени и катсцен.
type TimeSystem struct {
	deps     Dependencies
	lastHour int
}

func NewTimeSystem() *TimeSystem { return &TimeSystem{} }

func (t *TimeSystem) Name() string { return "time" }

func (t *TimeSystem) Init(deps Dependencies) error {
	if deps.World == nil {
		return fmt.Errorf("time system needs a world")
	}
	t.deps = deps
	t.lastHour = deps.World.Clock.Hour
	return nil
}

func (t *TimeSystem) Tick(ctx context.Context, dt time.Duration) error {
	w := t.deps.World
	w.Clock.Advance(dt)
	w.AdvanceCutscene(float32(dt.Seconds()))

	// Оповещаем подписчиков раз в игровой час
	if w.Clock.Hour != t.lastHour {
		t.lastHour = w.Clock.Hour
		t.deps.Logger.Debugf("[TimeSystem.Tick] broadcasting TIME_CHANGED at %s", w.Clock)
		if t.deps.EmitWorldEvent != nil {
			t.deps.EmitWorldEvent(WorldEvent{
				Type:     EventTimeChanged,
				GameTime: w.Clock.GameTime(),
				Message:  w.Clock.String(),
				Fields: map[string]any{
					"hour":   w.Clock.Hour,
					"minute": w.Clock.Minute,
				},
			})
		}
	}
	return nil
}

// EffectsSystem ages particle effects.
type EffectsSystem struct {
	deps Dependencies
}

func NewEffectsSystem() *EffectsSystem { return &EffectsSystem{} }

func (e *EffectsSystem) Name() string { return "effects" }

func (e *EffectsSystem) Init(deps Dependencies) error {
	e.deps = deps
	return nil
}

func (e *EffectsSystem) Tick(ctx context.Context, dt time.Duration) error {
	e.deps.World.UpdateEffects(float32(dt.Seconds()))
	return nil
}

// ObjectSystem ticks every object in insertion order.
type ObjectSystem struct {
	deps Dependencies
}

func NewObjectSystem() *ObjectSystem { return &ObjectSystem{} }

func (o *ObjectSystem) Name() string { return "objects" }

func (o *ObjectSystem) Init(deps Dependencies) error {
	o.deps = deps
	return nil
}

func (o *ObjectSystem) Tick(ctx context.Context, dt time.Duration) error {
	o.deps.World.TickObjects(float32(dt.Seconds()))
	return nil
}

// PhysicsSystem steps the physics world.
type PhysicsSystem struct {
	deps Dependencies
}

func NewPhysicsSystem() *PhysicsSystem { return &PhysicsSystem{} }

func (p *PhysicsSystem) Name() string { return "physics" }

func (p *PhysicsSystem) Init(deps Dependencies) error {
	p.deps = deps
	return nil
}

func (p *PhysicsSystem) Tick(ctx context.Context, dt time.Duration) error {
	p.deps.World.StepPhysics(float32(dt.Seconds()))
	return nil
}

// ScriptSystem gives the script machine its slice of the step. Script
// faults end the loop.
type ScriptSystem struct {
	deps Dependencies
}

func NewScriptSystem() *ScriptSystem { return &ScriptSystem{} }

func (s *ScriptSystem) Name() string { return "script" }

func (s *ScriptSystem) Init(deps Dependencies) error {
	s.deps = deps
	return nil
}

func (s *ScriptSystem) Tick(ctx context.Context, dt time.Duration) error {
	if s.deps.Script == nil {
		return nil
	}
	return s.deps.Script.Execute(dt)
}

// DefaultSystems returns the built-in systems in step order.
func DefaultSystems(seed int64) []System {
	return []System{
		NewTimeSystem(),
		NewEffectsSystem(),
		NewObjectSystem(),
		NewPhysicsSystem(),
		NewScriptSystem(),
		NewTrafficSystem(seed),
		NewWeatherSystem(seed),
	}
}
