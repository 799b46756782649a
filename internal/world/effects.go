package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Effect is a short lived visual effect such as a muzzle flash.
type Effect struct {
	Name      string
	Position  mgl32.Vec3
	Remaining float32
}

// Text is an on-screen message.
type Text struct {
	ID        string
	Body      string
	Remaining float32
}

// PermanentEffect is a lifetime that never expires.
const PermanentEffect float32 = -1

// AddEffect spawns an effect lasting lifetime seconds. A negative lifetime
// keeps it until RemoveEffect.
func (w *GameWorld) AddEffect(name string, pos mgl32.Vec3, lifetime float32) *Effect {
	e := &Effect{Name: name, Position: pos, Remaining: lifetime}
	w.effects = append(w.effects, e)
	return e
}

// Permanent reports whether e never expires.
func (e *Effect) Permanent() bool {
	return e.Remaining < 0
}

// RemoveEffect drops e before it expires.
func (w *GameWorld) RemoveEffect(e *Effect) {
	for i, other := range w.effects {
		if other == e {
			w.effects = append(w.effects[:i], w.effects[i+1:]...)
			return
		}
	}
}

// Effects returns the live effects.
func (w *GameWorld) Effects() []*Effect {
	return w.effects
}

// UpdateEffects ages effects by dt and drops the expired ones.
func (w *GameWorld) UpdateEffects(dt float32) {
	live := w.effects[:0]
	for _, e := range w.effects {
		if e.Permanent() {
			live = append(live, e)
			continue
		}
		e.Remaining -= dt
		if e.Remaining > 0 {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(w.effects); i++ {
		w.effects[i] = nil
	}
	w.effects = live
}

// ShowText displays body for duration seconds, replacing any text with id.
func (w *GameWorld) ShowText(id, body string, duration float32) {
	for _, t := range w.texts {
		if t.ID == id {
			t.Body = body
			t.Remaining = duration
			return
		}
	}
	w.texts = append(w.texts, &Text{ID: id, Body: body, Remaining: duration})
}

// ExpireTexts ages timed texts by dt.
func (w *GameWorld) ExpireTexts(dt float32) {
	live := w.texts[:0]
	for _, t := range w.texts {
		t.Remaining -= dt
		if t.Remaining > 0 {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(w.texts); i++ {
		w.texts[i] = nil
	}
	w.texts = live
}

// AddTickText shows body for the current step only.
func (w *GameWorld) AddTickText(body string) {
	w.tickTexts = append(w.tickTexts, body)
}

// Texts returns timed texts followed by this step's texts.
func (w *GameWorld) Texts() []string {
	out := make([]string, 0, len(w.texts)+len(w.tickTexts))
	for _, t := range w.texts {
		out = append(out, t.Body)
	}
	return append(out, w.tickTexts...)
}

// ClearTickData resets everything that lives for a single step.
func (w *GameWorld) ClearTickData() {
	w.tickTexts = w.tickTexts[:0]
	w.shotsThisStep = 0
}
