package state

import (
	"github.com/annelo/rwsim/internal/render"
)

// MenuEntry is one selectable line.
type MenuEntry struct {
	Label    string
	Activate func()
}

// MenuState freezes the world behind a list of entries.
type MenuState struct {
	Title    string
	entries  []MenuEntry
	selected int
	camera   render.ViewCamera
	input    Input
}

// NewMenuState shows entries over a frozen view from cam.
func NewMenuState(title string, cam render.ViewCamera, entries ...MenuEntry) *MenuState {
	return &MenuState{Title: title, entries: entries, camera: cam}
}

func (m *MenuState) Name() string                     { return "menu" }
func (m *MenuState) Enter()                           {}
func (m *MenuState) Exit()                            {}
func (m *MenuState) ShouldWorldUpdate() bool          { return false }
func (m *MenuState) Camera() render.ViewCamera        { return m.camera }
func (m *MenuState) HandleAction(a Action, down bool) { m.input.Set(a, down) }

// Entries returns the menu lines.
func (m *MenuState) Entries() []MenuEntry {
	return m.entries
}

// Selected is the highlighted entry index.
func (m *MenuState) Selected() int {
	return m.selected
}

func (m *MenuState) Tick(dt float32) {
	if len(m.entries) == 0 {
		return
	}
	if m.input.Pressed(ActionForward) {
		m.selected = (m.selected + len(m.entries) - 1) % len(m.entries)
	}
	if m.input.Pressed(ActionBackward) {
		m.selected = (m.selected + 1) % len(m.entries)
	}
	if m.input.Pressed(ActionSelect) {
		if fn := m.entries[m.selected].Activate; fn != nil {
			fn()
		}
	}
}
