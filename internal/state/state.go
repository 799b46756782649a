// Package state holds the top-level game modes and the stack that runs them.
package state

import (
	"github.com/annelo/rwsim/internal/render"
)

// State is a game mode. Only the top of the stack is ticked.
type State interface {
	Name() string
	Enter()
	Exit()
	Tick(dt float32)
	// ShouldWorldUpdate reports whether the world simulates under this mode.
	ShouldWorldUpdate() bool
	Camera() render.ViewCamera
	HandleAction(a Action, down bool)
}

// Manager is the mode stack.
type Manager struct {
	states []State
}

// NewManager returns an empty stack.
func NewManager() *Manager {
	return &Manager{}
}

// Push enters s on top of the stack.
func (m *Manager) Push(s State) {
	m.states = append(m.states, s)
	s.Enter()
}

// Pop exits and removes the top mode.
func (m *Manager) Pop() State {
	if len(m.states) == 0 {
		return nil
	}
	top := m.states[len(m.states)-1]
	m.states[len(m.states)-1] = nil
	m.states = m.states[:len(m.states)-1]
	top.Exit()
	return top
}

// Replace swaps the top mode for s.
func (m *Manager) Replace(s State) {
	m.Pop()
	m.Push(s)
}

// Clear pops every mode.
func (m *Manager) Clear() {
	for len(m.states) > 0 {
		m.Pop()
	}
}

// Top returns the active mode or nil.
func (m *Manager) Top() State {
	if len(m.states) == 0 {
		return nil
	}
	return m.states[len(m.states)-1]
}

func (m *Manager) Len() int    { return len(m.states) }
func (m *Manager) Empty() bool { return len(m.states) == 0 }

// Tick advances the active mode.
func (m *Manager) Tick(dt float32) {
	if top := m.Top(); top != nil {
		top.Tick(dt)
	}
}

// ShouldWorldUpdate is false when the stack is empty.
func (m *Manager) ShouldWorldUpdate() bool {
	top := m.Top()
	return top != nil && top.ShouldWorldUpdate()
}

// Camera returns the active mode's camera.
func (m *Manager) Camera() (render.ViewCamera, bool) {
	top := m.Top()
	if top == nil {
		return render.ViewCamera{}, false
	}
	return top.Camera(), true
}

// HandleAction forwards input to the active mode.
func (m *Manager) HandleAction(a Action, down bool) {
	if top := m.Top(); top != nil {
		top.HandleAction(a, down)
	}
}
