// Package script runs mission scripts as cooperative threads. Each thread is
// a routine resumed once its wait elapses; it never runs concurrently with
// the simulation.
package script

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrThreadExists is returned when a thread name is already taken.
var ErrThreadExists = errors.New("thread already exists")

// ScriptError is a fault raised by a script thread. It is fatal to the loop.
type ScriptError struct {
	Thread string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script thread %q: %v", e.Thread, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Routine is one resumption of a thread. It calls Wait or End on t to
// schedule itself.
type Routine func(t *Thread) error

// Thread is a cooperative script thread.
type Thread struct {
	Name string

	routine  Routine
	wake     time.Duration
	finished bool
	resumes  int

	// Vars is scratch storage kept across resumptions.
	Vars map[string]any
}

// Wait suspends the thread for d of simulated time.
func (t *Thread) Wait(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.wake = d
}

// End finishes the thread after this resumption.
func (t *Thread) End() {
	t.finished = true
}

// resume runs the routine once. A panic is a fault like any other.
func (t *Thread) resume() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.routine(t)
}

// Finished reports whether the thread has ended.
func (t *Thread) Finished() bool { return t.finished }

// Resumes counts how many times the routine has run.
func (t *Thread) Resumes() int { return t.resumes }

// Breakpoint describes a thread about to resume under a breakpoint.
type Breakpoint struct {
	Thread  string
	Resumes int
}

// Machine schedules script threads.
type Machine struct {
	threads     []*Thread
	pending     []*Thread
	running     bool
	breakpoints map[string]bool
	onBreak     func(Breakpoint)
	logger      *zap.SugaredLogger
}

// NewMachine creates an empty scheduler.
func NewMachine(logger *zap.SugaredLogger) *Machine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Machine{
		breakpoints: make(map[string]bool),
		logger:      logger,
	}
}

// StartThread adds a thread that first runs on the next Execute. Threads
// started from a routine join after the current pass.
func (m *Machine) StartThread(name string, routine Routine) (*Thread, error) {
	if m.find(name) != nil {
		return nil, fmt.Errorf("start %q: %w", name, ErrThreadExists)
	}
	t := &Thread{Name: name, routine: routine, Vars: make(map[string]any)}
	if m.running {
		m.pending = append(m.pending, t)
	} else {
		m.threads = append(m.threads, t)
	}
	m.logger.Debugw("[Script] thread started", "thread", name)
	return t, nil
}

func (m *Machine) find(name string) *Thread {
	for _, list := range [][]*Thread{m.threads, m.pending} {
		for _, t := range list {
			if t.Name == name && !t.finished {
				return t
			}
		}
	}
	return nil
}

// Threads returns the live threads in scheduling order.
func (m *Machine) Threads() []*Thread {
	return m.threads
}

// AddBreakpoint reports every resumption of thread to the breakpoint handler.
func (m *Machine) AddBreakpoint(thread string) {
	m.breakpoints[thread] = true
}

// SetBreakpointHandler installs fn, called before a breakpointed thread runs.
func (m *Machine) SetBreakpointHandler(fn func(Breakpoint)) {
	m.onBreak = fn
}

// Execute advances every thread by dt and resumes those whose wait has
// elapsed. The first fault stops the pass and is returned as *ScriptError.
func (m *Machine) Execute(dt time.Duration) error {
	m.running = true
	defer func() {
		m.running = false
		m.threads = append(m.threads, m.pending...)
		m.pending = nil
	}()

	for _, t := range m.threads {
		if t.finished {
			continue
		}
		t.wake -= dt
		if t.wake > 0 {
			continue
		}
		t.wake = 0

		if m.breakpoints[t.Name] && m.onBreak != nil {
			m.onBreak(Breakpoint{Thread: t.Name, Resumes: t.resumes})
		}

		t.resumes++
		if err := t.resume(); err != nil {
			t.finished = true
			m.compact()
			return &ScriptError{Thread: t.Name, Err: err}
		}
	}
	m.compact()
	return nil
}

func (m *Machine) compact() {
	live := m.threads[:0]
	for _, t := range m.threads {
		if !t.finished {
			live = append(live, t)
		} else {
			m.logger.Debugw("[Script] thread finished", "thread", t.Name)
		}
	}
	for i := len(live); i < len(m.threads); i++ {
		m.threads[i] = nil
	}
	m.threads = live
}
