// Package anim provides animation clip handles and a time based animator.
package anim

import (
	"github.com/annelo/rwsim/internal/data"
)

// Clip is an animation handle. Clips are compared by pointer.
type Clip struct {
	Name     string
	Duration float32
}

// Library maps clip names to handles.
type Library struct {
	clips map[string]*Clip
}

// NewLibrary builds a library from catalog clip definitions.
func NewLibrary(defs []data.ClipInfo) *Library {
	l := &Library{clips: make(map[string]*Clip, len(defs))}
	for _, d := range defs {
		l.clips[d.Name] = &Clip{Name: d.Name, Duration: d.Duration}
	}
	return l
}

// Get returns the clip or nil if the library has no clip with that name.
func (l *Library) Get(name string) *Clip {
	if l == nil {
		return nil
	}
	return l.clips[name]
}

// Set is the group of clips a pedestrian uses for locomotion and vehicles.
type Set struct {
	Idle         *Clip
	WalkStart    *Clip
	Walk         *Clip
	Run          *Clip
	JumpStart    *Clip
	JumpGlide    *Clip
	JumpLand     *Clip
	CarSit       *Clip
	CarOpenLHS   *Clip
	CarOpenRHS   *Clip
	CarGetInLHS  *Clip
	CarGetInRHS  *Clip
	CarGetOutLHS *Clip
	CarGetOutRHS *Clip

	library *Library
}

// NewSet resolves the standard pedestrian clips from the library.
func NewSet(l *Library) *Set {
	return &Set{
		Idle:         l.Get(data.ClipIdle),
		WalkStart:    l.Get(data.ClipWalkStart),
		Walk:         l.Get(data.ClipWalk),
		Run:          l.Get(data.ClipRun),
		JumpStart:    l.Get(data.ClipJumpStart),
		JumpGlide:    l.Get(data.ClipJumpGlide),
		JumpLand:     l.Get(data.ClipJumpLand),
		CarSit:       l.Get(data.ClipCarSit),
		CarOpenLHS:   l.Get(data.ClipCarOpenLHS),
		CarOpenRHS:   l.Get(data.ClipCarOpenRHS),
		CarGetInLHS:  l.Get(data.ClipCarGetInLHS),
		CarGetInRHS:  l.Get(data.ClipCarGetInRHS),
		CarGetOutLHS: l.Get(data.ClipCarGetOutLHS),
		CarGetOutRHS: l.Get(data.ClipCarGetOutRHS),
		library:      l,
	}
}

// Lookup finds any clip in the backing library, e.g. weapon animations.
func (s *Set) Lookup(name string) *Clip {
	return s.library.Get(name)
}

// IsLocomotion reports whether clip moves the character forward.
func (s *Set) IsLocomotion(clip *Clip) bool {
	return clip != nil && (clip == s.WalkStart || clip == s.Walk || clip == s.Run)
}
