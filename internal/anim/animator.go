package anim

// Animator plays one clip at a time.
type Animator struct {
	clip   *Clip
	repeat bool
	time   float32
}

// NewAnimator returns an animator with no clip.
func NewAnimator() *Animator {
	return &Animator{}
}

// SetAnimation switches to clip. Setting the clip that is already playing
// keeps its current time.
func (a *Animator) SetAnimation(clip *Clip, repeat bool) {
	if clip == a.clip {
		return
	}
	a.clip = clip
	a.repeat = repeat
	a.time = 0
}

// Animation returns the current clip.
func (a *Animator) Animation() *Clip {
	return a.clip
}

// Tick advances the clip by dt seconds.
func (a *Animator) Tick(dt float32) {
	if a.clip == nil || a.clip.Duration <= 0 {
		return
	}
	a.time += dt
	if a.time >= a.clip.Duration {
		if a.repeat {
			for a.time >= a.clip.Duration {
				a.time -= a.clip.Duration
			}
		} else {
			a.time = a.clip.Duration
		}
	}
}

// IsCompleted reports whether a non-repeating clip reached its end.
func (a *Animator) IsCompleted() bool {
	if a.clip == nil {
		return true
	}
	if a.repeat {
		return false
	}
	return a.time >= a.clip.Duration
}

// AnimationTime returns the play position as a fraction in [0,1].
func (a *Animator) AnimationTime() float32 {
	if a.clip == nil || a.clip.Duration <= 0 {
		return 0
	}
	return a.time / a.clip.Duration
}

// SetAnimationTime seeks to fraction f of the current clip.
func (a *Animator) SetAnimationTime(f float32) {
	if a.clip == nil {
		return
	}
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	a.time = f * a.clip.Duration
}
