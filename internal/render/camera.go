// Package render turns simulation snapshots into the camera used for
// drawing. It never mutates simulation state.
package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// ViewCamera is a camera snapshot.
type ViewCamera struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// NewViewCamera returns a camera at pos with no rotation.
func NewViewCamera(pos mgl32.Vec3) ViewCamera {
	return ViewCamera{Position: pos, Rotation: mgl32.QuatIdent()}
}

// Forward returns the camera's look direction (+Y in model space).
func (c ViewCamera) Forward() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// Alpha is the interpolation factor for the leftover accumulator. It is 1
// when the world is not updating so the latest snapshot is drawn as is.
func Alpha(accum, step time.Duration, worldUpdates bool) float32 {
	if !worldUpdates || step <= 0 {
		return 1
	}
	a := float32(accum%step) / float32(step)
	return mgl32.Clamp(a, 0, 1)
}

// Slerp blends rotations along the shortest arc.
func Slerp(q1, q2 mgl32.Quat, alpha float32) mgl32.Quat {
	if q1.Dot(q2) < 0 {
		q2 = q2.Scale(-1)
	}
	return mgl32.QuatSlerp(q1, q2, alpha)
}

// Interpolate blends two snapshots: linear in position, spherical in rotation.
func Interpolate(last, next ViewCamera, alpha float32) ViewCamera {
	alpha = mgl32.Clamp(alpha, 0, 1)
	return ViewCamera{
		Position: last.Position.Add(next.Position.Sub(last.Position).Mul(alpha)),
		Rotation: Slerp(last.Rotation, next.Rotation, alpha),
	}
}

// Overrides are the camera modes that take precedence over interpolation.
type Overrides struct {
	// Cutscene is the running camera track, nil when none.
	Cutscene *CameraTrack
	// CutsceneTime is the track time at the latest step, in seconds.
	CutsceneTime float32
	// Fixed is a scripted static camera, nil when none.
	Fixed *ViewCamera
}

// ResolveCamera returns the camera to draw: a running cutscene sampled
// between steps, then a fixed camera, otherwise the interpolated snapshot.
func ResolveCamera(o Overrides, last, next ViewCamera, alpha float32, step time.Duration) ViewCamera {
	if o.Cutscene != nil {
		t := o.CutsceneTime + float32(step.Seconds())*alpha
		if d := o.Cutscene.Duration(); t > d {
			t = d
		}
		return o.Cutscene.Sample(t)
	}
	if o.Fixed != nil {
		return *o.Fixed
	}
	return Interpolate(last, next, alpha)
}
