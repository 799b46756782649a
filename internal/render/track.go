package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Keyframe is a camera pose at a point of a track.
type Keyframe struct {
	Time   float32
	Camera ViewCamera
}

// CameraTrack is a cutscene camera path.
type CameraTrack struct {
	frames []Keyframe
}

// NewCameraTrack sorts the keyframes by time.
func NewCameraTrack(frames ...Keyframe) *CameraTrack {
	sorted := append([]Keyframe(nil), frames...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &CameraTrack{frames: sorted}
}

// Duration is the time of the last keyframe.
func (t *CameraTrack) Duration() float32 {
	if len(t.frames) == 0 {
		return 0
	}
	return t.frames[len(t.frames)-1].Time
}

// Sample returns the pose at time, clamped to the track.
func (t *CameraTrack) Sample(time float32) ViewCamera {
	if len(t.frames) == 0 {
		return NewViewCamera(mgl32.Vec3{})
	}
	if time <= t.frames[0].Time {
		return t.frames[0].Camera
	}
	for i := 1; i < len(t.frames); i++ {
		a, b := t.frames[i-1], t.frames[i]
		if time > b.Time {
			continue
		}
		span := b.Time - a.Time
		if span <= 0 {
			return b.Camera
		}
		return Interpolate(a.Camera, b.Camera, (time-a.Time)/span)
	}
	return t.frames[len(t.frames)-1].Camera
}
