package render

import "time"

// FrameSamples is the number of frames averaged by FrameStats.
const FrameSamples = 15

// FrameStats keeps the most recent frame times.
type FrameStats struct {
	samples [FrameSamples]time.Duration
	next    int
	count   int
}

// Add records one frame time.
func (f *FrameStats) Add(d time.Duration) {
	f.samples[f.next] = d
	f.next = (f.next + 1) % FrameSamples
	if f.count < FrameSamples {
		f.count++
	}
}

// Last returns the latest frame time.
func (f *FrameStats) Last() time.Duration {
	if f.count == 0 {
		return 0
	}
	return f.samples[(f.next+FrameSamples-1)%FrameSamples]
}

// Average returns the mean over the recorded frames.
func (f *FrameStats) Average() time.Duration {
	if f.count == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < f.count; i++ {
		sum += f.samples[i]
	}
	return sum / time.Duration(f.count)
}

// FPS derives frames per second from the average.
func (f *FrameStats) FPS() float64 {
	avg := f.Average()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}
