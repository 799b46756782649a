package world

import (
	"fmt"
	"time"
)

// MinuteLength is the simulated time per in-game minute.
const MinuteLength = time.Second

// Clock tracks simulated time and the in-game time of day.
type Clock struct {
	gameTime    time.Duration
	minuteAccum time.Duration

	Hour   int
	Minute int
}

// NewClock starts the day at hour:minute.
func NewClock(hour, minute int) *Clock {
	c := &Clock{}
	c.Set(hour, minute)
	return c
}

// Advance adds dt of simulated time, one in-game minute per MinuteLength.
func (c *Clock) Advance(dt time.Duration) {
	c.gameTime += dt
	c.minuteAccum += dt
	for c.minuteAccum >= MinuteLength {
		c.minuteAccum -= MinuteLength
		c.addMinute()
	}
}

func (c *Clock) addMinute() {
	c.Minute++
	if c.Minute >= 60 {
		c.Minute = 0
		c.Hour = (c.Hour + 1) % 24
	}
}

// AddMinutes shifts the time of day by n minutes, which may be negative.
func (c *Clock) AddMinutes(n int) {
	total := (c.Hour*60 + c.Minute + n) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	c.Hour = total / 60
	c.Minute = total % 60
}

// Set jumps to hour:minute, normalising out of range values.
func (c *Clock) Set(hour, minute int) {
	c.Hour, c.Minute = 0, 0
	c.AddMinutes(hour*60 + minute)
}

// GameTime is the total simulated time.
func (c *Clock) GameTime() time.Duration {
	return c.gameTime
}

// SetGameTime restores the simulated time, e.g. from a save.
func (c *Clock) SetGameTime(t time.Duration) {
	c.gameTime = t
	c.minuteAccum = 0
}

// IsNight reports whether street lights would be on.
func (c *Clock) IsNight() bool {
	return c.Hour >= 20 || c.Hour < 6
}

func (c *Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
