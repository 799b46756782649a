package gameloop

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/annelo/rwsim/internal/world"
)

// WeatherSystem случайным образом меняет погоду по игровым минутам.
type WeatherSystem struct {
	deps             Dependencies
	rng              *rand.Rand
	minutesRemaining int
	lastMinute       int
}

func NewWeatherSystem(seed int64) *WeatherSystem {
	return &WeatherSystem{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (w *WeatherSystem) Name() string { return "weather" }

func (w *WeatherSystem) Init(deps Dependencies) error {
	if deps.World == nil {
		return fmt.Errorf("weather system needs a world")
	}
	w.deps = deps
	w.lastMinute = deps.World.Clock.Minute
	w.minutesRemaining = w.randomDuration()
	return nil
}

func (w *WeatherSystem) Tick(ctx context.Context, dt time.Duration) error {
	clock := w.deps.World.Clock
	if clock.Minute == w.lastMinute {
		return nil
	}
	w.lastMinute = clock.Minute

	w.minutesRemaining--
	if w.minutesRemaining > 0 {
		return nil
	}
	w.change()
	return nil
}

// change выбирает новую погоду, не повторяя текущую
func (w *WeatherSystem) change() {
	current := w.deps.World.Weather.Type
	next := current
	for next == current {
		r := w.rng.Float64()
		switch {
		case r < 0.5:
			next = world.WeatherSunny
		case r < 0.75:
			next = world.WeatherCloudy
		case r < 0.9:
			next = world.WeatherRainy
		default:
			next = world.WeatherFoggy
		}
	}
	weather := world.Weather{Type: next, Intensity: w.rng.Float32()}
	w.deps.World.Weather = weather
	w.minutesRemaining = w.randomDuration()
	w.deps.Logger.Debugf("[WeatherSystem.Tick] broadcasting WEATHER_CHANGED newWeather=%v, nextDuration=%d", next, w.minutesRemaining)

	if w.deps.EmitWorldEvent != nil {
		w.deps.EmitWorldEvent(WorldEvent{
			Type:     EventWeatherChanged,
			GameTime: w.deps.World.Clock.GameTime(),
			Message:  next.String(),
			Fields: map[string]any{
				"weather":   next.String(),
				"intensity": float64(weather.Intensity),
			},
		})
	}
}

func (w *WeatherSystem) randomDuration() int {
	// От 60 до 240 игровых минут
	return 60 + w.rng.Intn(180)
}
