package world

import "fmt"

// WeatherType is the current sky.
type WeatherType int

const (
	WeatherSunny WeatherType = iota
	WeatherCloudy
	WeatherRainy
	WeatherFoggy
)

var weatherNames = []string{"sunny", "cloudy", "rainy", "foggy"}

func (w WeatherType) String() string {
	if int(w) < 0 || int(w) >= len(weatherNames) {
		return fmt.Sprintf("WeatherType(%d)", int(w))
	}
	return weatherNames[w]
}

// ParseWeather accepts the names printed by String.
func ParseWeather(s string) (WeatherType, error) {
	for i, name := range weatherNames {
		if name == s {
			return WeatherType(i), nil
		}
	}
	return WeatherSunny, fmt.Errorf("unknown weather %q", s)
}

// Weather is the weather state owned by the world.
type Weather struct {
	Type WeatherType
	// Intensity in [0,1] scales rain and fog.
	Intensity float32
}
