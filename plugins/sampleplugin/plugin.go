package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/plugin"
)

// SamplePluginConfig is read from sampleplugin.yaml
type SamplePluginConfig struct {
	Greeting string `yaml:"greeting"`
	Value    int    `yaml:"value"`
}

// curfewSystem prints a warning on screen while it is night.
type curfewSystem struct {
	deps gameloop.Dependencies
}

func (c *curfewSystem) Name() string { return "sample_curfew" }

func (c *curfewSystem) Init(deps gameloop.Dependencies) error {
	c.deps = deps
	return nil
}

func (c *curfewSystem) Tick(ctx context.Context, dt time.Duration) error {
	if c.deps.World.Clock.IsNight() {
		c.deps.World.AddTickText("Curfew in effect")
	}
	return nil
}

// Register is invoked by PluginManager to register tables, systems and commands
func Register(reg plugin.PluginRegistry) {
	reg.RegisterCatalog(&data.Catalog{
		Vehicles: []data.VehicleInfo{{
			Model: "banshee",
			Type:  data.VehicleCar,
			Seats: []data.SeatInfo{
				{Offset: [3]float32{-0.4, 0, 0.2}, Door: "door_lf"},
				{Offset: [3]float32{0.4, 0, 0.2}, Door: "door_rf"},
			},
			Doors: []data.DoorInfo{
				{Name: "door_lf", Translation: [3]float32{-0.9, 0.2, 0}, OpenAngle: 1.2, Constrained: true},
				{Name: "door_rf", Translation: [3]float32{0.9, 0.2, 0}, OpenAngle: -1.2, Constrained: true},
			},
			MaxSpeed: 45,
			MaxSteer: 0.5,
		}},
	})

	reg.RegisterGameSystem(&curfewSystem{})

	logger := zap.NewExample().Sugar().Named("sampleplugin")
	reg.RegisterHook(plugin.HookWorldEvent, func(args ...interface{}) {
		if len(args) == 1 {
			if event, ok := args[0].(gameloop.WorldEvent); ok && event.Type == gameloop.EventWeatherChanged {
				logger.Infow("weather changed", "weather", event.Message)
			}
		}
	})

	reg.RegisterPluginConfig("sampleplugin", &SamplePluginConfig{})

	reg.RegisterCommand("sampleinfo", "Show sample plugin info", func(args []string) (string, error) {
		cfg := reg.PluginConfig("sampleplugin").(*SamplePluginConfig)
		return fmt.Sprintf("Greeting: %s, Value: %d\n", cfg.Greeting, cfg.Value), nil
	})
}

// main is required for `go build ./...`; it is unused when built with -buildmode=plugin.
func main() {}
