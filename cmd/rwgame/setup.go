package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/config"
	"github.com/annelo/rwsim/internal/script"
	"github.com/annelo/rwsim/internal/world"
)

func vec(a [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{a[0], a[1], a[2]}
}

// setupScene places the player and the configured objects. Unknown models
// are logged and skipped.
func setupScene(w *world.GameWorld, start config.StartConfig, logger *zap.SugaredLogger) error {
	weather, err := world.ParseWeather(start.Weather)
	if err != nil {
		return fmt.Errorf("start weather: %w", err)
	}
	w.Weather = world.Weather{Type: weather, Intensity: 1}
	w.Clock.Set(start.Hour, start.Minute)

	if _, err := w.CreatePlayer(vec(start.Player), 0); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	for _, v := range start.Vehicles {
		if _, err := w.CreateVehicle(v.Model, vec(v.Position), v.Heading); err != nil {
			logger.Warnw("Пропускаем транспорт", "model", v.Model, "error", err)
		}
	}
	for _, p := range start.Pickups {
		if _, err := w.CreatePickup(p.Model, vec(p.Position)); err != nil {
			logger.Warnw("Пропускаем пикап", "weapon", p.Model, "error", err)
		}
	}
	return nil
}

// debugScripts puts breakpoints on the comma separated threads and logs
// every resumption they make. It returns the watched thread names.
func debugScripts(m *script.Machine, threads string, logger *zap.SugaredLogger) []string {
	var names []string
	for _, name := range strings.Split(threads, ",") {
		if name = strings.TrimSpace(name); name != "" {
			m.AddBreakpoint(name)
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	m.SetBreakpointHandler(func(bp script.Breakpoint) {
		logger.Infow("[Script] breakpoint", "thread", bp.Thread, "resumes", bp.Resumes)
	})
	return names
}
