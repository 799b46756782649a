package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/annelo/rwsim/internal/config"
	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/plugin"
	"github.com/annelo/rwsim/internal/storage"
	"github.com/annelo/rwsim/internal/world"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoStorage      = errors.New("storage is disabled")
)

// DefaultSaveName is used by save and load without arguments.
const DefaultSaveName = "quicksave"

// RunCommandLine splits line into a command name and arguments and runs it.
func RunCommandLine(reg plugin.PluginRegistry, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ErrEmptyCommand
	}
	for _, c := range reg.Commands() {
		if c.Name == fields[0] {
			return c.Handler(fields[1:])
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
}

// Admin holds what the built-in admin commands operate on.
type Admin struct {
	Loop     *gameloop.Loop
	Registry *plugin.DefaultRegistry
	Plugins  *plugin.PluginManager
	// Storage may be nil when saving is disabled.
	Storage storage.SaveStorage
	Config  *config.Config
	Logger  *zap.SugaredLogger
	// Stop ends the process.
	Stop func()
	// Timeout bounds waiting for the loop goroutine.
	Timeout time.Duration
}

// Register adds the built-in commands to reg.
func (a *Admin) Register(reg plugin.PluginRegistry) {
	if a.Logger == nil {
		a.Logger = zap.NewNop().Sugar()
	}
	if a.Timeout <= 0 {
		a.Timeout = 5 * time.Second
	}
	reg.RegisterCommand("help", "Показать список команд", a.help)
	reg.RegisterCommand("stats", "Show world statistics", a.stats)
	reg.RegisterCommand("save", "save [name]: save the game", a.save)
	reg.RegisterCommand("load", "load [name]: load a saved game", a.load)
	reg.RegisterCommand("saves", "List saved games", a.saves)
	reg.RegisterCommand("timescale", "timescale [x]: show or set the simulation speed", a.timescale)
	reg.RegisterCommand("time", "time [hh:mm]: show or set the game clock", a.clock)
	reg.RegisterCommand("weather", "weather [sunny|cloudy|rainy|foggy]: show or set the weather", a.weather)
	reg.RegisterCommand("spawn", "spawn <vehicle>: spawn a vehicle next to the player", a.spawn)
	reg.RegisterCommand("plugins", "List loaded plugins", a.plugins)
	reg.RegisterCommand("config", "Show current configuration", a.config)
	reg.RegisterCommand("reload", "Reload plugins", a.reload)
	reg.RegisterCommand("stop", "Stop the game", a.stop)
}

// do runs fn on the loop goroutine.
func (a *Admin) do(fn func()) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	if err := a.Loop.Do(ctx, fn); err != nil {
		return fmt.Errorf("game loop is not responding: %w", err)
	}
	return nil
}

func (a *Admin) emit(t gameloop.EventType, message string) {
	a.Loop.Events().Emit(gameloop.WorldEvent{
		Type:     t,
		GameTime: a.Loop.Summary().GameTime,
		Message:  message,
	})
}

func (a *Admin) help(args []string) (string, error) {
	var b strings.Builder
	b.WriteString("Доступные команды:\n")
	for _, c := range a.Registry.Commands() {
		fmt.Fprintf(&b, "  %-10s %s\n", c.Name, c.Description)
	}
	return b.String(), nil
}

func (a *Admin) stats(args []string) (string, error) {
	s := a.Loop.Summary()
	var b strings.Builder
	fmt.Fprintf(&b, "steps: %d  scale: %.2f  state: %s\n", s.Steps, s.TimeScale, s.State)
	fmt.Fprintf(&b, "clock: %s  weather: %s\n", s.Clock, s.Weather)
	fmt.Fprintf(&b, "peds: %d  vehicles: %d  pickups: %d  ambient: %d  effects: %d\n",
		s.Pedestrians, s.Vehicles, s.Pickups, s.Ambient, s.Effects)
	fmt.Fprintf(&b, "player: (%.1f, %.1f, %.1f) activity=%s vehicle=%s ammo=%d\n",
		s.PlayerPosition[0], s.PlayerPosition[1], s.PlayerPosition[2],
		s.PlayerActivity, s.PlayerVehicle, s.PlayerAmmo)
	return b.String(), nil
}

func saveName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return DefaultSaveName
}

func (a *Admin) save(args []string) (string, error) {
	if a.Storage == nil {
		return "", ErrNoStorage
	}
	name := saveName(args)
	var snap *storage.SaveGame
	if err := a.do(func() {
		snap = a.Loop.World().Snapshot()
		snap.TimeScale = a.Loop.TimeScale()
	}); err != nil {
		return "", err
	}
	a.Registry.Fire(plugin.HookBeforeSave, snap)

	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	if err := a.Storage.SaveGame(ctx, name, snap); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	a.Registry.Fire(plugin.HookAfterSave, name)
	a.emit(gameloop.EventGameSaved, name)
	a.Logger.Infow("[Admin] game saved", "name", name)
	return fmt.Sprintf("saved %s (%d characters, %d vehicles)", name, len(snap.Characters), len(snap.Vehicles)), nil
}

func (a *Admin) load(args []string) (string, error) {
	if a.Storage == nil {
		return "", ErrNoStorage
	}
	name := saveName(args)
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	snap, err := a.Storage.LoadGame(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", name, err)
	}
	var restoreErr error
	if err := a.do(func() { restoreErr = a.Loop.World().Restore(snap) }); err != nil {
		return "", err
	}
	if restoreErr != nil {
		return "", fmt.Errorf("restore %s: %w", name, restoreErr)
	}
	if snap.TimeScale > 0 {
		a.Loop.SetTimeScale(snap.TimeScale)
	}
	a.Registry.Fire(plugin.HookAfterLoad, name)
	a.emit(gameloop.EventGameLoaded, name)
	return fmt.Sprintf("loaded %s", name), nil
}

func (a *Admin) saves(args []string) (string, error) {
	if a.Storage == nil {
		return "", ErrNoStorage
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	names, err := a.Storage.ListGames(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "no saves", nil
	}
	return strings.Join(names, "\n"), nil
}

func (a *Admin) timescale(args []string) (string, error) {
	if len(args) == 0 {
		return fmt.Sprintf("time scale: %.2f", a.Loop.TimeScale()), nil
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v <= 0 {
		return "", fmt.Errorf("invalid time scale %q", args[0])
	}
	a.Loop.SetTimeScale(v)
	return fmt.Sprintf("time scale: %.2f", a.Loop.TimeScale()), nil
}

func (a *Admin) clock(args []string) (string, error) {
	if len(args) == 0 {
		return a.Loop.Summary().Clock, nil
	}
	var h, m int
	if _, err := fmt.Sscanf(args[0], "%d:%d", &h, &m); err != nil {
		return "", fmt.Errorf("invalid time %q, want hh:mm", args[0])
	}
	var now string
	if err := a.do(func() {
		a.Loop.World().Clock.Set(h, m)
		now = a.Loop.World().Clock.String()
	}); err != nil {
		return "", err
	}
	return now, nil
}

func (a *Admin) weather(args []string) (string, error) {
	if len(args) == 0 {
		return a.Loop.Summary().Weather, nil
	}
	wt, err := world.ParseWeather(args[0])
	if err != nil {
		return "", err
	}
	if err := a.do(func() {
		a.Loop.World().Weather = world.Weather{Type: wt, Intensity: 1}
	}); err != nil {
		return "", err
	}
	a.emit(gameloop.EventWeatherChanged, wt.String())
	return wt.String(), nil
}

func (a *Admin) spawn(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("usage: spawn <vehicle>")
	}
	var spawnErr error
	var at mgl32.Vec3
	if err := a.do(func() {
		w := a.Loop.World()
		var heading float32
		if p := w.Player(); p != nil {
			at = p.Position().Add(p.Rotation().Rotate(mgl32.Vec3{3, 0, 0}))
			heading = p.Heading()
		}
		_, spawnErr = w.CreateVehicle(args[0], at, heading)
	}); err != nil {
		return "", err
	}
	if spawnErr != nil {
		return "", spawnErr
	}
	return fmt.Sprintf("spawned %s at (%.1f, %.1f)", args[0], at.X(), at.Y()), nil
}

func (a *Admin) plugins(args []string) (string, error) {
	metas := a.Registry.PluginMetas()
	if len(metas) == 0 {
		return "no plugins loaded", nil
	}
	var b strings.Builder
	for _, m := range metas {
		fmt.Fprintf(&b, "%s %s by %s: %s\n", m.Name, m.Version, m.Author, m.Description)
	}
	return b.String(), nil
}

func (a *Admin) config(args []string) (string, error) {
	out := struct {
		Game    *config.Config         `yaml:"game"`
		Plugins map[string]interface{} `yaml:"plugins,omitempty"`
	}{a.Config, a.Registry.PluginConfigs()}
	raw, err := yaml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(raw), nil
}

func (a *Admin) reload(args []string) (string, error) {
	if a.Plugins == nil {
		return "", errors.New("plugins are disabled")
	}
	if err := a.Plugins.ReloadPlugins(a.Registry); err != nil {
		return "", err
	}

	// Новые системы добавляем в цикл, уже работающие не трогаем
	var added []string
	var addErr error
	if err := a.do(func() {
		running := map[string]bool{}
		for _, s := range a.Loop.Systems() {
			running[s.Name()] = true
		}
		for _, s := range a.Registry.GameSystems() {
			if running[s.Name()] {
				continue
			}
			if err := a.Loop.AddSystem(s); err != nil {
				addErr = err
				return
			}
			added = append(added, s.Name())
		}
	}); err != nil {
		return "", err
	}
	if addErr != nil {
		return "", addErr
	}
	sort.Strings(added)
	return fmt.Sprintf("reloaded %d plugins, new systems: %v", len(a.Registry.PluginMetas()), added), nil
}

func (a *Admin) stop(args []string) (string, error) {
	if a.Stop == nil {
		return "", errors.New("stop is not available")
	}
	a.Stop()
	return "stopping", nil
}
