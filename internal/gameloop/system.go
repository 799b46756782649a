package gameloop

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/world"
)

// System описывает логику, выполняемую каждый шаг симуляции.
type System interface {
	// Init вызывается один раз перед запуском цикла.
	Init(deps Dependencies) error
	// Tick вызывается каждый шаг, пока мир обновляется. Ошибка фатальна.
	Tick(ctx context.Context, dt time.Duration) error
	// Name возвращает читаемое имя системы.
	Name() string
}

// ScriptMachine runs mission scripts for one slice of simulated time.
type ScriptMachine interface {
	Execute(dt time.Duration) error
}

// Dependencies передаются системам при инициализации.
type Dependencies struct {
	World  *world.GameWorld
	Logger *zap.SugaredLogger
	Script ScriptMachine
	// Focus returns the point the population is built around, normally the
	// latest camera position.
	Focus func() mgl32.Vec3
	// EmitWorldEvent используется системами для широковещательных событий.
	EmitWorldEvent func(event WorldEvent)
}

// EventType classifies world events.
type EventType int

const (
	EventTimeChanged EventType = iota
	EventWeatherChanged
	EventSystemFailed
	EventGameSaved
	EventGameLoaded
	EventShutdown
)

func (t EventType) String() string {
	switch t {
	case EventTimeChanged:
		return "TIME_CHANGED"
	case EventWeatherChanged:
		return "WEATHER_CHANGED"
	case EventSystemFailed:
		return "SYSTEM_FAILED"
	case EventGameSaved:
		return "GAME_SAVED"
	case EventGameLoaded:
		return "GAME_LOADED"
	case EventShutdown:
		return "SERVER_SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// WorldEvent is broadcast to observers such as the inspection service.
type WorldEvent struct {
	Type     EventType
	GameTime time.Duration
	Message  string
	Fields   map[string]any
}
