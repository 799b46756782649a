package gameloop

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/render"
	"github.com/annelo/rwsim/internal/state"
	"github.com/annelo/rwsim/internal/world"
)

const (
	// DefaultStep is the fixed simulation step.
	DefaultStep = time.Second / 30

	// maxBacklogSteps bounds the accumulator; anything beyond is dropped.
	maxBacklogSteps = 5

	workQueueSize = 256
)

var (
	stepsTotal        = expvar.NewInt("loop_steps")
	accumulatorResets = expvar.NewInt("loop_accumulator_resets")
)

// ErrWorkQueueFull is returned by Post when the loop is not draining work.
var ErrWorkQueueFull = errors.New("work queue full")

// Summary is the state published after every step for concurrent readers.
type Summary struct {
	world.Summary
	Steps     uint64
	TimeScale float64
	State     string
	Focused   bool
}

// Frontend polls input and draws frames for Run.
type Frontend interface {
	// PollEvents handles pending input; false ends the run.
	PollEvents(l *Loop) bool
	Render(l *Loop, alpha float32, frameTime time.Duration)
}

// Loop: главный цикл с фиксированным шагом симуляции.
type Loop struct {
	world   *world.GameWorld
	states  *state.Manager
	systems []System
	deps    Dependencies
	logger  *zap.SugaredLogger
	events  *EventBus

	step  time.Duration
	accum time.Duration
	steps uint64

	timeScale atomic.Uint64
	focused   atomic.Bool

	lastCam render.ViewCamera
	nextCam render.ViewCamera

	work    chan func()
	summary atomic.Pointer[Summary]
}

// NewLoop создаёт цикл и инициализирует системы. Systems run in the given
// order each step.
func NewLoop(w *world.GameWorld, states *state.Manager, step time.Duration, logger *zap.SugaredLogger, script ScriptMachine, systems ...System) (*Loop, error) {
	if step <= 0 {
		step = DefaultStep
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	l := &Loop{
		world:  w,
		states: states,
		logger: logger,
		events: NewEventBus(),
		step:   step,
		work:   make(chan func(), workQueueSize),
	}
	l.timeScale.Store(math.Float64bits(1))
	l.focused.Store(true)
	if cam, ok := states.Camera(); ok {
		l.lastCam, l.nextCam = cam, cam
	}

	l.deps = Dependencies{
		World:          w,
		Logger:         logger,
		Script:         script,
		Focus:          func() mgl32.Vec3 { return l.nextCam.Position },
		EmitWorldEvent: l.events.Emit,
	}
	for _, s := range systems {
		if err := l.AddSystem(s); err != nil {
			return nil, err
		}
	}
	l.publish()
	return l, nil
}

// AddSystem initialises s and appends it to the step order.
func (l *Loop) AddSystem(s System) error {
	if err := s.Init(l.deps); err != nil {
		l.logger.Errorf("[GameLoop] init %s error: %v", s.Name(), err)
		return fmt.Errorf("init system %s: %w", s.Name(), err)
	}
	l.systems = append(l.systems, s)
	return nil
}

// Systems returns the registered systems in step order.
func (l *Loop) Systems() []System {
	return l.systems
}

func (l *Loop) World() *world.GameWorld     { return l.world }
func (l *Loop) States() *state.Manager      { return l.states }
func (l *Loop) Events() *EventBus           { return l.events }
func (l *Loop) StepDuration() time.Duration { return l.step }

// Accumulator returns simulated time not yet consumed by a step.
func (l *Loop) Accumulator() time.Duration {
	return l.accum
}

// Steps returns the number of steps run.
func (l *Loop) Steps() uint64 {
	return l.steps
}

// TimeScale returns the simulation speed multiplier.
func (l *Loop) TimeScale() float64 {
	return math.Float64frombits(l.timeScale.Load())
}

// SetTimeScale changes the simulation speed. Non-positive values are ignored.
func (l *Loop) SetTimeScale(scale float64) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return
	}
	l.timeScale.Store(math.Float64bits(scale))
}

// SetFocus pauses the world while the window is unfocused.
func (l *Loop) SetFocus(focused bool) {
	l.focused.Store(focused)
}

func (l *Loop) Focused() bool {
	return l.focused.Load()
}

// Post queues fn to run on the loop goroutine at the start of the next step.
func (l *Loop) Post(fn func()) error {
	select {
	case l.work <- fn:
		return nil
	default:
		return ErrWorkQueueFull
	}
}

// Do runs fn on the loop goroutine and waits for it.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case l.work <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Summary returns the state published by the latest step. Safe from any
// goroutine.
func (l *Loop) Summary() Summary {
	if s := l.summary.Load(); s != nil {
		return *s
	}
	return Summary{}
}

// Frame integrates elapsed real time and runs as many fixed steps as fit.
func (l *Loop) Frame(ctx context.Context, elapsed time.Duration) error {
	if scale := l.TimeScale(); scale != 1 {
		elapsed = time.Duration(float64(elapsed) * scale)
	}
	l.accum += elapsed

	for l.accum >= l.step {
		if err := l.Step(ctx); err != nil {
			return err
		}
		l.accum -= l.step

		// Не пытаемся догнать слишком большое отставание
		if l.accum > maxBacklogSteps*l.step {
			l.logger.Debugw("[GameLoop] accumulator reset", "backlog", l.accum)
			l.accum = 0
			accumulatorResets.Add(1)
		}
	}
	return nil
}

// Step runs exactly one fixed simulation step.
func (l *Loop) Step(ctx context.Context) error {
	dt := float32(l.step.Seconds())

	l.states.Tick(dt)

	l.world.ClearTickData()
	l.drainWork()

	if l.focused.Load() && l.states.ShouldWorldUpdate() {
		for _, s := range l.systems {
			if err := l.runSystem(ctx, s); err != nil {
				l.logger.Errorw("[GameLoop] system failed", "system", s.Name(), "error", err)
				l.events.Emit(WorldEvent{
					Type:     EventSystemFailed,
					GameTime: l.world.Clock.GameTime(),
					Message:  err.Error(),
					Fields:   map[string]any{"system": s.Name()},
				})
				return fmt.Errorf("system %s: %w", s.Name(), err)
			}
		}
	}

	l.lastCam = l.nextCam
	if cam, ok := l.states.Camera(); ok {
		l.nextCam = cam
	}

	l.steps++
	stepsTotal.Add(1)
	l.publish()
	return nil
}

func (l *Loop) runSystem(ctx context.Context, sys System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("[GameLoop] panic in %s: %v", sys.Name(), r)
		}
	}()
	return sys.Tick(ctx, l.step)
}

func (l *Loop) drainWork() {
	for {
		select {
		case fn := <-l.work:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) publish() {
	s := &Summary{
		Summary:   l.world.Summarize(),
		Steps:     l.steps,
		TimeScale: l.TimeScale(),
		Focused:   l.focused.Load(),
	}
	if top := l.states.Top(); top != nil {
		s.State = top.Name()
	}
	l.summary.Store(s)
}

// Alpha is the interpolation factor for the current accumulator.
func (l *Loop) Alpha() float32 {
	return render.Alpha(l.accum, l.step, l.states.ShouldWorldUpdate())
}

// ViewCamera resolves the camera to draw with.
func (l *Loop) ViewCamera(alpha float32) render.ViewCamera {
	return render.ResolveCamera(l.world.CameraOverrides(), l.lastCam, l.nextCam, alpha, l.step)
}

// Cameras returns the previous and latest step cameras.
func (l *Loop) Cameras() (last, next render.ViewCamera) {
	return l.lastCam, l.nextCam
}

// Run paces frames until ctx is cancelled, the mode stack empties, the
// frontend quits, or a system fails.
func (l *Loop) Run(ctx context.Context, frontend Frontend, frameInterval time.Duration) error {
	if frameInterval <= 0 {
		frameInterval = l.step
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			if frontend != nil && !frontend.PollEvents(l) {
				l.logger.Info("[GameLoop] frontend closed")
				return nil
			}
			if l.states.Empty() {
				l.logger.Info("[GameLoop] no states left")
				return nil
			}
			if err := l.Frame(ctx, elapsed); err != nil {
				return err
			}
			if frontend != nil {
				frontend.Render(l, l.Alpha(), elapsed)
			}
		case <-ctx.Done():
			l.logger.Info("[GameLoop] stopped")
			return nil
		}
	}
}
