package gameloop

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/render"
	"github.com/annelo/rwsim/internal/script"
	"github.com/annelo/rwsim/internal/state"
	"github.com/annelo/rwsim/internal/world"
)

const T = DefaultStep

// stubState is a mode whose camera moves one unit along X per tick.
type stubState struct {
	update bool
	ticks  int
	pos    mgl32.Vec3
}

func (s *stubState) Name() string                           { return "stub" }
func (s *stubState) Enter()                                 {}
func (s *stubState) Exit()                                  {}
func (s *stubState) ShouldWorldUpdate() bool                { return s.update }
func (s *stubState) Camera() render.ViewCamera              { return render.NewViewCamera(s.pos) }
func (s *stubState) HandleAction(a state.Action, down bool) {}
func (s *stubState) Tick(dt float32) {
	s.ticks++
	s.pos = s.pos.Add(mgl32.Vec3{1, 0, 0})
}

// recordingSystem appends its name to a shared log every tick.
type recordingSystem struct {
	name string
	log  *[]string
	err  error
	bomb bool
}

func (r *recordingSystem) Name() string                 { return r.name }
func (r *recordingSystem) Init(deps Dependencies) error { return nil }
func (r *recordingSystem) Tick(ctx context.Context, dt time.Duration) error {
	*r.log = append(*r.log, r.name)
	if r.bomb {
		panic("boom")
	}
	return r.err
}

func newTestLoop(t *testing.T, st state.State, systems ...System) *Loop {
	t.Helper()
	w := world.NewGameWorld(nil, zaptest.NewLogger(t).Sugar())
	m := state.NewManager()
	if st != nil {
		m.Push(st)
	}
	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), nil, systems...)
	require.NoError(t, err)
	return l
}

func TestFrame_FragmentationIsAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	whole := newTestLoop(t, &stubState{update: true})
	split := newTestLoop(t, &stubState{update: true})
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		a := time.Duration(rng.Int63n(int64(3 * T / 2)))
		b := time.Duration(rng.Int63n(int64(3 * T / 2)))

		require.NoError(t, whole.Frame(ctx, a+b))
		require.NoError(t, split.Frame(ctx, a))
		require.NoError(t, split.Frame(ctx, b))

		require.Equal(t, whole.Steps(), split.Steps())
		require.Equal(t, whole.Accumulator(), split.Accumulator())
	}
}

func TestFrame_AccumulatorStaysBounded(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	ctx := context.Background()

	require.NoError(t, l.Frame(ctx, 100*T))
	assert.Equal(t, uint64(1), l.Steps(), "a huge backlog runs one step then resets")
	assert.Zero(t, l.Accumulator())

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Frame(ctx, time.Duration(rng.Int63n(int64(20*T)))))
		assert.Less(t, l.Accumulator(), T)
		assert.GreaterOrEqual(t, l.Accumulator(), time.Duration(0))
	}
}

func TestFrame_StepsMatchElapsed(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	require.NoError(t, l.Frame(context.Background(), 3*T+T/4))
	assert.Equal(t, uint64(3), l.Steps())
	assert.Equal(t, T/4, l.Accumulator())
	assert.InDelta(t, 0.25, l.Alpha(), 1e-6)
}

func TestFrame_TimeScale(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	l.SetTimeScale(2)
	l.SetTimeScale(0)
	l.SetTimeScale(-1)
	assert.Equal(t, 2.0, l.TimeScale())

	require.NoError(t, l.Frame(context.Background(), T))
	assert.Equal(t, uint64(2), l.Steps())
}

func TestAlpha_MenuIsOne(t *testing.T) {
	var log []string
	l := newTestLoop(t, &stubState{update: false}, &recordingSystem{name: "a", log: &log})

	require.NoError(t, l.Frame(context.Background(), 2*T+T/2))
	assert.Equal(t, float32(1), l.Alpha())
	assert.Equal(t, uint64(2), l.Steps(), "modes still tick while the world is frozen")
	assert.Empty(t, log)
}

func TestStep_SystemOrderAndFocus(t *testing.T) {
	var log []string
	l := newTestLoop(t, &stubState{update: true},
		&recordingSystem{name: "a", log: &log},
		&recordingSystem{name: "b", log: &log},
	)
	ctx := context.Background()

	require.NoError(t, l.Step(ctx))
	assert.Equal(t, []string{"a", "b"}, log)

	l.SetFocus(false)
	require.NoError(t, l.Step(ctx))
	assert.Len(t, log, 2, "an unfocused game does not simulate")
}

func TestStep_CameraDoubleBuffer(t *testing.T) {
	st := &stubState{update: true}
	l := newTestLoop(t, st)
	ctx := context.Background()

	require.NoError(t, l.Step(ctx))
	require.NoError(t, l.Step(ctx))
	last, next := l.Cameras()
	assert.Equal(t, float32(1), last.Position.X())
	assert.Equal(t, float32(2), next.Position.X())

	mid := l.ViewCamera(0.5)
	assert.InDelta(t, 1.5, mid.Position.X(), 1e-6)
}

func TestStep_ViewCameraPrefersOverrides(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	require.NoError(t, l.Step(context.Background()))

	fixed := render.NewViewCamera(mgl32.Vec3{7, 7, 7})
	l.World().SetFixedCamera(&fixed)
	assert.Equal(t, fixed, l.ViewCamera(0.3))
}

func TestStep_FatalScriptError(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(&stubState{update: true})
	machine := script.NewMachine(nil)
	_, err := machine.StartThread("main", func(th *script.Thread) error {
		return errors.New("unknown opcode")
	})
	require.NoError(t, err)

	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), machine, NewScriptSystem())
	require.NoError(t, err)
	events, cancel := l.Events().Subscribe(4)
	defer cancel()

	err = l.Frame(context.Background(), 3*T)
	var scriptErr *script.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "main", scriptErr.Thread)
	assert.Zero(t, l.Steps(), "the failing step is not counted")

	select {
	case e := <-events:
		assert.Equal(t, EventSystemFailed, e.Type)
	default:
		t.Fatal("no failure event")
	}
}

func TestFrame_ScriptPanicIsFatal(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(&stubState{update: true})
	machine := script.NewMachine(nil)
	var missing *world.GameWorld
	th, err := machine.StartThread("mission", func(th *script.Thread) error {
		missing.Clock.AddMinutes(1)
		return nil
	})
	require.NoError(t, err)

	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), machine, NewScriptSystem())
	require.NoError(t, err)

	err = l.Frame(context.Background(), 10*T)
	var scriptErr *script.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "mission", scriptErr.Thread)
	assert.Zero(t, l.Steps())
	assert.Equal(t, 1, th.Resumes())
}

func TestStep_PanicIsRecovered(t *testing.T) {
	var log []string
	l := newTestLoop(t, &stubState{update: true},
		&recordingSystem{name: "bad", log: &log, bomb: true},
		&recordingSystem{name: "good", log: &log},
	)
	require.NoError(t, l.Step(context.Background()))
	assert.Equal(t, []string{"bad", "good"}, log)
}

func TestWorkQueue(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	ran := 0
	require.NoError(t, l.Post(func() { ran++ }))
	assert.Zero(t, ran)
	require.NoError(t, l.Step(context.Background()))
	assert.Equal(t, 1, ran)

	for i := 0; i < workQueueSize; i++ {
		require.NoError(t, l.Post(func() {}))
	}
	assert.ErrorIs(t, l.Post(func() {}), ErrWorkQueueFull)
}

func TestDo_WaitsForTheLoop(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	var hour int
	go func() {
		done <- l.Do(ctx, func() { hour = l.World().Clock.Hour })
	}()

	for {
		require.NoError(t, l.Step(ctx))
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Equal(t, 12, hour)
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSummaryPublished(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	_, err := l.World().CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)

	require.NoError(t, l.Step(context.Background()))
	s := l.Summary()
	assert.Equal(t, uint64(1), s.Steps)
	assert.Equal(t, "stub", s.State)
	assert.Equal(t, 1, s.Pedestrians)
	assert.Equal(t, 1.0, s.TimeScale)
}

func TestRun_StopsWhenStackEmpties(t *testing.T) {
	l := newTestLoop(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, l.Run(ctx, nil, time.Millisecond))
	assert.NoError(t, ctx.Err(), "returned before the timeout")
}

type countingFrontend struct {
	frames int
	limit  int
}

func (f *countingFrontend) PollEvents(l *Loop) bool { return f.frames < f.limit }
func (f *countingFrontend) Render(l *Loop, alpha float32, frameTime time.Duration) {
	f.frames++
}

func TestRun_FrontendControlsLifetime(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	fe := &countingFrontend{limit: 3}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, l.Run(ctx, fe, time.Millisecond))
	assert.Equal(t, 3, fe.frames)
}

func TestTimeSystem_EmitsHourChange(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	w.Clock.Set(10, 59)
	m := state.NewManager()
	m.Push(&stubState{update: true})
	l, err := NewLoop(w, m, time.Second, zaptest.NewLogger(t).Sugar(), nil, NewTimeSystem())
	require.NoError(t, err)
	events, cancel := l.Events().Subscribe(4)
	defer cancel()

	require.NoError(t, l.Step(context.Background()))
	assert.Equal(t, "11:00", w.Clock.String())
	e := <-events
	assert.Equal(t, EventTimeChanged, e.Type)
	assert.Equal(t, 11, e.Fields["hour"])
}

func TestWeatherSystem_Changes(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(&stubState{update: true})
	l, err := NewLoop(w, m, time.Second, zaptest.NewLogger(t).Sugar(), nil, NewTimeSystem(), NewWeatherSystem(3))
	require.NoError(t, err)
	events, cancel := l.Events().Subscribe(64)
	defer cancel()

	initial := w.Weather.Type
	for i := 0; i < 241; i++ {
		require.NoError(t, l.Step(context.Background()))
	}

	changed := 0
	for len(events) > 0 {
		if e := <-events; e.Type == EventWeatherChanged {
			changed++
		}
	}
	assert.GreaterOrEqual(t, changed, 1)
	if changed == 1 {
		assert.NotEqual(t, initial, w.Weather.Type)
	}
}

func TestTrafficSystem_PopulatesAroundFocus(t *testing.T) {
	st := &stubState{update: true}
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(st)
	_, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), nil, NewObjectSystem(), NewTrafficSystem(5))
	require.NoError(t, err)
	ctx := context.Background()

	// freeze the camera near the origin
	st.pos = mgl32.Vec3{}
	for i := 0; i < 200; i++ {
		st.pos = mgl32.Vec3{-1, 0, 0}
		require.NoError(t, l.Step(ctx))
	}
	peds := w.AmbientCount(objectmanager.KindCharacter)
	assert.Greater(t, peds, 0)
	assert.LessOrEqual(t, peds, MaxPedestrians)
	assert.LessOrEqual(t, w.AmbientCount(objectmanager.KindVehicle), MaxVehicles)

	// jump the camera far away: old population is cleaned up
	far := mgl32.Vec3{10000, 0, 0}
	for i := 0; i < 60; i++ {
		st.pos = far.Sub(mgl32.Vec3{1, 0, 0})
		require.NoError(t, l.Step(ctx))
	}
	for _, c := range w.Characters() {
		if w.IsAmbient(c.ID()) {
			assert.Less(t, c.Position().Sub(far).Len(), float32(1000))
		}
	}
}

func TestTrafficSystem_NeedsPlayer(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(&stubState{update: true})
	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), nil, NewTrafficSystem(5))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.NoError(t, l.Step(context.Background()))
	}
	assert.Zero(t, w.AmbientCount(objectmanager.KindCharacter))
	assert.Zero(t, w.AmbientCount(objectmanager.KindVehicle))
}

func TestTrafficSystem_CleansUpEveryStep(t *testing.T) {
	st := &stubState{update: true}
	w := world.NewGameWorld(nil, nil)
	m := state.NewManager()
	m.Push(st)
	_, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	traffic := NewTrafficSystem(5)
	l, err := NewLoop(w, m, T, zaptest.NewLogger(t).Sugar(), nil, NewObjectSystem(), traffic)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = w.SpawnAmbientPedestrian(mgl32.Vec3{3, 0, 0}, 0)
	require.NoError(t, err)

	// камера прыгает далеко; уборка не ждёт пересборки сетки
	st.pos = mgl32.Vec3{9999, 0, 0}
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Step(ctx))
	}
	for _, c := range w.Characters() {
		assert.False(t, w.IsAmbient(c.ID()) && c.Position().Len() < 10, "old pedestrian survived")
	}
	require.NotEmpty(t, traffic.Regions())
	assert.Greater(t, traffic.Regions()[0].X, 200)
}

func TestTrafficSystem_RegionsSortedByPriority(t *testing.T) {
	l := newTestLoop(t, &stubState{update: true})
	traffic := NewTrafficSystem(9)
	require.NoError(t, l.AddSystem(traffic))

	regions := traffic.Regions()
	require.Len(t, regions, (2*PopulationRadius+1)*(2*PopulationRadius+1))
	for i := 1; i < len(regions); i++ {
		assert.GreaterOrEqual(t, regions[i-1].Priority, regions[i].Priority)
	}
}

func TestEventBus_DropsForSlowSubscribers(t *testing.T) {
	bus := NewEventBus()
	ch, cancel := bus.Subscribe(1)
	bus.Emit(WorldEvent{Type: EventTimeChanged})
	bus.Emit(WorldEvent{Type: EventWeatherChanged})
	assert.Equal(t, EventTimeChanged, (<-ch).Type)
	assert.Equal(t, 1, bus.Subscribers())

	cancel()
	cancel()
	assert.Zero(t, bus.Subscribers())
	_, open := <-ch
	assert.False(t, open)
}

func TestDefaultSystemsOrder(t *testing.T) {
	var names []string
	for _, s := range DefaultSystems(1) {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"time", "effects", "objects", "physics", "script", "traffic", "weather"}, names)
}
