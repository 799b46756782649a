package script

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/world"
)

const step = 100 * time.Millisecond

func TestMachine_WaitSchedulesResumes(t *testing.T) {
	m := NewMachine(zaptest.NewLogger(t).Sugar())
	th, err := m.StartThread("ticker", func(t *Thread) error {
		t.Wait(300 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		require.NoError(t, m.Execute(step))
	}
	// runs at 0, 300 and 600ms
	assert.Equal(t, 3, th.Resumes())
}

func TestMachine_EndRemovesThread(t *testing.T) {
	m := NewMachine(nil)
	_, err := m.StartThread("once", func(t *Thread) error {
		t.End()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, m.Execute(step))
	assert.Empty(t, m.Threads())

	_, err = m.StartThread("once", func(t *Thread) error { return nil })
	assert.NoError(t, err, "finished names can be reused")
}

func TestMachine_DuplicateName(t *testing.T) {
	m := NewMachine(nil)
	_, err := m.StartThread("main", func(t *Thread) error { return nil })
	require.NoError(t, err)
	_, err = m.StartThread("main", func(t *Thread) error { return nil })
	assert.ErrorIs(t, err, ErrThreadExists)
}

func TestMachine_FaultIsScriptError(t *testing.T) {
	boom := errors.New("bad opcode")
	m := NewMachine(nil)
	_, err := m.StartThread("broken", func(t *Thread) error { return boom })
	require.NoError(t, err)

	err = m.Execute(step)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "broken", scriptErr.Thread)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.Threads())
}

func TestMachine_PanicIsScriptError(t *testing.T) {
	m := NewMachine(nil)
	var items []int
	_, err := m.StartThread("oob", func(t *Thread) error {
		_ = items[3]
		return nil
	})
	require.NoError(t, err)

	err = m.Execute(step)
	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "oob", scriptErr.Thread)
	assert.Contains(t, err.Error(), "panic")
	assert.Empty(t, m.Threads(), "a panicking thread is not resumed again")
	assert.NoError(t, m.Execute(step))
}

func TestMachine_ThreadsStartedWhileRunningJoinNextPass(t *testing.T) {
	m := NewMachine(nil)
	var child *Thread
	_, err := m.StartThread("parent", func(t *Thread) error {
		var err error
		child, err = m.StartThread("child", func(t *Thread) error {
			t.End()
			return nil
		})
		t.End()
		return err
	})
	require.NoError(t, err)

	require.NoError(t, m.Execute(step))
	require.NotNil(t, child)
	assert.Zero(t, child.Resumes())
	require.Len(t, m.Threads(), 1)

	require.NoError(t, m.Execute(step))
	assert.Equal(t, 1, child.Resumes())
}

func TestMachine_Breakpoints(t *testing.T) {
	m := NewMachine(nil)
	var hits []Breakpoint
	m.SetBreakpointHandler(func(bp Breakpoint) { hits = append(hits, bp) })
	m.AddBreakpoint("watched")
	_, err := m.StartThread("watched", func(t *Thread) error { return nil })
	require.NoError(t, err)
	_, err = m.StartThread("other", func(t *Thread) error { return nil })
	require.NoError(t, err)

	require.NoError(t, m.Execute(step))
	require.NoError(t, m.Execute(step))
	assert.Equal(t, []Breakpoint{{Thread: "watched", Resumes: 0}, {Thread: "watched", Resumes: 1}}, hits)
}

func TestIntroMission(t *testing.T) {
	w := world.NewGameWorld(nil, nil)
	player, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)

	m := NewMachine(nil)
	th, err := m.StartThread("intro", IntroMission(w))
	require.NoError(t, err)

	require.NoError(t, m.Execute(step))
	assert.Equal(t, 1, w.Objects.Count(objectmanager.KindPickup))
	assert.Contains(t, w.Texts(), "Welcome to Liberty")
	node, ok := w.FindPathNode(IntroPickupNode)
	require.True(t, ok)
	assert.Greater(t, node.Position().Sub(mgl32.Vec3{0, 3, 0}).Len(), float32(objects.PickupRadius))
	require.Len(t, w.Effects(), 1)
	assert.True(t, w.Effects()[0].Permanent())
	require.NotNil(t, w.CameraOverrides().Fixed)

	// обзор сверху, затем облёт
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Execute(step))
	}
	assert.Nil(t, w.CameraOverrides().Fixed)
	assert.True(t, w.InCutscene())

	for i := 0; i < 20; i++ {
		require.NoError(t, m.Execute(step))
	}
	assert.False(t, w.InCutscene())
	require.Len(t, w.Characters(), 2)
	var buddy *objects.CharacterObject
	for _, c := range w.Characters() {
		if c != player {
			buddy = c
		}
	}
	require.NotNil(t, buddy)
	assert.Equal(t, ai.GoalGoToNode, buddy.Controller().Goal())

	// walk onto the pickup
	player.SetPosition(mgl32.Vec3{0, 3, 0})
	w.TickObjects(0.1)
	require.Len(t, player.Inventory(), 1)
	assert.Empty(t, buddy.Inventory())

	for i := 0; i < 30 && !th.Finished(); i++ {
		require.NoError(t, m.Execute(step))
	}
	assert.True(t, th.Finished())
	assert.Contains(t, w.Texts(), "Hold fire to shoot")
	assert.Empty(t, w.Effects())
	assert.Equal(t, ai.GoalFollowLeader, buddy.Controller().Goal())
	assert.Equal(t, player.ID(), buddy.Controller().Leader())
}

func TestIntroMission_NoPlayerIsFatal(t *testing.T) {
	m := NewMachine(nil)
	_, err := m.StartThread("intro", IntroMission(world.NewGameWorld(nil, nil)))
	require.NoError(t, err)
	assert.ErrorIs(t, m.Execute(step), ErrNoPlayer)
}
