package world

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/render"
)

const dt = float32(1.0 / 30)

func TestClock_AddMinutesWraps(t *testing.T) {
	c := NewClock(23, 45)
	c.AddMinutes(90)
	assert.Equal(t, 1, c.Hour)
	assert.Equal(t, 15, c.Minute)
	assert.Equal(t, "01:15", c.String())

	c.AddMinutes(-120)
	assert.Equal(t, "23:15", c.String())
}

func TestClock_AdvanceCountsMinutes(t *testing.T) {
	c := NewClock(8, 59)
	for i := 0; i < 40; i++ {
		c.Advance(25 * time.Millisecond)
	}
	assert.Equal(t, "09:00", c.String())
	assert.Equal(t, time.Second, c.GameTime())
	assert.False(t, c.IsNight())

	c.Set(25, 0)
	assert.Equal(t, "01:00", c.String())
	assert.True(t, c.IsNight())
}

func TestParseWeather(t *testing.T) {
	w, err := ParseWeather("foggy")
	require.NoError(t, err)
	assert.Equal(t, WeatherFoggy, w)

	_, err = ParseWeather("snow")
	assert.Error(t, err)
}

func TestCreateVehicle_UnknownModel(t *testing.T) {
	w := NewGameWorld(nil, nil)
	_, err := w.CreateVehicle("hovercraft", mgl32.Vec3{}, 0)
	assert.True(t, errors.Is(err, ErrUnknownModel))
	assert.Zero(t, w.Objects.Len())
}

func TestCreatePlayer_ReplacesPrevious(t *testing.T) {
	w := NewGameWorld(nil, nil)
	first, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	second, err := w.CreatePlayer(mgl32.Vec3{1, 0, 0}, 0)
	require.NoError(t, err)

	assert.Equal(t, second, w.Player())
	_, err = w.Objects.Get(first.ID())
	assert.ErrorIs(t, err, objectmanager.ErrNotFound)
	assert.Equal(t, 1, w.Physics.BodyCount())
}

func TestDestroyQueue(t *testing.T) {
	w := NewGameWorld(nil, nil)
	ped, err := w.CreatePedestrian(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	car, err := w.CreateVehicle("landstal", mgl32.Vec3{5, 0, 0}, 0)
	require.NoError(t, err)

	w.DestroyObject(ped.ID())
	w.DestroyObject(ped.ID())
	assert.Equal(t, 2, w.Objects.Len(), "destruction waits for the object tick")

	w.TickObjects(dt)
	assert.Equal(t, 1, w.Objects.Len())
	assert.Len(t, w.Vehicles(), 1)
	assert.Equal(t, car, w.Vehicles()[0])
	assert.Zero(t, w.Physics.BodyCount())
}

func TestPickupCollectedIsRemoved(t *testing.T) {
	w := NewGameWorld(nil, nil)
	player, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	_, err = w.CreatePickup("colt45", mgl32.Vec3{0.5, 0, 0})
	require.NoError(t, err)

	w.TickObjects(dt)
	assert.Zero(t, w.Objects.Count(objectmanager.KindPickup))
	require.NotNil(t, player.ActiveWeapon())
	assert.Equal(t, "colt45", player.ActiveWeapon().WeaponData().Name)
}

func TestCreatePickup_UnknownWeapon(t *testing.T) {
	w := NewGameWorld(nil, nil)
	_, err := w.CreatePickup("railgun", mgl32.Vec3{})
	assert.ErrorIs(t, err, ErrUnknownWeapon)
}

func TestEffectsExpire(t *testing.T) {
	w := NewGameWorld(nil, nil)
	w.AddEffect("spark", mgl32.Vec3{}, 0.1)
	w.AddEffect("smoke", mgl32.Vec3{}, 1)

	w.UpdateEffects(0.05)
	assert.Len(t, w.Effects(), 2)
	w.UpdateEffects(0.06)
	require.Len(t, w.Effects(), 1)
	assert.Equal(t, "smoke", w.Effects()[0].Name)
}

func TestEffects_PermanentUntilRemoved(t *testing.T) {
	w := NewGameWorld(nil, nil)
	marker := w.AddEffect("marker", mgl32.Vec3{1, 2, 0}, PermanentEffect)
	w.AddEffect("spark", mgl32.Vec3{}, 0.1)

	for i := 0; i < 100; i++ {
		w.UpdateEffects(1)
	}
	require.Len(t, w.Effects(), 1)
	assert.Same(t, marker, w.Effects()[0])
	assert.True(t, marker.Permanent())

	w.RemoveEffect(marker)
	assert.Empty(t, w.Effects())
}

func TestTexts(t *testing.T) {
	w := NewGameWorld(nil, nil)
	w.ShowText("mission", "Go to the car", 1)
	w.ShowText("mission", "Get in", 2)
	w.AddTickText("+1")
	assert.Equal(t, []string{"Get in", "+1"}, w.Texts())

	w.ClearTickData()
	assert.Equal(t, []string{"Get in"}, w.Texts())

	w.ExpireTexts(2.5)
	assert.Empty(t, w.Texts())
}

func TestWeaponFireAddsMuzzleFlash(t *testing.T) {
	w := NewGameWorld(nil, nil)
	ped, err := w.CreatePedestrian(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	item, err := w.GiveWeapon(ped, "colt45")
	require.NoError(t, err)

	item.Fire()
	assert.Equal(t, 1, w.ShotsThisStep())
	assert.Len(t, w.Effects(), 1)

	w.ClearTickData()
	assert.Zero(t, w.ShotsThisStep())
}

func TestCutsceneEndsAfterDuration(t *testing.T) {
	w := NewGameWorld(nil, nil)
	track := render.NewCameraTrack(
		render.Keyframe{Time: 0, Camera: render.NewViewCamera(mgl32.Vec3{})},
		render.Keyframe{Time: 0.5, Camera: render.NewViewCamera(mgl32.Vec3{0, 10, 0})},
	)
	fixed := render.NewViewCamera(mgl32.Vec3{1, 2, 3})
	w.SetFixedCamera(&fixed)
	w.StartCutscene(track)

	o := w.CameraOverrides()
	assert.Equal(t, track, o.Cutscene)
	assert.Equal(t, &fixed, o.Fixed)

	for i := 0; i < 10; i++ {
		w.AdvanceCutscene(0.1)
	}
	assert.False(t, w.InCutscene())
	assert.Nil(t, w.CameraOverrides().Cutscene)
}

func TestCleanupAmbient(t *testing.T) {
	w := NewGameWorld(nil, nil)
	near, err := w.SpawnAmbientPedestrian(mgl32.Vec3{5, 0, 0}, 0)
	require.NoError(t, err)
	_, err = w.SpawnAmbientPedestrian(mgl32.Vec3{500, 0, 0}, 0)
	require.NoError(t, err)
	local, err := w.CreatePedestrian(mgl32.Vec3{600, 0, 0}, 0)
	require.NoError(t, err)
	_, err = w.SpawnAmbientVehicle("landstal", mgl32.Vec3{400, 0, 0}, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, w.AmbientCount(objectmanager.KindCharacter))
	assert.Equal(t, 2, w.CleanupAmbient(mgl32.Vec3{}, 100))
	w.DestroyQueued()

	assert.Equal(t, 1, w.AmbientCount(objectmanager.KindCharacter))
	assert.Zero(t, w.AmbientCount(objectmanager.KindVehicle))
	assert.True(t, w.IsAmbient(near.ID()))
	_, err = w.Objects.Get(local.ID())
	assert.NoError(t, err, "scripted pedestrians are never cleaned up")
}

func TestCleanupAmbient_KeepsPlayerVehicle(t *testing.T) {
	w := NewGameWorld(nil, nil)
	car, err := w.SpawnAmbientVehicle("landstal", mgl32.Vec3{400, 0, 0}, 0)
	require.NoError(t, err)
	player, err := w.CreatePlayer(mgl32.Vec3{400, 0, 0}, 0)
	require.NoError(t, err)
	player.EnterVehicle(car, 0)

	assert.Zero(t, w.CleanupAmbient(mgl32.Vec3{}, 100))
}

func TestWanderAmbient(t *testing.T) {
	w := NewGameWorld(nil, nil)
	ped, err := w.SpawnAmbientPedestrian(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	_, err = w.CreatePedestrian(mgl32.Vec3{}, 0)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	assert.Equal(t, 1, w.WanderAmbient(rng, 10))
	assert.NotNil(t, ped.Controller().CurrentActivity())
	assert.Zero(t, w.WanderAmbient(rng, 10), "busy pedestrians are left alone")
}

func TestSnapshotRestore(t *testing.T) {
	w := NewGameWorld(nil, nil)
	w.Clock.Set(21, 30)
	w.Weather.Type = WeatherRainy
	car, err := w.CreateVehicle("landstal", mgl32.Vec3{10, 0, 0}, 0.5)
	require.NoError(t, err)
	player, err := w.CreatePlayer(mgl32.Vec3{}, 0)
	require.NoError(t, err)
	item, err := w.GiveWeapon(player, "colt45")
	require.NoError(t, err)
	item.SetAmmo(7)
	player.EnterVehicle(car, 0)
	_, err = w.SpawnAmbientPedestrian(mgl32.Vec3{3, 3, 0}, 1)
	require.NoError(t, err)
	_, err = w.CreatePickup("grenade", mgl32.Vec3{50, 0, 0})
	require.NoError(t, err)

	save := w.Snapshot()
	require.Len(t, save.Characters, 2)
	require.Len(t, save.Vehicles, 1)
	require.Len(t, save.Pickups, 1)

	restored := NewGameWorld(nil, nil)
	require.NoError(t, restored.Restore(save))

	assert.Equal(t, "21:30", restored.Clock.String())
	assert.Equal(t, WeatherRainy, restored.Weather.Type)

	p := restored.Player()
	require.NotNil(t, p)
	require.NotNil(t, p.Vehicle())
	assert.Equal(t, "landstal", p.Vehicle().Info().Model)
	assert.Equal(t, 0, p.CurrentSeat())
	require.NotNil(t, p.ActiveWeapon())
	assert.Equal(t, 7, p.ActiveWeapon().Ammo())
	assert.Equal(t, 1, restored.AmbientCount(objectmanager.KindCharacter))
	assert.Equal(t, 1, restored.Objects.Count(objectmanager.KindPickup))

	rot := restored.Vehicles()[0].Rotation()
	assert.InDelta(t, car.Rotation().W, rot.W, 1e-6)
}

func TestRestore_RejectsOtherVersions(t *testing.T) {
	w := NewGameWorld(nil, nil)
	save := w.Snapshot()
	save.Version = 99
	assert.Error(t, w.Restore(save))
}

func TestSummarize(t *testing.T) {
	w := NewGameWorld(nil, nil)
	_, err := w.CreatePlayer(mgl32.Vec3{1, 2, 3}, 0)
	require.NoError(t, err)
	_, err = w.CreateVehicle("landstal", mgl32.Vec3{}, 0)
	require.NoError(t, err)

	s := w.Summarize()
	assert.Equal(t, 1, s.Pedestrians)
	assert.Equal(t, 1, s.Vehicles)
	assert.Equal(t, [3]float32{1, 2, 3}, s.PlayerPosition)
	assert.Equal(t, "12:00", s.Clock)
	assert.Equal(t, "sunny", s.Weather)
}
