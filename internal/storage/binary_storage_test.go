package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/rwsim/internal/storage"
)

func sampleSave() *storage.SaveGame {
	return &storage.SaveGame{
		GameTime:  123.5,
		Hour:      13,
		Minute:    37,
		Weather:   "rain",
		TimeScale: 1,
		Characters: []storage.CharacterState{{
			ID:       "player",
			Position: [3]float32{1, 2, 0},
			Heading:  0.5,
			Player:   true,
			Vehicle:  "car-1",
			Weapons:  []storage.WeaponState{{Name: "colt45", Ammo: 12}},
			Active:   0,
		}},
		Vehicles: []storage.VehicleState{{
			ID:       "car-1",
			Model:    "landstal",
			Position: [3]float32{5, 5, 0},
			Rotation: [4]float32{1, 0, 0, 0},
		}},
		Pickups: []storage.PickupState{{Weapon: "grenade", Position: [3]float32{9, 9, 0}}},
	}
}

func TestBinaryStorage_SaveLoad(t *testing.T) {
	bs, err := storage.NewBinaryStorage(t.TempDir(), "liberty", 123)
	require.NoError(t, err)
	defer bs.Close()

	ctx := context.Background()
	want := sampleSave()
	require.NoError(t, bs.SaveGame(ctx, "slot1", want))

	got, err := bs.LoadGame(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, storage.SaveVersion, got.Version)
	assert.Equal(t, want.Hour, got.Hour)
	assert.Equal(t, want.Minute, got.Minute)
	assert.Equal(t, want.Weather, got.Weather)
	assert.Equal(t, want.Characters, got.Characters)
	assert.Equal(t, want.Vehicles, got.Vehicles)
	assert.Equal(t, want.Pickups, got.Pickups)
}

func TestBinaryStorage_MissingSave(t *testing.T) {
	bs, err := storage.NewBinaryStorage(t.TempDir(), "liberty", 1)
	require.NoError(t, err)

	_, err = bs.LoadGame(context.Background(), "nope")
	var notFound storage.ErrSaveNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "nope", notFound.Name)

	assert.Error(t, bs.DeleteGame(context.Background(), "nope"))
}

func TestBinaryStorage_ListAndDelete(t *testing.T) {
	bs, err := storage.NewBinaryStorage(t.TempDir(), "liberty", 1)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, bs.SaveGame(ctx, name, sampleSave()))
	}
	names, err := bs.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.NoError(t, bs.DeleteGame(ctx, "b"))
	names, err = bs.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestBinaryStorage_RejectsBadNames(t *testing.T) {
	bs, err := storage.NewBinaryStorage(t.TempDir(), "liberty", 1)
	require.NoError(t, err)

	for _, name := range []string{"", "../x", "a/b", ".."} {
		assert.Error(t, bs.SaveGame(context.Background(), name, sampleSave()), "name %q", name)
	}
}

func TestBinaryStorage_WorldInfoPersists(t *testing.T) {
	dir := t.TempDir()
	first, err := storage.NewBinaryStorage(dir, "liberty", 77)
	require.NoError(t, err)
	created := first.WorldInfo().CreatedAt
	require.NoError(t, first.Close())

	_, err = os.Stat(filepath.Join(dir, "world_info.json"))
	require.NoError(t, err)

	second, err := storage.NewBinaryStorage(dir, "other", 1)
	require.NoError(t, err)
	assert.Equal(t, "liberty", second.WorldInfo().Name)
	assert.Equal(t, int64(77), second.WorldInfo().Seed)
	assert.Equal(t, created, second.WorldInfo().CreatedAt)
}

func TestBinaryStorage_ClosedRejectsSaves(t *testing.T) {
	bs, err := storage.NewBinaryStorage(t.TempDir(), "liberty", 1)
	require.NoError(t, err)
	require.NoError(t, bs.Close())

	assert.Error(t, bs.SaveGame(context.Background(), "x", sampleSave()))
}
