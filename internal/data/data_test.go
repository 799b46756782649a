package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Lookups(t *testing.T) {
	c := DefaultCatalog()

	car, ok := c.Vehicle("landstal")
	require.True(t, ok)
	assert.Equal(t, VehicleCar, car.Type)
	require.NotNil(t, car.Door("door_lf"))
	assert.Less(t, car.Door("door_lf").Translation[0], float32(0))
	assert.Nil(t, car.Door("boot"))

	boat, ok := c.Vehicle("speeder")
	require.True(t, ok)
	assert.Equal(t, VehicleBoat, boat.Type)

	gun, ok := c.Weapon("colt45")
	require.True(t, ok)
	assert.Equal(t, FireInstantHit, gun.FireType)
	grenade, ok := c.Weapon("grenade")
	require.True(t, ok)
	assert.Equal(t, FireProjectile, grenade.FireType)

	_, ok = c.Vehicle("tank")
	assert.False(t, ok)
}

func TestLoadCatalog_OverridesAndAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	raw := `
vehicles:
  - model: reefer
    type: boat
    seats:
      - offset: [0, 0, 0.5]
    max_speed: 20
weapons:
  - name: colt45
    fire_type: instant_hit
    animation1: python
    anim_loop_start: 20
    anim_loop_end: 60
    anim_fire_point: 40
    ammo: 99
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	reefer, ok := c.Vehicle("reefer")
	require.True(t, ok)
	assert.Equal(t, VehicleBoat, reefer.Type)
	assert.Equal(t, float32(0.5), reefer.Seats[0].Position().Z())

	gun, ok := c.Weapon("colt45")
	require.True(t, ok)
	assert.Equal(t, 99, gun.Ammo)

	_, ok = c.Vehicle("landstal")
	assert.True(t, ok, "defaults are kept")
	assert.Len(t, c.Clips, len(DefaultCatalog().Clips))
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	tests := []struct {
		name string
		raw  string
	}{
		{"bad vehicle type", "vehicles:\n  - model: x\n    type: hovercraft\n"},
		{"bad fire type", "weapons:\n  - name: x\n    fire_type: laser\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.raw), 0o644))
			_, err := LoadCatalog(path)
			assert.Error(t, err)
		})
	}
}

func TestVehicleType_String(t *testing.T) {
	assert.Equal(t, "boat", VehicleBoat.String())
	assert.Equal(t, "VehicleType(42)", VehicleType(42).String())
}
