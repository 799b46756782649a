package storage

import (
	"context"
	"fmt"
)

// SaveStorage хранит сохранения игры и общую информацию о мире
type SaveStorage interface {
	// SaveGame writes a snapshot under name, replacing an older one.
	SaveGame(ctx context.Context, name string, save *SaveGame) error

	// LoadGame returns ErrSaveNotFound when no snapshot has that name.
	LoadGame(ctx context.Context, name string) (*SaveGame, error)

	DeleteGame(ctx context.Context, name string) error

	// ListGames returns the stored snapshot names, sorted.
	ListGames(ctx context.Context) ([]string, error)

	SaveWorld(ctx context.Context, info *WorldInfo) error
	LoadWorld(ctx context.Context) (*WorldInfo, error)

	Close() error
}

// WorldInfo describes the world a save directory belongs to.
type WorldInfo struct {
	Name       string            `json:"name"`
	Seed       int64             `json:"seed"`
	Version    string            `json:"version"`
	CreatedAt  int64             `json:"created_at"`
	LastSaveAt int64             `json:"last_save_at"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ErrSaveNotFound is returned by LoadGame for unknown names.
type ErrSaveNotFound struct {
	Name string
}

func (e ErrSaveNotFound) Error() string {
	return fmt.Sprintf("save %q not found", e.Name)
}

// SaveVersion is bumped whenever SaveGame changes incompatibly.
const SaveVersion = 1

// SaveGame is a snapshot of the simulation.
type SaveGame struct {
	Version int
	SavedAt int64

	GameTime  float64
	Hour      int
	Minute    int
	Weather   string
	TimeScale float64

	Characters []CharacterState
	Vehicles   []VehicleState
	Pickups    []PickupState
}

// CharacterState is a saved pedestrian.
type CharacterState struct {
	ID       string
	Model    string
	Position [3]float32
	Heading  float32
	Player   bool
	Ambient  bool

	// Vehicle is the id of the occupied vehicle, empty on foot.
	Vehicle string
	Seat    int

	Weapons []WeaponState
	Active  int
}

// WeaponState is a carried weapon.
type WeaponState struct {
	Name string
	Ammo int
}

// VehicleState is a saved vehicle.
type VehicleState struct {
	ID       string
	Model    string
	Position [3]float32
	// Rotation is the quaternion as W, X, Y, Z.
	Rotation [4]float32
}

// PickupState is an uncollected pickup.
type PickupState struct {
	Weapon   string
	Position [3]float32
}
