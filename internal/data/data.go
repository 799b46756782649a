// Package data holds the static game tables consumed by the simulation:
// vehicle layouts and weapon definitions.
package data

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// VehicleType classifies a vehicle model.
type VehicleType int

const (
	VehicleCar VehicleType = iota
	VehicleBoat
	VehicleTrain
	VehicleHeli
	VehiclePlane
	VehicleBike
)

var vehicleTypeNames = map[string]VehicleType{
	"car":   VehicleCar,
	"boat":  VehicleBoat,
	"train": VehicleTrain,
	"heli":  VehicleHeli,
	"plane": VehiclePlane,
	"bike":  VehicleBike,
}

func (t VehicleType) String() string {
	for name, v := range vehicleTypeNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("VehicleType(%d)", int(t))
}

// UnmarshalYAML accepts the lower-case type name.
func (t *VehicleType) UnmarshalYAML(node *yaml.Node) error {
	v, ok := vehicleTypeNames[node.Value]
	if !ok {
		return fmt.Errorf("unknown vehicle type %q", node.Value)
	}
	*t = v
	return nil
}

// SeatInfo describes a seat relative to the vehicle origin.
type SeatInfo struct {
	Offset [3]float32 `yaml:"offset"`
	// Door names the hinged part the seat is entered through. Empty means none.
	Door string `yaml:"door"`
}

// Position returns the seat offset as a vector.
func (s SeatInfo) Position() mgl32.Vec3 {
	return mgl32.Vec3{s.Offset[0], s.Offset[1], s.Offset[2]}
}

// DoorInfo describes a hinged door part.
type DoorInfo struct {
	Name string `yaml:"name"`
	// Translation is the part's default translation in model space.
	Translation [3]float32 `yaml:"translation"`
	OpenAngle   float32    `yaml:"open_angle"`
	ClosedAngle float32    `yaml:"closed_angle"`
	// Constrained doors are driven by a hinge; unconstrained ones are static.
	Constrained bool `yaml:"constrained"`
}

// VehicleInfo is a vehicle model definition.
type VehicleInfo struct {
	Model string      `yaml:"model"`
	Type  VehicleType `yaml:"type"`
	Seats []SeatInfo  `yaml:"seats"`
	Doors []DoorInfo  `yaml:"doors"`
	// MaxSpeed in units per second at full throttle.
	MaxSpeed float32 `yaml:"max_speed"`
	// MaxSteer in radians.
	MaxSteer float32 `yaml:"max_steer"`
}

// Door returns the named door or nil.
func (v *VehicleInfo) Door(name string) *DoorInfo {
	for i := range v.Doors {
		if v.Doors[i].Name == name {
			return &v.Doors[i]
		}
	}
	return nil
}

// FireType selects how a weapon discharges.
type FireType int

const (
	FireMelee FireType = iota
	FireInstantHit
	FireProjectile
)

var fireTypeNames = map[string]FireType{
	"melee":       FireMelee,
	"instant_hit": FireInstantHit,
	"projectile":  FireProjectile,
}

// UnmarshalYAML accepts the lower-case fire type name.
func (f *FireType) UnmarshalYAML(node *yaml.Node) error {
	v, ok := fireTypeNames[node.Value]
	if !ok {
		return fmt.Errorf("unknown fire type %q", node.Value)
	}
	*f = v
	return nil
}

// WeaponData defines a weapon. Animation timings are percentages of the clip.
type WeaponData struct {
	Name                string   `yaml:"name"`
	FireType            FireType `yaml:"fire_type"`
	Animation1          string   `yaml:"animation1"`
	Animation2          string   `yaml:"animation2"`
	AnimLoopStart       float32  `yaml:"anim_loop_start"`
	AnimLoopEnd         float32  `yaml:"anim_loop_end"`
	AnimFirePoint       float32  `yaml:"anim_fire_point"`
	AnimCrouchFirePoint float32  `yaml:"anim_crouch_fire_point"`
	Ammo                int      `yaml:"ammo"`
}

// ClipInfo declares an animation clip and its length in seconds.
type ClipInfo struct {
	Name     string  `yaml:"name"`
	Duration float32 `yaml:"duration"`
}

// Catalog is the set of data tables loaded at startup.
type Catalog struct {
	Vehicles []VehicleInfo `yaml:"vehicles"`
	Weapons  []WeaponData  `yaml:"weapons"`
	Clips    []ClipInfo    `yaml:"clips"`

	once     sync.Once
	vehicles map[string]*VehicleInfo
	weapons  map[string]*WeaponData
}

func (c *Catalog) index() {
	c.once.Do(func() {
		c.vehicles = make(map[string]*VehicleInfo, len(c.Vehicles))
		for i := range c.Vehicles {
			c.vehicles[c.Vehicles[i].Model] = &c.Vehicles[i]
		}
		c.weapons = make(map[string]*WeaponData, len(c.Weapons))
		for i := range c.Weapons {
			c.weapons[c.Weapons[i].Name] = &c.Weapons[i]
		}
	})
}

// Vehicle looks up a vehicle model.
func (c *Catalog) Vehicle(model string) (*VehicleInfo, bool) {
	c.index()
	v, ok := c.vehicles[model]
	return v, ok
}

// Weapon looks up a weapon by name.
func (c *Catalog) Weapon(name string) (*WeaponData, bool) {
	c.index()
	w, ok := c.weapons[name]
	return w, ok
}

// LoadCatalog reads a YAML catalog from path. Entries from the file replace
// default entries with the same key; everything else is kept.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var file Catalog
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return Merge(DefaultCatalog(), &file), nil
}

// Merge overlays extra onto base and returns a new catalog.
func Merge(base, extra *Catalog) *Catalog {
	out := &Catalog{}
	vehicles := map[string]int{}
	for _, v := range base.Vehicles {
		vehicles[v.Model] = len(out.Vehicles)
		out.Vehicles = append(out.Vehicles, v)
	}
	for _, v := range extra.Vehicles {
		if i, ok := vehicles[v.Model]; ok {
			out.Vehicles[i] = v
			continue
		}
		out.Vehicles = append(out.Vehicles, v)
	}
	weapons := map[string]int{}
	for _, w := range base.Weapons {
		weapons[w.Name] = len(out.Weapons)
		out.Weapons = append(out.Weapons, w)
	}
	for _, w := range extra.Weapons {
		if i, ok := weapons[w.Name]; ok {
			out.Weapons[i] = w
			continue
		}
		out.Weapons = append(out.Weapons, w)
	}
	clips := map[string]int{}
	for _, c := range base.Clips {
		clips[c.Name] = len(out.Clips)
		out.Clips = append(out.Clips, c)
	}
	for _, c := range extra.Clips {
		if i, ok := clips[c.Name]; ok {
			out.Clips[i] = c
			continue
		}
		out.Clips = append(out.Clips, c)
	}
	return out
}
