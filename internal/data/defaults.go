package data

// Clip names shared by every pedestrian animation set.
const (
	ClipIdle         = "idle_stance"
	ClipWalkStart    = "walk_start"
	ClipWalk         = "walk_player"
	ClipRun          = "run_player"
	ClipJumpStart    = "jump_launch"
	ClipJumpGlide    = "jump_glide"
	ClipJumpLand     = "jump_land"
	ClipCarSit       = "car_sit"
	ClipCarOpenLHS   = "car_open_lhs"
	ClipCarOpenRHS   = "car_open_rhs"
	ClipCarGetInLHS  = "car_getin_lhs"
	ClipCarGetInRHS  = "car_getin_rhs"
	ClipCarGetOutLHS = "car_getout_lhs"
	ClipCarGetOutRHS = "car_getout_rhs"
)

// DefaultCatalog returns the built-in tables used when no catalog file is given.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Clips: []ClipInfo{
			{Name: ClipIdle, Duration: 2.0},
			{Name: ClipWalkStart, Duration: 0.5},
			{Name: ClipWalk, Duration: 1.0},
			{Name: ClipRun, Duration: 0.7},
			{Name: ClipJumpStart, Duration: 0.4},
			{Name: ClipJumpGlide, Duration: 1.0},
			{Name: ClipJumpLand, Duration: 0.3},
			{Name: ClipCarSit, Duration: 1.0},
			{Name: ClipCarOpenLHS, Duration: 0.8},
			{Name: ClipCarOpenRHS, Duration: 0.8},
			{Name: ClipCarGetInLHS, Duration: 1.0},
			{Name: ClipCarGetInRHS, Duration: 1.0},
			{Name: ClipCarGetOutLHS, Duration: 1.0},
			{Name: ClipCarGetOutRHS, Duration: 1.0},
			{Name: "python", Duration: 0.9},
			{Name: "weapon_start_throw", Duration: 0.5},
			{Name: "weapon_throwu", Duration: 0.6},
		},
		Vehicles: []VehicleInfo{
			{
				Model: "landstal",
				Type:  VehicleCar,
				Seats: []SeatInfo{
					{Offset: [3]float32{-0.5, 0.3, 0.2}, Door: "door_lf"},
					{Offset: [3]float32{0.5, 0.3, 0.2}, Door: "door_rf"},
					{Offset: [3]float32{-0.5, -0.8, 0.2}, Door: "door_lr"},
					{Offset: [3]float32{0.5, -0.8, 0.2}, Door: "door_rr"},
				},
				Doors: []DoorInfo{
					{Name: "door_lf", Translation: [3]float32{-1.0, 0.4, 0}, OpenAngle: 1.2, Constrained: true},
					{Name: "door_rf", Translation: [3]float32{1.0, 0.4, 0}, OpenAngle: -1.2, Constrained: true},
					{Name: "door_lr", Translation: [3]float32{-1.0, -0.9, 0}, OpenAngle: 1.2, Constrained: true},
					{Name: "door_rr", Translation: [3]float32{1.0, -0.9, 0}, OpenAngle: -1.2, Constrained: true},
				},
				MaxSpeed: 30,
				MaxSteer: 0.6,
			},
			{
				Model: "speeder",
				Type:  VehicleBoat,
				Seats: []SeatInfo{
					{Offset: [3]float32{-0.4, 0.0, 0.5}},
					{Offset: [3]float32{0.4, 0.0, 0.5}},
				},
				MaxSpeed: 25,
				MaxSteer: 0.5,
			},
		},
		Weapons: []WeaponData{
			{
				Name:          "colt45",
				FireType:      FireInstantHit,
				Animation1:    "python",
				AnimLoopStart: 20,
				AnimLoopEnd:   80,
				AnimFirePoint: 40,
				Ammo:          68,
			},
			{
				Name:                "grenade",
				FireType:            FireProjectile,
				Animation1:          "weapon_start_throw",
				Animation2:          "weapon_throwu",
				AnimCrouchFirePoint: 50,
				Ammo:                8,
			},
		},
	}
}
