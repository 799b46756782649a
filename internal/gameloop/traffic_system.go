package gameloop

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/noisegeneration"
	"github.com/annelo/rwsim/internal/objectmanager"
)

// Константы для настройки системы трафика
const (
	// Размер региона в мировых единицах
	RegionSize = 32

	// Радиус сетки регионов вокруг фокуса (в регионах)
	PopulationRadius = 2

	// Ambient objects farther than this from the focus are removed.
	CleanupRadius = 120

	MaxPedestrians = 24
	MaxVehicles    = 8

	// Весовые коэффициенты для расчета приоритета
	PlayerWeight  = 10 // Вес присутствия игрока в регионе
	DensityWeight = 20 // Вес плотности пешеходов

	// wanderRadius is how far idle ambient pedestrians stroll.
	wanderRadius = 15
)

// Region is one cell of the population grid.
type Region struct {
	X, Y int

	Zone       noisegeneration.ZoneType
	Density    float64
	CarDensity float64

	PlayersCount int
	Pedestrians  int
	Vehicles     int

	// Рассчитанный приоритет обновления (выше = важнее)
	Priority int
}

// center returns the region's midpoint in world space.
func (r *Region) center() mgl32.Vec3 {
	return mgl32.Vec3{(float32(r.X) + 0.5) * RegionSize, (float32(r.Y) + 0.5) * RegionSize, 0}
}

// pedestrianTarget is how many ambient pedestrians the region should hold.
func (r *Region) pedestrianTarget() int {
	return int(math.Round(r.Zone.Weight() * r.Density * 4))
}

// TrafficSystem populates the area around the focus with ambient
// pedestrians and parked cars, prioritising busy regions near the player.
type TrafficSystem struct {
	deps         Dependencies
	density      *noisegeneration.DensityMap
	rng          *rand.Rand
	regions      map[string]*Region
	models       []string
	updateTicker int64
	centerKey    string
}

// NewTrafficSystem создает систему трафика
func NewTrafficSystem(seed int64) *TrafficSystem {
	return &TrafficSystem{
		density: noisegeneration.NewDensityMap(seed),
		rng:     rand.New(rand.NewSource(seed)),
		regions: make(map[string]*Region),
	}
}

func (t *TrafficSystem) Name() string { return "traffic" }

func (t *TrafficSystem) Init(deps Dependencies) error {
	if deps.World == nil {
		return fmt.Errorf("traffic system needs a world")
	}
	t.deps = deps
	for _, v := range deps.World.Catalog.Vehicles {
		if v.Type == data.VehicleCar {
			t.models = append(t.models, v.Model)
		}
	}
	t.refresh()
	return nil
}

// Regions returns the current grid, highest priority first.
func (t *TrafficSystem) Regions() []*Region {
	out := make([]*Region, 0, len(t.regions))
	for _, r := range t.regions {
		out = append(out, r)
	}
	sortRegionsByPriority(out)
	return out
}

// DensityMap exposes the noise field used for population.
func (t *TrafficSystem) DensityMap() *noisegeneration.DensityMap {
	return t.density
}

func (t *TrafficSystem) Tick(ctx context.Context, dt time.Duration) error {
	// Без игрока трафик не нужен
	if t.deps.World.Player() == nil {
		return nil
	}
	t.updateTicker++

	// Различные интервалы обновления для разных категорий приоритета
	updateHigh := t.updateTicker%4 == 0
	updateMedium := t.updateTicker%10 == 0
	updateLow := t.updateTicker%40 == 0

	focus := t.focus()
	t.deps.World.CleanupAmbient(focus, CleanupRadius)

	// Сетку пересобираем при смене центрального региона, приоритеты раз в 20 шагов
	if regionKeyFor(focus) != t.centerKey || t.updateTicker%20 == 0 {
		t.refresh()
	}

	for _, region := range t.selectRegions(updateHigh, updateMedium, updateLow) {
		t.populate(region)
	}

	if updateLow {
		t.deps.World.WanderAmbient(t.rng, wanderRadius)
	}
	return nil
}

func (t *TrafficSystem) focus() mgl32.Vec3 {
	if t.deps.Focus == nil {
		return mgl32.Vec3{}
	}
	return t.deps.Focus()
}

// refresh rebuilds the grid around the focus and recomputes priorities.
func (t *TrafficSystem) refresh() {
	focus := t.focus()
	cx := int(math.Floor(float64(focus.X()) / RegionSize))
	cy := int(math.Floor(float64(focus.Y()) / RegionSize))
	t.centerKey = getRegionKey(cx, cy)

	regions := make(map[string]*Region, (2*PopulationRadius+1)*(2*PopulationRadius+1))
	for x := cx - PopulationRadius; x <= cx+PopulationRadius; x++ {
		for y := cy - PopulationRadius; y <= cy+PopulationRadius; y++ {
			key := getRegionKey(x, y)
			region, ok := t.regions[key]
			if !ok {
				region = &Region{X: x, Y: y}
				c := region.center()
				region.Density = t.density.Pedestrians(float64(c.X()), float64(c.Y()))
				region.CarDensity = t.density.Vehicles(float64(c.X()), float64(c.Y()))
				region.Zone = noisegeneration.ZoneFor(region.Density)
			}
			regions[key] = region
		}
	}
	t.regions = regions
	t.updateAllRegionsPriorities()
}

// updateAllRegionsPriorities рассчитывает приоритеты всех регионов
func (t *TrafficSystem) updateAllRegionsPriorities() {
	for _, region := range t.regions {
		region.PlayersCount = 0
		region.Pedestrians = 0
		region.Vehicles = 0
	}

	w := t.deps.World
	player := w.Player()
	for _, obj := range w.Objects.All() {
		region, ok := t.regions[regionKeyFor(obj.Position())]
		if !ok {
			continue
		}
		if player != nil && obj.ID() == player.ID() {
			region.PlayersCount++
			continue
		}
		if !w.IsAmbient(obj.ID()) {
			continue
		}
		switch obj.Kind() {
		case objectmanager.KindCharacter:
			region.Pedestrians++
		case objectmanager.KindVehicle:
			region.Vehicles++
		}
	}

	for _, region := range t.regions {
		region.Priority = region.PlayersCount*PlayerWeight + int(region.Density*DensityWeight)
	}
}

// selectRegions выбирает регионы для обновления на основе приоритета
func (t *TrafficSystem) selectRegions(updateHigh, updateMedium, updateLow bool) []*Region {
	candidates := make([]*Region, 0, len(t.regions))
	for _, region := range t.regions {
		if (region.Priority > 20 && updateHigh) ||
			(region.Priority > 10 && region.Priority <= 20 && updateMedium) ||
			(region.Priority <= 10 && updateLow) {
			candidates = append(candidates, region)
		}
	}
	sortRegionsByPriority(candidates)
	return candidates
}

// populate adds at most one pedestrian and one car to region.
func (t *TrafficSystem) populate(region *Region) {
	w := t.deps.World
	logger := t.deps.Logger

	if region.Pedestrians < region.pedestrianTarget() && w.AmbientCount(objectmanager.KindCharacter) < MaxPedestrians {
		pos := t.randomPoint(region)
		heading := float32(t.rng.Float64() * 2 * math.Pi)
		if _, err := w.SpawnAmbientPedestrian(pos, heading); err != nil {
			logger.Warnf("[Traffic] spawn pedestrian in (%d,%d): %v", region.X, region.Y, err)
		} else {
			region.Pedestrians++
		}
	}

	if len(t.models) == 0 || region.Zone < noisegeneration.ZoneCommercial || region.Vehicles > 0 {
		return
	}
	if w.AmbientCount(objectmanager.KindVehicle) >= MaxVehicles || t.rng.Float64() > region.CarDensity {
		return
	}
	model := t.models[t.rng.Intn(len(t.models))]
	heading := float32(t.rng.Intn(4)) * math.Pi / 2
	if _, err := w.SpawnAmbientVehicle(model, t.randomPoint(region), heading); err != nil {
		logger.Warnf("[Traffic] spawn %s in (%d,%d): %v", model, region.X, region.Y, err)
		return
	}
	region.Vehicles++
}

func (t *TrafficSystem) randomPoint(region *Region) mgl32.Vec3 {
	return mgl32.Vec3{
		(float32(region.X) + t.rng.Float32()) * RegionSize,
		(float32(region.Y) + t.rng.Float32()) * RegionSize,
		0,
	}
}

// sortRegionsByPriority сортирует регионы по приоритету (по убыванию)
func sortRegionsByPriority(regions []*Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Priority != regions[j].Priority {
			return regions[i].Priority > regions[j].Priority
		}
		if regions[i].X != regions[j].X {
			return regions[i].X < regions[j].X
		}
		return regions[i].Y < regions[j].Y
	})
}

// getRegionKey генерирует уникальный ключ для региона
func getRegionKey(regionX, regionY int) string {
	return fmt.Sprintf("r:%d:%d", regionX, regionY)
}

func regionKeyFor(pos mgl32.Vec3) string {
	return getRegionKey(
		int(math.Floor(float64(pos.X())/RegionSize)),
		int(math.Floor(float64(pos.Y())/RegionSize)),
	)
}
