package noisegeneration

// ZoneType classifies how busy a location is.
type ZoneType int

const (
	ZoneEmpty ZoneType = iota
	ZoneSuburb
	ZoneCommercial
	ZoneDowntown
)

func (z ZoneType) String() string {
	switch z {
	case ZoneSuburb:
		return "suburb"
	case ZoneCommercial:
		return "commercial"
	case ZoneDowntown:
		return "downtown"
	default:
		return "empty"
	}
}

// Weight scales how strongly a zone attracts ambient population.
func (z ZoneType) Weight() float64 {
	switch z {
	case ZoneSuburb:
		return 0.75
	case ZoneCommercial:
		return 1
	case ZoneDowntown:
		return 1.5
	default:
		return 0.25
	}
}

// DensityMap combines two fields: how many pedestrians and how many parked
// vehicles a location attracts.
type DensityMap struct {
	pedestrians *NoiseMap
	vehicles    *NoiseMap
}

// NewDensityMap creates the density fields for seed.
func NewDensityMap(seed int64) *DensityMap {
	return &DensityMap{
		pedestrians: NewNoiseMap(seed, 0.01),
		vehicles:    NewNoiseMap(seed+1, 0.02),
	}
}

// Pedestrians returns the pedestrian density at (x, y) in [0,1].
func (d *DensityMap) Pedestrians(x, y float64) float64 {
	return d.pedestrians.Normalized2D(x, y, 3)
}

// Vehicles returns the parked vehicle density at (x, y) in [0,1].
func (d *DensityMap) Vehicles(x, y float64) float64 {
	return d.vehicles.Normalized2D(x, y, 2)
}

// Zone classifies (x, y).
func (d *DensityMap) Zone(x, y float64) ZoneType {
	return ZoneFor(d.Pedestrians(x, y))
}

// ZoneFor maps a pedestrian density to a zone.
func ZoneFor(density float64) ZoneType {
	switch {
	case density < 0.35:
		return ZoneEmpty
	case density < 0.5:
		return ZoneSuburb
	case density < 0.65:
		return ZoneCommercial
	default:
		return ZoneDowntown
	}
}

// CacheStats reports both fields' cache usage.
func (d *DensityMap) CacheStats() map[string]any {
	stats := make(map[string]any, 2)
	for name, m := range map[string]*NoiseMap{"pedestrians": d.pedestrians, "vehicles": d.vehicles} {
		hits, misses, rate := m.cache.GetStats()
		stats[name] = map[string]any{
			"hits":     hits,
			"misses":   misses,
			"hit_rate": rate,
			"size":     m.cache.Len(),
		}
	}
	return stats
}
