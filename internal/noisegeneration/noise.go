// Package noisegeneration produces smooth Perlin fields used to decide how
// busy each part of the map is.
package noisegeneration

import (
	"math"
	"sync"

	"github.com/aquilax/go-perlin"
)

// CompactNoise stores a noise sample in one byte.
type CompactNoise int8

const (
	// NoiseResolution is the number of distinct compact levels.
	NoiseResolution = 255
	MinNoiseValue   = -1.0
	MaxNoiseValue   = 1.0
)

// FloatToCompact quantises a sample in [-1,1].
func FloatToCompact(value float64) CompactNoise {
	normalized := (value - MinNoiseValue) / (MaxNoiseValue - MinNoiseValue)
	scaled := normalized * NoiseResolution
	return CompactNoise(int8(math.Min(127, math.Max(-127, math.Round(scaled)-128))))
}

// CompactToFloat restores a quantised sample.
func CompactToFloat(value CompactNoise) float64 {
	scaled := float64(int8(value)) + 127.0
	return scaled/NoiseResolution*(MaxNoiseValue-MinNoiseValue) + MinNoiseValue
}

type cacheKey struct {
	x, y    int32
	octaves int
}

// NoiseCache is a bounded LRU of quantised samples keyed by integer cell.
type NoiseCache struct {
	cache     map[cacheKey]CompactNoise
	keys      []cacheKey
	capacity  int
	mu        sync.Mutex
	hitCount  int
	missCount int
}

// NewNoiseCache создает кеш на capacity значений
func NewNoiseCache(capacity int) *NoiseCache {
	return &NoiseCache{
		cache:    make(map[cacheKey]CompactNoise, capacity),
		keys:     make([]cacheKey, 0, capacity),
		capacity: capacity,
	}
}

func keyFor(x, y float64, octaves int) cacheKey {
	return cacheKey{x: int32(math.Floor(x)), y: int32(math.Floor(y)), octaves: octaves}
}

// Get returns the cached sample for the cell containing (x, y).
func (nc *NoiseCache) Get(x, y float64, octaves int) (float64, bool) {
	key := keyFor(x, y, octaves)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	value, ok := nc.cache[key]
	if !ok {
		nc.missCount++
		return 0, false
	}
	nc.hitCount++
	nc.moveKeyToEnd(key)
	return CompactToFloat(value), true
}

// Put stores a sample, evicting the least recently used one when full.
func (nc *NoiseCache) Put(x, y float64, octaves int, value float64) {
	key := keyFor(x, y, octaves)
	compact := FloatToCompact(value)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	if _, ok := nc.cache[key]; ok {
		nc.cache[key] = compact
		nc.moveKeyToEnd(key)
		return
	}
	if len(nc.cache) >= nc.capacity && len(nc.keys) > 0 {
		delete(nc.cache, nc.keys[0])
		nc.keys = nc.keys[1:]
	}
	nc.cache[key] = compact
	nc.keys = append(nc.keys, key)
}

func (nc *NoiseCache) moveKeyToEnd(key cacheKey) {
	for i, k := range nc.keys {
		if k == key {
			nc.keys = append(nc.keys[:i], nc.keys[i+1:]...)
			nc.keys = append(nc.keys, key)
			return
		}
	}
}

// Len returns the number of cached samples.
func (nc *NoiseCache) Len() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return len(nc.cache)
}

// GetStats returns hits, misses and the hit rate.
func (nc *NoiseCache) GetStats() (int, int, float64) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	total := nc.hitCount + nc.missCount
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(nc.hitCount) / float64(total)
	}
	return nc.hitCount, nc.missCount, hitRate
}

// ClearCache drops every sample.
func (nc *NoiseCache) ClearCache() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.cache = make(map[cacheKey]CompactNoise, nc.capacity)
	nc.keys = make([]cacheKey, 0, nc.capacity)
}

// NoiseMap is a seeded, scaled Perlin field sampled per world unit.
type NoiseMap struct {
	perlin      *perlin.Perlin
	scale       float64
	persistence float64
	lacunarity  float64
	cache       *NoiseCache
}

// NewNoiseMap creates a field. Smaller scales give smoother fields.
func NewNoiseMap(seed int64, scale float64) *NoiseMap {
	// alpha и beta как у perlin по умолчанию, три октавы
	return &NoiseMap{
		perlin:      perlin.NewPerlin(2.0, 2.0, 3, seed),
		scale:       scale,
		persistence: 0.5,
		lacunarity:  2.0,
		cache:       NewNoiseCache(10000),
	}
}

// Octave2D returns the summed octaves at (x, y) in [-1,1].
func (nm *NoiseMap) Octave2D(x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	if value, ok := nm.cache.Get(x, y, octaves); ok {
		return value
	}

	sx, sy := math.Floor(x)*nm.scale, math.Floor(y)*nm.scale
	amplitude, frequency := 1.0, 1.0
	total, maxValue := 0.0, 0.0
	for i := 0; i < octaves; i++ {
		total += nm.perlin.Noise2D(sx*frequency, sy*frequency) * amplitude
		maxValue += amplitude
		amplitude *= nm.persistence
		frequency *= nm.lacunarity
	}
	value := math.Max(MinNoiseValue, math.Min(MaxNoiseValue, total/maxValue))

	nm.cache.Put(x, y, octaves, value)
	// Return what later lookups will see.
	return CompactToFloat(FloatToCompact(value))
}

// Normalized2D maps Octave2D to [0,1].
func (nm *NoiseMap) Normalized2D(x, y float64, octaves int) float64 {
	return (nm.Octave2D(x, y, octaves) - MinNoiseValue) / (MaxNoiseValue - MinNoiseValue)
}

// Cache exposes the sample cache for statistics.
func (nm *NoiseMap) Cache() *NoiseCache {
	return nm.cache
}
