// Battlefield generation using layered simplex noise.
// Generates elevation and moisture fields, then derives terrain.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds battlefield generation parameters.
type GenConfig struct {
	Radius         int     // Hex disc radius of the battlefield
	Seed           int64   // Random seed (0 = random, recorded in Map.Seed)
	WaterLevel     float64 // Elevation below which tiles are water (0.0–1.0)
	HillLevel      float64 // Elevation above which tiles are hills
	MountainLevel  float64 // Elevation above which tiles are mountains
	ForestMoisture float64 // Moisture above which lowland becomes forest
	DeployRadius   int     // Radius kept clear around each deployment anchor
}

// DefaultGenConfig returns a reasonable skirmish-sized battlefield.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:         10,
		Seed:           0,
		WaterLevel:     0.22,
		HillLevel:      0.62,
		MountainLevel:  0.78,
		ForestMoisture: 0.6,
		DeployRadius:   2,
	}
}

// SmallTestConfig returns a tiny battlefield for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:         4,
		Seed:           42,
		WaterLevel:     0.2,
		HillLevel:      0.65,
		MountainLevel:  0.8,
		ForestMoisture: 0.65,
		DeployRadius:   1,
	}
}

// DeploymentAnchors returns the west and east spawn centers for a radius.
func DeploymentAnchors(radius int) [2]HexCoord {
	edge := max(radius-1, 0)
	return [2]HexCoord{{Q: -edge, R: 0}, {Q: edge, R: 0}}
}

// Generate creates a complete battlefield map with terrain.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	for seed == 0 {
		seed = rand.Int63()
	}

	// Independent layers for height and wetness.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)
	m.Seed = seed
	layout := DefaultLayout()

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		r1 := max(-cfg.Radius, -q-cfg.Radius)
		r2 := min(cfg.Radius, -q+cfg.Radius)
		for r := r1; r <= r2; r++ {
			coord := HexCoord{Q: q, R: r}

			// Sample noise in world space so features are isotropic.
			p := layout.ToWorld(coord)
			elev := octaveNoise(elevNoise, p.X, p.Y, 4, 0.12, 0.5)
			moist := octaveNoise(moistNoise, p.X, p.Y, 3, 0.09, 0.5)

			m.Set(&Tile{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, moist, cfg),
				Elevation: elev,
				Moisture:  moist,
			})
		}
	}

	clearDeployZones(m, cfg)

	return m
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLevel:
		return TerrainWater
	case elev > cfg.MountainLevel:
		return TerrainMountain
	case elev > cfg.HillLevel:
		return TerrainHills
	case moist > cfg.ForestMoisture:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// clearDeployZones flattens the tiles around both deployment anchors so
// each side always has free ground to spawn on.
func clearDeployZones(m *Map, cfg GenConfig) {
	for _, anchor := range DeploymentAnchors(cfg.Radius) {
		for coord, tile := range m.Tiles {
			if Distance(coord, anchor) > cfg.DeployRadius {
				continue
			}
			if tile.Terrain == TerrainWater || tile.Terrain.Blocked() {
				tile.Terrain = TerrainPlains
			}
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return math.Max(0, math.Min(1, total/maxVal))
}
