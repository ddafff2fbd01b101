// World generation: weighted terrain draw followed by water-body carving.
package world

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexfront/internal/entropy"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width    int     // Tiles per row
	Height   int     // Rows
	TileSize float64 // Hex radius in world units
	Seed     int64   // Random seed (0 = random)

	ForestChance float64 // Share of non-water tiles drawn as forest
	ForestNoise  bool    // Clump forests with simplex noise instead of a flat draw
	NoiseScale   float64 // Noise frequency in world units when ForestNoise is set

	WaterBodiesMin int     // Inclusive
	WaterBodiesMax int     // Inclusive
	WaterRadiusMin float64 // World units
	WaterRadiusMax float64 // World units
	FringeWidth    float64 // Band outside the radius that may also flood
	FringeChance   float64 // Probability a fringe tile floods
}

// DefaultGenConfig returns the standard 15x15 battlefield.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:          15,
		Height:         15,
		TileSize:       1.0,
		Seed:           0,
		ForestChance:   0.3,
		NoiseScale:     0.35,
		WaterBodiesMin: 2,
		WaterBodiesMax: 4,
		WaterRadiusMin: 1.0,
		WaterRadiusMax: 3.5,
		FringeWidth:    1.0,
		FringeChance:   0.5,
	}
}

// LandOnlyConfig returns a fixed-seed config with no water bodies, useful for
// scripted scenarios where every route must exist.
func LandOnlyConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Seed = 42
	cfg.WaterBodiesMin = 0
	cfg.WaterBodiesMax = 0
	return cfg
}

// Validate checks the configuration for values generation cannot honour.
func (cfg GenConfig) Validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.TileSize <= 0 {
		return fmt.Errorf("%w: %dx%d size %v", ErrInvalidDimensions, cfg.Width, cfg.Height, cfg.TileSize)
	}
	if cfg.ForestChance < 0 || cfg.ForestChance > 1 {
		return fmt.Errorf("forest chance %v out of [0,1]", cfg.ForestChance)
	}
	if cfg.WaterBodiesMin < 0 || cfg.WaterBodiesMax < cfg.WaterBodiesMin {
		return fmt.Errorf("water bodies range %d..%d invalid", cfg.WaterBodiesMin, cfg.WaterBodiesMax)
	}
	if cfg.WaterRadiusMin < 0 || cfg.WaterRadiusMax < cfg.WaterRadiusMin {
		return fmt.Errorf("water radius range %v..%v invalid", cfg.WaterRadiusMin, cfg.WaterRadiusMax)
	}
	if cfg.FringeChance < 0 || cfg.FringeChance > 1 {
		return fmt.Errorf("fringe chance %v out of [0,1]", cfg.FringeChance)
	}
	return nil
}

// Generate creates a grid with terrain. A zero seed draws a fresh one.
func Generate(cfg GenConfig) (*Grid, error) {
	seed, err := entropy.Resolve(cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	cfg.Seed = seed
	return GenerateFrom(cfg, rand.New(rand.NewSource(seed)))
}

// GenerateFrom creates a grid drawing every random decision from rng.
func GenerateFrom(cfg GenConfig, rng *rand.Rand) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	g, err := newGrid(cfg.Width, cfg.Height, cfg.TileSize)
	if err != nil {
		return nil, err
	}

	// Base biome: dirt with a forest minority.
	var noise opensimplex.Noise
	if cfg.ForestNoise {
		noise = opensimplex.NewNormalized(rng.Int63())
	}
	for _, t := range g.tiles {
		chance := cfg.ForestChance
		if noise != nil {
			n := octaveNoise(noise, t.Center.X, t.Center.Z, 3, cfg.NoiseScale, 0.5)
			chance = clamp01(cfg.ForestChance * 2 * n)
		}
		if rng.Float64() < chance {
			t.Terrain = TerrainForest
		}
	}

	// Water bodies.
	bodies := cfg.WaterBodiesMin
	if span := cfg.WaterBodiesMax - cfg.WaterBodiesMin; span > 0 {
		bodies += rng.Intn(span + 1)
	}
	for i := 0; i < bodies; i++ {
		center := g.tiles[rng.Intn(len(g.tiles))]
		radius := cfg.WaterRadiusMin + rng.Float64()*(cfg.WaterRadiusMax-cfg.WaterRadiusMin)
		carveWater(g, center.Center, radius, cfg.FringeWidth, cfg.FringeChance, rng)
	}

	return g, nil
}

// carveWater floods every tile within radius of c, plus a ragged fringe band.
// The scan covers the whole lattice so bodies near the border are clipped, not
// rejected.
func carveWater(g *Grid, c Point, radius, fringe, fringeChance float64, rng *rand.Rand) {
	for _, t := range g.tiles {
		d := t.Center.Dist(c)
		if d < radius {
			t.Terrain = TerrainWater
		} else if d < radius+fringe && rng.Float64() < fringeChance {
			t.Terrain = TerrainWater
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

	return total / maxVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
