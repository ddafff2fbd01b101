package world

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerate_DeterministicForSeed(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("same seed produced different maps:\n%s\nvs\n%s", a, b)
	}
}

func TestGenerate_TileCountMatchesConfig(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 3
	cfg.Width, cfg.Height = 12, 9
	g, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	total := 0
	for _, c := range g.TerrainCounts() {
		total += c
	}
	if total != 12*9 || g.Len() != 12*9 {
		t.Fatalf("expected %d tiles, got %d (counted %d)", 12*9, g.Len(), total)
	}
}

func TestGenerate_CarvesWater(t *testing.T) {
	cfg := DefaultGenConfig()
	for seed := int64(1); seed <= 20; seed++ {
		cfg.Seed = seed
		g, err := Generate(cfg)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		// Every body floods at least its centre tile (distance 0 < radius).
		if g.TerrainCounts()[TerrainWater] == 0 {
			t.Fatalf("seed %d: expected water tiles", seed)
		}
	}
}

func TestGenerate_LandOnly(t *testing.T) {
	g, err := Generate(LandOnlyConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := g.TerrainCounts()[TerrainWater]; n != 0 {
		t.Fatalf("expected no water, got %d tiles", n)
	}
}

func TestGenerate_ForestChanceExtremes(t *testing.T) {
	cfg := LandOnlyConfig()
	cfg.ForestChance = 0
	g, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.TerrainCounts()[TerrainForest] != 0 {
		t.Fatal("forest chance 0 should produce no forest")
	}

	cfg.ForestChance = 1
	g, err = Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.TerrainCounts()[TerrainForest] != g.Len() {
		t.Fatal("forest chance 1 should cover every land tile")
	}
}

func TestGenerate_ForestNoise(t *testing.T) {
	cfg := LandOnlyConfig()
	cfg.ForestNoise = true
	cfg.Width, cfg.Height = 30, 30
	a, err := GenerateFrom(cfg, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("GenerateFrom: %v", err)
	}
	b, err := GenerateFrom(cfg, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("GenerateFrom: %v", err)
	}
	if a.String() != b.String() {
		t.Fatal("noise-shaped forests should be deterministic for a fixed source")
	}
	forest := a.TerrainCounts()[TerrainForest]
	if forest == 0 || forest == a.Len() {
		t.Fatalf("expected a forest minority, got %d of %d", forest, a.Len())
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenConfig)
		dims   bool
	}{
		{name: "zero width", mutate: func(c *GenConfig) { c.Width = 0 }, dims: true},
		{name: "negative tile size", mutate: func(c *GenConfig) { c.TileSize = -1 }, dims: true},
		{name: "forest chance", mutate: func(c *GenConfig) { c.ForestChance = 1.5 }},
		{name: "water range", mutate: func(c *GenConfig) { c.WaterBodiesMin, c.WaterBodiesMax = 4, 2 }},
		{name: "radius range", mutate: func(c *GenConfig) { c.WaterRadiusMin, c.WaterRadiusMax = 3, 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGenConfig()
			cfg.Seed = 1
			tt.mutate(&cfg)
			_, err := Generate(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.dims && !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestCarveWater_ClipsAtBorder(t *testing.T) {
	g := openGrid(t, 6, 6)
	corner := g.Tile(Coord{0, 0})
	carveWater(g, corner.Center, 1.8, 0, 0, rand.New(rand.NewSource(1)))
	if corner.Terrain != TerrainWater {
		t.Fatal("corner centre should flood")
	}
	for _, n := range g.Neighbors(corner) {
		if n.Terrain != TerrainWater {
			t.Fatalf("neighbour %v within radius should flood", n.Coord)
		}
	}
}
