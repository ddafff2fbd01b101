package world

import (
	"errors"
	"math"
	"testing"
)

func mustLayout(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g, err := ParseLayout(1.0, rows...)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	return g
}

func openGrid(t *testing.T, w, h int) *Grid {
	t.Helper()
	g, err := newGrid(w, h, 1.0)
	if err != nil {
		t.Fatalf("newGrid: %v", err)
	}
	return g
}

func TestGrid_TileCountAndIndex(t *testing.T) {
	g := openGrid(t, 15, 15)
	if g.Len() != 225 {
		t.Fatalf("expected 225 tiles, got %d", g.Len())
	}
	seen := make(map[Coord]bool)
	for i, tile := range g.Tiles() {
		if tile.Index != i {
			t.Fatalf("tile %v has index %d, want %d", tile.Coord, tile.Index, i)
		}
		if g.ByIndex(i) != tile {
			t.Fatalf("ByIndex(%d) mismatch", i)
		}
		if g.Tile(tile.Coord) != tile {
			t.Fatalf("Tile(%v) mismatch", tile.Coord)
		}
		if seen[tile.Coord] {
			t.Fatalf("duplicate coordinate %v", tile.Coord)
		}
		seen[tile.Coord] = true
	}
}

func TestGrid_IterationOrderColumnMajor(t *testing.T) {
	g := openGrid(t, 4, 3)
	// q outer, r inner: index = q*height + r.
	tile, ok := g.TileAt(2, 1)
	if !ok {
		t.Fatal("expected tile (2,1)")
	}
	if tile.Index != 2*3+1 {
		t.Fatalf("expected index 7, got %d", tile.Index)
	}
}

func TestGrid_TileAtOutOfRange(t *testing.T) {
	g := openGrid(t, 5, 5)
	for _, c := range []Coord{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if _, ok := g.TileAt(c.Q, c.R); ok {
			t.Fatalf("expected no tile at %v", c)
		}
		if g.Tile(c) != nil {
			t.Fatalf("expected nil tile at %v", c)
		}
	}
	if g.ByIndex(-1) != nil || g.ByIndex(25) != nil {
		t.Fatal("ByIndex out of range should return nil")
	}
}

func coordsOf(tiles []*Tile) map[Coord]bool {
	out := make(map[Coord]bool, len(tiles))
	for _, t := range tiles {
		out[t.Coord] = true
	}
	return out
}

func TestNeighbors_ParityTables(t *testing.T) {
	g := openGrid(t, 10, 10)
	tests := []struct {
		name   string
		center Coord
		want   []Coord
	}{
		{
			name:   "even row",
			center: Coord{Q: 5, R: 4},
			want:   []Coord{{6, 4}, {5, 3}, {4, 3}, {4, 4}, {4, 5}, {5, 5}},
		},
		{
			name:   "odd row",
			center: Coord{Q: 5, R: 5},
			want:   []Coord{{6, 5}, {6, 4}, {5, 4}, {4, 5}, {5, 6}, {6, 6}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coordsOf(g.Neighbors(g.Tile(tt.center)))
			if len(got) != 6 {
				t.Fatalf("expected 6 neighbours, got %d", len(got))
			}
			for _, c := range tt.want {
				if !got[c] {
					t.Fatalf("missing neighbour %v of %v", c, tt.center)
				}
			}
		})
	}
}

func TestNeighbors_CornerOmitsOffGrid(t *testing.T) {
	g := openGrid(t, 5, 5)
	n := g.Neighbors(g.Tile(Coord{0, 0}))
	if len(n) != 2 {
		t.Fatalf("corner (0,0) should have 2 neighbours, got %d", len(n))
	}
	for _, tile := range n {
		if tile == nil {
			t.Fatal("neighbour list must not contain nil")
		}
	}
}

func TestNeighbors_SymmetricAndOneStepApart(t *testing.T) {
	g := openGrid(t, 9, 8)
	step := g.StepDistance()
	for _, a := range g.Tiles() {
		for _, b := range g.Neighbors(a) {
			if d := a.Center.Dist(b.Center); math.Abs(d-step) > 1e-9 {
				t.Fatalf("%v -> %v distance %.6f, want %.6f", a.Coord, b.Coord, d, step)
			}
			if !coordsOf(g.Neighbors(b))[a.Coord] {
				t.Fatalf("neighbour relation not symmetric: %v -> %v", a.Coord, b.Coord)
			}
		}
	}
}

func TestNearestTile_ReturnsOwnCenter(t *testing.T) {
	g := openGrid(t, 7, 7)
	for _, tile := range g.Tiles() {
		p := Point{X: tile.Center.X + 0.1, Z: tile.Center.Z - 0.1}
		if got := g.NearestTile(p); got != tile {
			t.Fatalf("NearestTile near %v returned %v", tile.Coord, got.Coord)
		}
	}
}

func TestNearestTile_NeverNil(t *testing.T) {
	g := openGrid(t, 5, 5)
	for _, p := range []Point{
		{X: 1e200},
		{X: -1e200, Z: 1e200},
		{X: math.Inf(1)},
		{X: math.NaN(), Z: 0},
	} {
		if g.NearestTile(p) == nil {
			t.Fatalf("NearestTile(%v) returned nil", p)
		}
	}
}

func TestProjection_CentredOnOrigin(t *testing.T) {
	g := openGrid(t, 15, 15)
	var sx, sz float64
	for _, tile := range g.Tiles() {
		sx += tile.Center.X
		sz += tile.Center.Z
	}
	n := float64(g.Len())
	// Centering offsets are not exact midpoints, so allow a tile of slack.
	if math.Abs(sx/n) > g.StepDistance() || math.Abs(sz/n) > g.StepDistance() {
		t.Fatalf("lattice centroid (%.2f, %.2f) too far from origin", sx/n, sz/n)
	}
}

func TestParseLayout(t *testing.T) {
	g := mustLayout(t,
		".f~",
		"~..",
	)
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("expected 3x2, got %dx%d", g.Width, g.Height)
	}
	if g.Tile(Coord{1, 0}).Terrain != TerrainForest {
		t.Fatal("(1,0) should be forest")
	}
	if g.Tile(Coord{2, 0}).Terrain != TerrainWater || g.Tile(Coord{0, 1}).Terrain != TerrainWater {
		t.Fatal("water tiles not parsed")
	}
	if g.Tile(Coord{0, 0}).Walkable() != true {
		t.Fatal("dirt should be walkable")
	}
}

func TestParseLayout_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		dims bool
	}{
		{name: "no rows", rows: nil, dims: true},
		{name: "ragged", rows: []string{"...", ".."}, dims: true},
		{name: "unknown rune", rows: []string{".x."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout(1.0, tt.rows...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.dims && !errors.Is(err, ErrInvalidDimensions) {
				t.Fatalf("expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestTerrainName(t *testing.T) {
	if TerrainName(TerrainWater) != "water" || TerrainName(Terrain(99)) != "unknown" {
		t.Fatal("unexpected terrain names")
	}
	if TerrainWater.Walkable() || !TerrainForest.Walkable() {
		t.Fatal("only water should be impassable")
	}
}
