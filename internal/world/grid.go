package world

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidDimensions is returned when a grid cannot be built from the
// requested width, height or tile size.
var ErrInvalidDimensions = errors.New("invalid grid dimensions")

// Grid holds the complete hex lattice. Topology is fixed once built.
type Grid struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	TileSize float64 `json:"tile_size"`

	tiles []*Tile         // iteration order: q outer, r inner
	index map[Coord]*Tile // coordinate lookup
}

// newGrid lays out width*height dirt tiles.
func newGrid(width, height int, size float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("%w: tile size %v", ErrInvalidDimensions, size)
	}

	g := &Grid{
		Width:    width,
		Height:   height,
		TileSize: size,
		tiles:    make([]*Tile, 0, width*height),
		index:    make(map[Coord]*Tile, width*height),
	}
	for q := 0; q < width; q++ {
		for r := 0; r < height; r++ {
			c := Coord{Q: q, R: r}
			t := &Tile{
				Coord:   c,
				Index:   len(g.tiles),
				Center:  project(c, width, height, size),
				Terrain: TerrainDirt,
			}
			g.tiles = append(g.tiles, t)
			g.index[c] = t
		}
	}
	return g, nil
}

// ParseLayout builds a grid from ASCII rows, one string per r. Each rune is
// one tile: '.' dirt, 'f' forest, '~' water. All rows must have equal length.
func ParseLayout(size float64, rows ...string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	width := len(rows[0])
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidDimensions, r, len(row), width)
		}
	}

	g, err := newGrid(width, len(rows), size)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		for q, ch := range row {
			t := g.mustTile(Coord{Q: q, R: r})
			switch ch {
			case '.':
				t.Terrain = TerrainDirt
			case 'f':
				t.Terrain = TerrainForest
			case '~':
				t.Terrain = TerrainWater
			default:
				return nil, fmt.Errorf("parse layout: unknown tile %q at (%d,%d)", ch, q, r)
			}
		}
	}
	return g, nil
}

// Tiles returns all tiles in iteration order. Callers must not modify the slice.
func (g *Grid) Tiles() []*Tile {
	return g.tiles
}

// Len returns the total number of tiles.
func (g *Grid) Len() int {
	return len(g.tiles)
}

// Tile returns the tile at the given coordinate, or nil if out of bounds.
func (g *Grid) Tile(c Coord) *Tile {
	return g.index[c]
}

// TileAt returns the tile at (q, r).
func (g *Grid) TileAt(q, r int) (*Tile, bool) {
	t, ok := g.index[Coord{Q: q, R: r}]
	return t, ok
}

// ByIndex returns the tile with the given dense index, or nil.
func (g *Grid) ByIndex(i int) *Tile {
	if i < 0 || i >= len(g.tiles) {
		return nil
	}
	return g.tiles[i]
}

// InBounds returns true if the coordinate lies on the lattice.
func (g *Grid) InBounds(c Coord) bool {
	return c.Q >= 0 && c.Q < g.Width && c.R >= 0 && c.R < g.Height
}

// mustTile looks up an in-bounds coordinate. A miss means the index and the
// lattice disagree, which is a construction bug.
func (g *Grid) mustTile(c Coord) *Tile {
	t, ok := g.index[c]
	if !ok {
		panic(fmt.Sprintf("world: no tile for in-bounds coordinate %v", c))
	}
	return t
}

// Neighbors returns the existing tiles adjacent to t. Off-grid neighbours are
// omitted, so border tiles have fewer than six.
func (g *Grid) Neighbors(t *Tile) []*Tile {
	result := make([]*Tile, 0, 6)
	for _, c := range t.Coord.Neighbors() {
		if !g.InBounds(c) {
			continue
		}
		result = append(result, g.mustTile(c))
	}
	return result
}

// NearestTile returns the tile whose centre is closest to p. Ties go to the
// tile seen first in iteration order. It never returns nil: when no distance
// compares (p too far out to square, or NaN) the first tile wins.
func (g *Grid) NearestTile(p Point) *Tile {
	best := g.tiles[0]
	bestD := best.Center.DistSq(p)
	for _, t := range g.tiles[1:] {
		d := t.Center.DistSq(p)
		if d < bestD {
			bestD = d
			best = t
		}
	}
	return best
}

// StepDistance is the centre-to-centre distance between adjacent tiles.
func (g *Grid) StepDistance() float64 {
	return g.TileSize * Sqrt3
}

// TerrainCounts returns a summary of terrain type distribution.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range g.tiles {
		counts[t.Terrain]++
	}
	return counts
}

// String renders the grid using the ParseLayout alphabet.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.Height; r++ {
		if r&1 == 1 {
			b.WriteByte(' ')
		}
		for q := 0; q < g.Width; q++ {
			switch g.mustTile(Coord{Q: q, R: r}).Terrain {
			case TerrainForest:
				b.WriteByte('f')
			case TerrainWater:
				b.WriteByte('~')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
