// Package world provides the hex grid, terrain, and spatial data structures.
// Tiles use odd-r offset coordinates (q = column, r = row); odd rows are
// shifted half a tile along x.
package world

import "math"

// Sqrt3 is used by the hex-to-world projection.
const Sqrt3 = 1.7320508075688772

// Coord identifies a tile by its offset coordinates.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainDirt   Terrain = iota // Default ground
	TerrainForest                // Walkable, cosmetic variety
	TerrainWater                 // Impassable
)

// Walkable reports whether units may stand on or path through the terrain.
func (t Terrain) Walkable() bool {
	return t != TerrainWater
}

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainDirt:
		return "dirt"
	case TerrainForest:
		return "forest"
	case TerrainWater:
		return "water"
	}
	return "unknown"
}

// Point is a position on the ground plane in world units.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// DistSq returns the squared distance between two points.
func (p Point) DistSq(o Point) float64 {
	dx := p.X - o.X
	dz := p.Z - o.Z
	return dx*dx + dz*dz
}

// Dist returns the distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Sqrt(p.DistSq(o))
}

// Tile is a single hex cell. Coord, Index and Center never change after the
// grid is built; Terrain changes only while the grid is being generated.
type Tile struct {
	Coord   Coord   `json:"coord"`
	Index   int     `json:"index"`
	Center  Point   `json:"center"`
	Terrain Terrain `json:"terrain"`
}

// Walkable reports whether the tile's terrain can be entered.
func (t *Tile) Walkable() bool {
	return t.Terrain.Walkable()
}

// oddRDirections holds the neighbour offsets for even rows [0] and odd rows [1].
var oddRDirections = [2][6]Coord{
	{
		{Q: 1, R: 0}, {Q: 0, R: -1}, {Q: -1, R: -1},
		{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
	},
	{
		{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
		{Q: -1, R: 0}, {Q: 0, R: 1}, {Q: 1, R: 1},
	},
}

// Neighbors returns the six adjacent coordinates, some of which may be off-grid.
func (c Coord) Neighbors() [6]Coord {
	dirs := oddRDirections[c.R&1]
	var result [6]Coord
	for i, d := range dirs {
		result[i] = Coord{Q: c.Q + d.Q, R: c.R + d.R}
	}
	return result
}

// project converts an offset coordinate to a world-space centre. The lattice is
// centred on the origin using the same offsets the renderer expects.
func project(c Coord, width, height int, size float64) Point {
	cx := size * Sqrt3 * (float64(c.Q) + 0.5*float64(c.R&1))
	cz := size * 1.5 * float64(c.R)
	offsetX := float64(width) * size * Sqrt3 / 2
	offsetZ := float64(height) * size * 1.5 / 2
	return Point{X: cx - offsetX, Z: cz - offsetZ}
}
