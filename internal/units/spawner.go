// Unit spawning: known units cluster around a reference tile, hidden units
// are scattered away from it.
package units

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/talgya/hexfront/internal/world"
)

// Spawner places units on a grid.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner creates a unit spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng: rand.New(rand.NewSource(seed + 300)),
	}
}

// ReferenceTile returns the walkable tile closest to the world origin, the
// point known units gather around. Ties go to the earlier tile in grid order.
// It returns nil when the grid has no land.
func ReferenceTile(g *world.Grid) *world.Tile {
	var best *world.Tile
	bestD := 0.0
	for _, t := range g.Tiles() {
		if !t.Walkable() {
			continue
		}
		d := t.Center.DistSq(world.Point{})
		if best == nil || d < bestD {
			best = t
			bestD = d
		}
	}
	return best
}

// Spawn creates a unit for every def it can place. Known units take the
// walkable tiles nearest ref in declaration order. Locked units take random
// free walkable tiles farther than minLockedDist from ref. No two units share
// a tile. Defs that found no tile are returned, not treated as errors.
func (s *Spawner) Spawn(defs []Def, g *world.Grid, ref *world.Tile, minLockedDist float64) (placed []*Unit, unplaced []Def) {
	if ref == nil {
		slog.Warn("no reference tile, nothing spawned", "defs", len(defs))
		return nil, append([]Def(nil), defs...)
	}

	var land []*world.Tile
	for _, t := range g.Tiles() {
		if t.Walkable() {
			land = append(land, t)
		}
	}
	sort.SliceStable(land, func(i, j int) bool {
		return land[i].Center.DistSq(ref.Center) < land[j].Center.DistSq(ref.Center)
	})

	taken := make(map[int]bool, len(defs))
	next := 0

	for _, def := range defs {
		if def.ID == "" {
			def.ID = ID(uuid.NewString())
		}

		var tile *world.Tile
		if def.Locked {
			tile = s.pickRemote(land, taken, ref, minLockedDist)
		} else {
			for next < len(land) && taken[land[next].Index] {
				next++
			}
			if next < len(land) {
				tile = land[next]
			}
		}

		if tile == nil {
			slog.Warn("no tile for unit", "id", def.ID, "locked", def.Locked)
			unplaced = append(unplaced, def)
			continue
		}
		taken[tile.Index] = true
		placed = append(placed, newUnit(def, tile))
	}

	slog.Debug("units spawned", "placed", len(placed), "unplaced", len(unplaced), "ref", ref.Coord)
	return placed, unplaced
}

// pickRemote draws a random free land tile farther than minDist from ref.
func (s *Spawner) pickRemote(land []*world.Tile, taken map[int]bool, ref *world.Tile, minDist float64) *world.Tile {
	min2 := minDist * minDist
	var pool []*world.Tile
	for _, t := range land {
		if !taken[t.Index] && t.Center.DistSq(ref.Center) > min2 {
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[s.rng.Intn(len(pool))]
}

func newUnit(def Def, tile *world.Tile) *Unit {
	return &Unit{
		ID:     def.ID,
		Def:    def,
		Pos:    tile.Center,
		State:  StateIdle,
		Locked: def.Locked,
	}
}
