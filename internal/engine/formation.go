package engine

import (
	"sort"

	"github.com/talgya/hexfront/internal/world"
)

// FormationSlots returns up to n walkable tiles nearest target by squared
// centre distance, target first if it is walkable. Equal distances keep grid
// order, so the result is deterministic.
func FormationSlots(g *world.Grid, target *world.Tile, n int) []*world.Tile {
	if target == nil || n <= 0 {
		return nil
	}
	var land []*world.Tile
	for _, t := range g.Tiles() {
		if t.Walkable() {
			land = append(land, t)
		}
	}
	sort.SliceStable(land, func(i, j int) bool {
		return land[i].Center.DistSq(target.Center) < land[j].Center.DistSq(target.Center)
	})
	if len(land) > n {
		land = land[:n]
	}
	return land
}
