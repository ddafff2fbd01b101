package pathfind

import (
	"testing"

	"github.com/talgya/hexfront/internal/world"
)

// anyHops is an unrestricted BFS over every tile, water included.
func anyHops(g *world.Grid, start *world.Tile) map[int]int {
	dist := map[int]int{start.Index: 0}
	queue := []*world.Tile{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(cur) {
			if _, ok := dist[nb.Index]; ok {
				continue
			}
			dist[nb.Index] = dist[cur.Index] + 1
			queue = append(queue, nb)
		}
	}
	return dist
}

func TestClosestWalkable_LandIsIdentity(t *testing.T) {
	g := generated(t, 5)
	pf := New(g)
	for _, tile := range g.Tiles() {
		if !tile.Walkable() {
			continue
		}
		got, ok := pf.ClosestWalkable(tile)
		if !ok || got != tile {
			t.Fatalf("walkable tile %v should resolve to itself", tile.Coord)
		}
	}
}

func TestClosestWalkable_Idempotent(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := generated(t, seed)
		pf := New(g)
		for _, tile := range g.Tiles() {
			first, ok := pf.ClosestWalkable(tile)
			if !ok {
				t.Fatalf("seed %d: no land found from %v", seed, tile.Coord)
			}
			for i := 0; i < 3; i++ {
				again, _ := pf.ClosestWalkable(tile)
				if again != first {
					t.Fatalf("seed %d: call %d returned %v, first was %v", seed, i, again.Coord, first.Coord)
				}
			}
			if resolved, _ := pf.ClosestWalkable(first); resolved != first {
				t.Fatalf("seed %d: resolving the result again moved it", seed)
			}
		}
	}
}

func TestClosestWalkable_MinimumHops(t *testing.T) {
	g := layout(t,
		".......",
		".~~~~~.",
		".~~~~~.",
		".~~~~~.",
		".......",
	)
	pf := New(g)
	lake := g.Tile(world.Coord{Q: 3, R: 2})
	got, ok := pf.ClosestWalkable(lake)
	if !ok {
		t.Fatal("expected land")
	}
	if !got.Walkable() {
		t.Fatalf("resolved tile %v is water", got.Coord)
	}

	hops := anyHops(g, lake)
	best := -1
	for _, tile := range g.Tiles() {
		if tile.Walkable() && (best < 0 || hops[tile.Index] < best) {
			best = hops[tile.Index]
		}
	}
	if hops[got.Index] != best {
		t.Fatalf("resolved tile is %d hops away, nearest land is %d", hops[got.Index], best)
	}
}

func TestClosestWalkable_AllWater(t *testing.T) {
	g := layout(t,
		"~~~",
		"~~~",
	)
	pf := New(g)
	if got, ok := pf.ClosestWalkable(g.ByIndex(0)); ok || got != nil {
		t.Fatal("all-water map should have no walkable tile")
	}
	if _, ok := pf.ClosestWalkable(nil); ok {
		t.Fatal("nil tile should not resolve")
	}
}
