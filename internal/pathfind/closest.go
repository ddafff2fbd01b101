package pathfind

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hexfront/internal/world"
)

// ClosestWalkable returns t itself when it is walkable, otherwise the first
// walkable tile reached by a breadth-first search over neighbours. The result
// has the fewest hops from t, not the shortest straight-line distance.
// It returns false only if every tile reachable from t is water.
func (p *Pathfinder) ClosestWalkable(t *world.Tile) (*world.Tile, bool) {
	if t == nil {
		return nil, false
	}
	if t.Walkable() {
		return t, true
	}

	visited := mapset.New[int]()
	visited.Put(t.Index)
	queue := []*world.Tile{t}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.Walkable() {
			return cur, true
		}
		for _, nb := range p.grid.Neighbors(cur) {
			if visited.Has(nb.Index) {
				continue
			}
			visited.Put(nb.Index)
			queue = append(queue, nb)
		}
	}
	return nil, false
}
