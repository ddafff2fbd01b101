// Package pathfind computes walkable routes across the hex grid.
package pathfind

import (
	"container/heap"
	"log/slog"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hexfront/internal/world"
)

// DefaultMaxIterations bounds A* expansions per query.
const DefaultMaxIterations = 1000

// Outcome classifies a route query.
type Outcome uint8

const (
	OutcomeFound        Outcome = iota // Path holds at least one waypoint
	OutcomeAlreadyThere                // start == end
	OutcomeNoRoute                     // target is water or unreachable
	OutcomeMissingTile                 // start or end is nil
	OutcomeIterationCap                // gave up after MaxIterations expansions
)

// String returns a log-friendly outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAlreadyThere:
		return "already_there"
	case OutcomeNoRoute:
		return "no_route"
	case OutcomeMissingTile:
		return "missing_tile"
	case OutcomeIterationCap:
		return "iteration_cap"
	}
	return "unknown"
}

// Result is the outcome of a route query. Path excludes the start tile and
// includes the end tile; it is empty for every outcome except OutcomeFound.
type Result struct {
	Path     []*world.Tile
	Outcome  Outcome
	Expanded int // nodes popped from the open list
}

// Pathfinder runs queries against one grid.
type Pathfinder struct {
	grid          *world.Grid
	MaxIterations int
}

// New creates a pathfinder with the default iteration cap.
func New(g *world.Grid) *Pathfinder {
	return &Pathfinder{grid: g, MaxIterations: DefaultMaxIterations}
}

// Grid returns the grid the pathfinder searches.
func (p *Pathfinder) Grid() *world.Grid {
	return p.grid
}

// FindPath returns the waypoints from start to end, or an empty slice when
// there is nothing to walk. Use Route to tell the empty cases apart.
func (p *Pathfinder) FindPath(start, end *world.Tile) []*world.Tile {
	return p.Route(start, end).Path
}

// Route runs A* from start to end. Edges cost 1 and water is never expanded.
// The heuristic is the straight-line distance measured in tile steps, which
// never exceeds the remaining hop count.
func (p *Pathfinder) Route(start, end *world.Tile) Result {
	if start == nil || end == nil {
		return Result{Outcome: OutcomeMissingTile}
	}
	if start == end {
		return Result{Outcome: OutcomeAlreadyThere}
	}
	if !end.Walkable() {
		return Result{Outcome: OutcomeNoRoute}
	}

	n := p.grid.Len()
	step := p.grid.StepDistance()
	heuristic := func(t *world.Tile) float64 {
		return t.Center.Dist(end.Center) / step
	}

	gScore := make([]float64, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	cameFrom := make([]int, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	closed := mapset.New[int]()

	var seq uint64
	ol := &openList{}
	gScore[start.Index] = 0
	heap.Push(ol, &pathNode{tile: start, f: heuristic(start), seq: seq})

	limit := p.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}

	expanded := 0
	for ol.Len() > 0 {
		if expanded >= limit {
			slog.Warn("pathfinding aborted: iteration cap reached",
				"from", start.Coord, "to", end.Coord, "cap", limit)
			return Result{Outcome: OutcomeIterationCap, Expanded: expanded}
		}

		cur := heap.Pop(ol).(*pathNode)
		if closed.Has(cur.tile.Index) {
			continue
		}
		expanded++

		if cur.tile == end {
			return Result{
				Path:     p.reconstruct(cameFrom, end.Index),
				Outcome:  OutcomeFound,
				Expanded: expanded,
			}
		}
		closed.Put(cur.tile.Index)

		for _, nb := range p.grid.Neighbors(cur.tile) {
			if !nb.Walkable() || closed.Has(nb.Index) {
				continue
			}
			tentative := gScore[cur.tile.Index] + 1
			if tentative >= gScore[nb.Index] {
				continue
			}
			gScore[nb.Index] = tentative
			cameFrom[nb.Index] = cur.tile.Index
			seq++
			heap.Push(ol, &pathNode{tile: nb, f: tentative + heuristic(nb), seq: seq})
		}
	}

	slog.Debug("pathfinding failed: open set exhausted",
		"from", start.Coord, "to", end.Coord, "expanded", expanded)
	return Result{Outcome: OutcomeNoRoute, Expanded: expanded}
}

// reconstruct walks cameFrom back from end and drops the start tile.
func (p *Pathfinder) reconstruct(cameFrom []int, end int) []*world.Tile {
	var rev []*world.Tile
	for i := end; cameFrom[i] != -1; i = cameFrom[i] {
		rev = append(rev, p.grid.ByIndex(i))
	}
	path := make([]*world.Tile, len(rev))
	for i, t := range rev {
		path[len(rev)-1-i] = t
	}
	return path
}

// --- open list ---

type pathNode struct {
	tile  *world.Tile
	f     float64
	seq   uint64 // insertion order, breaks f ties
	index int    // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int) {
	ol[i], ol[j] = ol[j], ol[i]
	ol[i].index = i
	ol[j].index = j
}
func (ol *openList) Push(x any) {
	n := x.(*pathNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}
func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}
