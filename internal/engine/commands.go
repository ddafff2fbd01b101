package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexfront/internal/pathfind"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Assignment records where a move command sent one unit.
type Assignment struct {
	UnitID  units.ID         `json:"unit_id"`
	Goal    world.Coord      `json:"goal"`
	Steps   int              `json:"steps"`
	Outcome pathfind.Outcome `json:"-"`
	Result  string           `json:"result"`
}

// IssueGroupMove sends the selected units toward target. Hidden and unknown
// ids are ignored. A water target is replaced by the nearest land by hop
// count; if there is none the command does nothing. A single unit walks to
// the target itself. A group scatters over the walkable tiles nearest the
// target, one tile per unit in selection order; units left over when land
// runs out head for the target.
func (s *Simulation) IssueGroupMove(selection []units.ID, target *world.Tile) []Assignment {
	ids := s.filterSelection(selection)
	if len(ids) == 0 || target == nil {
		slog.Debug("move ignored", "requested", len(selection), "movable", len(ids))
		return nil
	}

	if !target.Walkable() {
		land, ok := s.Paths.ClosestWalkable(target)
		if !ok {
			slog.Debug("move ignored: no land near target", "target", target.Coord)
			return nil
		}
		slog.Debug("water target moved to land", "from", target.Coord, "to", land.Coord)
		target = land
	}

	assignments := make([]Assignment, 0, len(ids))
	if len(ids) == 1 {
		assignments = append(assignments, s.moveUnit(s.UnitIndex[ids[0]], target))
	} else {
		slots := FormationSlots(s.Grid, target, len(ids))
		for i, id := range ids {
			goal := target
			if i < len(slots) {
				goal = slots[i]
			}
			assignments = append(assignments, s.moveUnit(s.UnitIndex[id], goal))
		}
	}

	s.record(Event{
		Tick:        s.LastTick,
		Description: fmt.Sprintf("%d unit(s) ordered to (%d,%d)", len(ids), target.Coord.Q, target.Coord.R),
		Category:    "move",
	})
	return assignments
}

// MoveGroupToPoint resolves a ground point to its nearest tile and moves the
// selection there.
func (s *Simulation) MoveGroupToPoint(selection []units.ID, p world.Point) []Assignment {
	return s.IssueGroupMove(selection, s.Grid.NearestTile(p))
}

// MoveSelectedTo moves the last accepted selection.
func (s *Simulation) MoveSelectedTo(target *world.Tile) []Assignment {
	return s.IssueGroupMove(s.Selection, target)
}

// moveUnit routes one unit from the tile it stands on to goal.
func (s *Simulation) moveUnit(u *units.Unit, goal *world.Tile) Assignment {
	start := s.Grid.NearestTile(u.Pos)
	res := s.Paths.Route(start, goal)
	u.SetPath(res.Path)
	if res.Outcome == pathfind.OutcomeMissingTile {
		slog.Warn("unit is off the grid", "id", u.ID, "pos", u.Pos)
	} else if res.Outcome != pathfind.OutcomeFound && res.Outcome != pathfind.OutcomeAlreadyThere {
		slog.Debug("no route for unit", "id", u.ID, "from", start.Coord, "to", goal.Coord, "outcome", res.Outcome)
	}
	return Assignment{
		UnitID:  u.ID,
		Goal:    goal.Coord,
		Steps:   len(res.Path),
		Outcome: res.Outcome,
		Result:  res.Outcome.String(),
	}
}
