// Simulation ties the grid, pathfinder, fog and units together and advances
// them each tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hexfront/internal/fog"
	"github.com/talgya/hexfront/internal/pathfind"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// MaxEvents is how many recent events the simulation keeps.
const MaxEvents = 256

// Config holds the per-tick rules that are not owned by a subsystem.
type Config struct {
	Move            units.MoveConfig
	DiscoveryRadius float64 // World units; hidden units strictly closer are found
}

// DefaultConfig returns the standard simulation rules.
func DefaultConfig() Config {
	return Config{
		Move:            units.DefaultMoveConfig(),
		DiscoveryRadius: 3.0,
	}
}

// Validate checks the simulation rules.
func (c Config) Validate() error {
	var errs []error
	if err := c.Move.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("move: %w", err))
	}
	if c.DiscoveryRadius <= 0 {
		errs = append(errs, fmt.Errorf("discovery radius %v must be positive", c.DiscoveryRadius))
	}
	return errors.Join(errs...)
}

// Simulation holds the complete battlefield state. It is not safe for
// concurrent use; Engine serialises access.
type Simulation struct {
	Grid      *world.Grid
	Paths     *pathfind.Pathfinder
	Fog       *fog.Fog
	Units     []*units.Unit
	UnitIndex map[units.ID]*units.Unit
	Selection []units.ID // Last accepted selection
	Events    []Event    // Most recent events, oldest first
	LastTick  uint64     // Most recent tick processed
	Elapsed   float64    // Simulated seconds

	cfg Config
}

// Event is a notable occurrence on the battlefield.
type Event struct {
	Tick        uint64                `json:"tick"`
	Description string                `json:"description"`
	Category    string                `json:"category"` // "discovery", "move", "select"
	Discovery   *units.DiscoveryEvent `json:"discovery,omitempty"`
}

// SimStats summarises the battlefield.
type SimStats struct {
	Units         int     `json:"units"`
	Moving        int     `json:"moving"`
	Locked        int     `json:"locked"`
	Discovered    int     `json:"discovered"`
	RevealedTiles int     `json:"revealed_tiles"`
	Revealed      float64 `json:"revealed"` // Share of tiles fully clear
}

// NewSimulation creates a Simulation from spawned components. Every unit,
// hidden or not, clears fog around itself.
func NewSimulation(g *world.Grid, us []*units.Unit, fogCfg fog.Config, cfg Config) *Simulation {
	index := make(map[units.ID]*units.Unit, len(us))
	for _, u := range us {
		index[u.ID] = u
	}

	sim := &Simulation{
		Grid:      g,
		Paths:     pathfind.New(g),
		Fog:       fog.New(g, fogCfg),
		Units:     us,
		UnitIndex: index,
		cfg:       cfg,
	}
	sim.registerFog()
	return sim
}

// Config returns the simulation rules.
func (s *Simulation) Config() Config {
	return s.cfg
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Unit looks up a unit by id.
func (s *Simulation) Unit(id units.ID) (*units.Unit, bool) {
	u, ok := s.UnitIndex[id]
	return u, ok
}

func (s *Simulation) registerFog() {
	ps := make([]fog.Positioner, len(s.Units))
	for i, u := range s.Units {
		ps[i] = u
	}
	s.Fog.RegisterUnits(ps)
}

// SelectUnits replaces the selection. Unknown, repeated and hidden ids are
// dropped; the accepted ids are returned in request order.
func (s *Simulation) SelectUnits(ids []units.ID) []units.ID {
	for _, u := range s.Units {
		u.Selected = false
	}
	accepted := s.filterSelection(ids)
	for _, id := range accepted {
		s.UnitIndex[id].Selected = true
	}
	s.Selection = accepted
	if len(accepted) < len(ids) {
		slog.Debug("selection filtered", "requested", len(ids), "accepted", len(accepted))
	}
	return append([]units.ID(nil), accepted...)
}

// filterSelection keeps ids that name a known, unlocked unit, first
// occurrence only.
func (s *Simulation) filterSelection(ids []units.ID) []units.ID {
	seen := mapset.New[units.ID]()
	out := make([]units.ID, 0, len(ids))
	for _, id := range ids {
		u, ok := s.UnitIndex[id]
		if !ok || u.Locked || seen.Has(id) {
			continue
		}
		seen.Put(id)
		out = append(out, id)
	}
	return out
}

// Tick advances the battlefield by dt seconds: units move, hidden units near
// a known unit are discovered, then fog relaxes one step. A negative or
// non-finite dt is rejected and nothing changes.
func (s *Simulation) Tick(dt float64) []units.DiscoveryEvent {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		slog.Warn("tick skipped: invalid dt", "dt", dt)
		return nil
	}
	s.LastTick++
	s.Elapsed += dt

	for _, u := range s.Units {
		u.Advance(dt, s.cfg.Move)
	}

	found := units.Discover(s.Units, s.cfg.DiscoveryRadius, s.LastTick)
	for i := range found {
		ev := found[i]
		slog.Info("unit discovered", "id", ev.UnitID, "name", ev.Name, "tick", ev.Tick)
		s.record(Event{
			Tick:        s.LastTick,
			Description: fmt.Sprintf("%s has been discovered", ev.Name),
			Category:    "discovery",
			Discovery:   &ev,
		})
	}

	s.Fog.Tick()
	return found
}

// record appends an event and trims the log to MaxEvents.
func (s *Simulation) record(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > MaxEvents {
		s.Events = append(s.Events[:0:0], s.Events[len(s.Events)-MaxEvents:]...)
	}
}

// RecentEvents returns up to n of the latest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	if n <= 0 || n > len(s.Events) {
		n = len(s.Events)
	}
	out := make([]Event, n)
	copy(out, s.Events[len(s.Events)-n:])
	return out
}

// Snapshot returns the observable state of every unit in roster order.
func (s *Simulation) Snapshot() []units.Snapshot {
	out := make([]units.Snapshot, len(s.Units))
	for i, u := range s.Units {
		out[i] = u.Snapshot()
	}
	return out
}

// Tiles returns the grid's tiles in iteration order.
func (s *Simulation) Tiles() []*world.Tile {
	return s.Grid.Tiles()
}

// Stats counts units by state and how much of the map is clear.
func (s *Simulation) Stats() SimStats {
	var st SimStats
	st.Units = len(s.Units)
	for _, u := range s.Units {
		if u.State == units.StateMoving {
			st.Moving++
		}
		if u.Locked {
			st.Locked++
		}
		if u.Discovered {
			st.Discovered++
		}
	}
	for _, t := range s.Grid.Tiles() {
		if s.Fog.Revealed(t) {
			st.RevealedTiles++
		}
	}
	if n := s.Grid.Len(); n > 0 {
		st.Revealed = float64(st.RevealedTiles) / float64(n)
	}
	return st
}
