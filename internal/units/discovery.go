package units

import (
	"github.com/talgya/hexfront/internal/world"
)

// DefaultColorHint is used for discovery effects when a unit has no color.
const DefaultColorHint = "#ffd700"

// DiscoveryEvent reports that a hidden unit has been found.
type DiscoveryEvent struct {
	UnitID    ID          `json:"unit_id"`
	Name      string      `json:"name"`
	Position  world.Point `json:"position"`
	ColorHint string      `json:"color_hint"`
	Tick      uint64      `json:"tick"`
}

// Discover unlocks every locked unit that an unlocked unit stands strictly
// within radius of. Only units that were unlocked when the call began act as
// finders, so a unit found this tick cannot find another in the same pass.
// Each unit unlocks at most once; unlocking is permanent.
//
// The check is O(finders * locked), which is fine for squad-sized rosters.
func Discover(all []*Unit, radius float64, tick uint64) []DiscoveryEvent {
	var finders, hidden []*Unit
	for _, u := range all {
		if u.Locked {
			hidden = append(hidden, u)
		} else {
			finders = append(finders, u)
		}
	}
	if len(hidden) == 0 || len(finders) == 0 {
		return nil
	}

	r2 := radius * radius
	var events []DiscoveryEvent
	for _, h := range hidden {
		for _, f := range finders {
			if f.Pos.DistSq(h.Pos) >= r2 {
				continue
			}
			h.Locked = false
			h.Discovered = true
			color := h.Def.Color
			if color == "" {
				color = DefaultColorHint
			}
			events = append(events, DiscoveryEvent{
				UnitID:    h.ID,
				Name:      h.Def.Name,
				Position:  h.Pos,
				ColorHint: color,
				Tick:      tick,
			})
			break
		}
	}
	return events
}
