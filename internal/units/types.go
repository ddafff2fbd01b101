// Package units provides the unit data model, movement, spawning, and the
// discovery rule for hidden units.
package units

import (
	"github.com/talgya/hexfront/internal/world"
)

// ID is a stable unit identifier.
type ID string

// MovementState is where a unit is in its movement cycle.
type MovementState uint8

const (
	StateIdle   MovementState = iota // No target
	StateMoving                      // Walking toward Target
)

// String returns the state name used in snapshots and logs.
func (s MovementState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	}
	return "unknown"
}

// Stat is one labelled score on a unit card.
type Stat struct {
	Label string `yaml:"label" json:"label"`
	Value int    `yaml:"value" json:"value"`
}

// Def is the display data a unit is spawned from. The core never interprets
// anything but ID and Locked; the rest is passed through to presentation.
type Def struct {
	ID     ID     `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Role   string `yaml:"role" json:"role"`
	Color  string `yaml:"color" json:"color"`
	Model  string `yaml:"model" json:"model,omitempty"`
	Stats  []Stat `yaml:"stats" json:"stats,omitempty"`
	Locked bool   `yaml:"locked" json:"locked"`
}

// Unit is a single piece on the battlefield.
type Unit struct {
	ID  ID
	Def Def

	Pos           world.Point
	Heading       float64 // Radians in the X-Z plane, 0 = +X
	TargetHeading float64

	State      MovementState
	Locked     bool // Hidden until discovered; cannot be selected or moved
	Discovered bool // Was locked and has been found
	Selected   bool

	target *world.Tile
	path   []*world.Tile // Waypoints after target
	owed   float64       // Distance overdrawn by an early snap
}

// Position returns the unit's ground-plane position.
func (u *Unit) Position() world.Point {
	return u.Pos
}

// Target returns the waypoint the unit is walking toward, or nil when idle.
func (u *Unit) Target() *world.Tile {
	return u.target
}

// Remaining returns the number of waypoints left, the current target included.
func (u *Unit) Remaining() int {
	if u.target == nil {
		return 0
	}
	return 1 + len(u.path)
}

// Destination returns the final waypoint, or nil when idle.
func (u *Unit) Destination() *world.Tile {
	if len(u.path) > 0 {
		return u.path[len(u.path)-1]
	}
	return u.target
}

// Snapshot is a read-only view of a unit for renderers and the API.
type Snapshot struct {
	ID            ID           `json:"id"`
	Name          string       `json:"name"`
	Role          string       `json:"role"`
	Color         string       `json:"color"`
	Model         string       `json:"model,omitempty"`
	Position      world.Point  `json:"position"`
	Heading       float64      `json:"heading"`
	TargetHeading float64      `json:"target_heading"`
	State         string       `json:"state"`
	Locked        bool         `json:"locked"`
	Discovered    bool         `json:"discovered"`
	Selected      bool         `json:"selected"`
	Target        *world.Coord `json:"target,omitempty"`
	Destination   *world.Coord `json:"destination,omitempty"`
	Remaining     int          `json:"remaining"`
}

// Snapshot copies the unit's observable state.
func (u *Unit) Snapshot() Snapshot {
	s := Snapshot{
		ID:            u.ID,
		Name:          u.Def.Name,
		Role:          u.Def.Role,
		Color:         u.Def.Color,
		Model:         u.Def.Model,
		Position:      u.Pos,
		Heading:       u.Heading,
		TargetHeading: u.TargetHeading,
		State:         u.State.String(),
		Locked:        u.Locked,
		Discovered:    u.Discovered,
		Selected:      u.Selected,
		Remaining:     u.Remaining(),
	}
	if u.target != nil {
		c := u.target.Coord
		s.Target = &c
		d := u.Destination().Coord
		s.Destination = &d
	}
	return s
}
