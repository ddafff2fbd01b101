// Package fog tracks how hidden each tile is from the player's units.
// A visibility of 1 means fully fogged, 0 means fully revealed.
package fog

import (
	"errors"
	"fmt"

	"github.com/talgya/hexfront/internal/world"
)

// Positioner is anything with a ground-plane position that reveals fog.
type Positioner interface {
	Position() world.Point
}

// Config holds the fog tuning constants.
type Config struct {
	VisionRadius float64 // World units; tiles strictly closer are revealed
	RevealRate   float64 // Fraction of the remaining gap closed per tick toward 0
	CoverRate    float64 // Fraction of the remaining gap closed per tick toward 1
	Epsilon      float64 // Gap below which the value snaps to its target
}

// DefaultConfig returns the standard fog tuning: fast reveal, slow regrowth.
func DefaultConfig() Config {
	return Config{
		VisionRadius: 2.0,
		RevealRate:   0.2,
		CoverRate:    0.02,
		Epsilon:      0.001,
	}
}

// Validate checks that covering is slower than revealing and both rates are
// proper fractions.
func (c Config) Validate() error {
	var errs []error
	if c.VisionRadius <= 0 {
		errs = append(errs, fmt.Errorf("vision radius %v must be positive", c.VisionRadius))
	}
	if c.CoverRate <= 0 || c.CoverRate >= c.RevealRate || c.RevealRate > 1 {
		errs = append(errs, fmt.Errorf("rates must satisfy 0 < cover (%v) < reveal (%v) <= 1", c.CoverRate, c.RevealRate))
	}
	if c.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("epsilon %v must be positive", c.Epsilon))
	}
	return errors.Join(errs...)
}

// Fog owns the visibility buffer for one grid, indexed by Tile.Index.
type Fog struct {
	grid       *world.Grid
	cfg        Config
	visibility []float64
	units      []Positioner
}

// New creates a fully fogged buffer for g.
func New(g *world.Grid, cfg Config) *Fog {
	vis := make([]float64, g.Len())
	for i := range vis {
		vis[i] = 1.0
	}
	return &Fog{grid: g, cfg: cfg, visibility: vis}
}

// Config returns the tuning the buffer was built with.
func (f *Fog) Config() Config {
	return f.cfg
}

// RegisterUnits replaces the set of units that reveal fog. Locked units count.
func (f *Fog) RegisterUnits(units []Positioner) {
	f.units = append(f.units[:0:0], units...)
}

// Tick moves every tile one step toward its target visibility.
func (f *Fog) Tick() {
	r2 := f.cfg.VisionRadius * f.cfg.VisionRadius
	for _, t := range f.grid.Tiles() {
		target := 1.0
		for _, u := range f.units {
			if u.Position().DistSq(t.Center) < r2 {
				target = 0
				break
			}
		}

		cur := f.visibility[t.Index]
		diff := target - cur
		if abs(diff) <= f.cfg.Epsilon {
			f.visibility[t.Index] = target
			continue
		}
		rate := f.cfg.CoverRate
		if diff < 0 {
			rate = f.cfg.RevealRate
		}
		f.visibility[t.Index] = clamp01(cur + diff*rate)
	}
}

// VisibilityOf returns the fog value of one tile.
func (f *Fog) VisibilityOf(t *world.Tile) float64 {
	return f.visibility[t.Index]
}

// Visibility returns a copy of the whole buffer in grid order.
func (f *Fog) Visibility() []float64 {
	out := make([]float64, len(f.visibility))
	copy(out, f.visibility)
	return out
}

// Revealed reports whether the tile is fully clear.
func (f *Fog) Revealed(t *world.Tile) bool {
	return f.visibility[t.Index] == 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
