// Package config loads hexsim settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/fog"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// Prefix is prepended to every variable name.
const Prefix = "HEXSIM_"

// Config holds every init-time constant. Variable names are Prefix plus the
// env tag, e.g. HEXSIM_GRID_WIDTH.
type Config struct {
	// Grid generation.
	GridWidth      int     `env:"GRID_WIDTH" envDefault:"15"`
	GridHeight     int     `env:"GRID_HEIGHT" envDefault:"15"`
	TileSize       float64 `env:"TILE_SIZE" envDefault:"1.0"`
	Seed           int64   `env:"SEED" envDefault:"0"`
	ForestChance   float64 `env:"FOREST_CHANCE" envDefault:"0.3"`
	ForestNoise    bool    `env:"FOREST_NOISE" envDefault:"false"`
	WaterBodiesMin int     `env:"WATER_BODIES_MIN" envDefault:"2"`
	WaterBodiesMax int     `env:"WATER_BODIES_MAX" envDefault:"4"`
	WaterRadiusMin float64 `env:"WATER_RADIUS_MIN" envDefault:"1.0"`
	WaterRadiusMax float64 `env:"WATER_RADIUS_MAX" envDefault:"3.5"`
	FringeWidth    float64 `env:"WATER_FRINGE" envDefault:"1.0"`
	FringeChance   float64 `env:"WATER_FRINGE_CHANCE" envDefault:"0.5"`

	// Fog of war.
	VisionRadius float64 `env:"VISION_RADIUS" envDefault:"2.0"`
	RevealRate   float64 `env:"REVEAL_RATE" envDefault:"0.2"`
	CoverRate    float64 `env:"COVER_RATE" envDefault:"0.02"`

	// Units.
	MoveSpeed         float64 `env:"MOVE_SPEED" envDefault:"5.0"`
	TurnSpeed         float64 `env:"TURN_SPEED" envDefault:"6.0"`
	DiscoveryRadius   float64 `env:"DISCOVERY_RADIUS" envDefault:"3.0"`
	LockedSpawnDist   float64 `env:"LOCKED_SPAWN_DISTANCE" envDefault:"5.0"`
	PathMaxIterations int     `env:"PATH_MAX_ITERATIONS" envDefault:"1000"`
	RosterPath        string  `env:"ROSTER"`

	// Host.
	TickRate    int      `env:"TICK_RATE" envDefault:"60"`
	APIPort     int      `env:"API_PORT" envDefault:"8080"`
	AdminKey    string   `env:"ADMIN_KEY"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:4173,http://localhost:3000"`
	TrustProxy  bool     `env:"TRUST_PROXY" envDefault:"false"` // Key rate limits on X-Forwarded-For
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from vars instead of the process
// environment. Keys carry the prefix.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Generation().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Fog().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Simulation().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.LockedSpawnDist < 0 {
		errs = append(errs, fmt.Errorf("locked spawn distance %v must be >= 0", c.LockedSpawnDist))
	}
	if c.PathMaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("path max iterations %d must be positive", c.PathMaxIterations))
	}
	if c.TickRate <= 0 || c.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("tick rate %d out of (0,1000]", c.TickRate))
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("api port %d out of range", c.APIPort))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Generation returns the world generation parameters.
func (c Config) Generation() world.GenConfig {
	g := world.DefaultGenConfig()
	g.Width = c.GridWidth
	g.Height = c.GridHeight
	g.TileSize = c.TileSize
	g.Seed = c.Seed
	g.ForestChance = c.ForestChance
	g.ForestNoise = c.ForestNoise
	g.WaterBodiesMin = c.WaterBodiesMin
	g.WaterBodiesMax = c.WaterBodiesMax
	g.WaterRadiusMin = c.WaterRadiusMin
	g.WaterRadiusMax = c.WaterRadiusMax
	g.FringeWidth = c.FringeWidth
	g.FringeChance = c.FringeChance
	return g
}

// Fog returns the fog tuning.
func (c Config) Fog() fog.Config {
	f := fog.DefaultConfig()
	f.VisionRadius = c.VisionRadius
	f.RevealRate = c.RevealRate
	f.CoverRate = c.CoverRate
	return f
}

// Simulation returns the per-tick unit rules.
func (c Config) Simulation() engine.Config {
	s := engine.DefaultConfig()
	s.Move = units.MoveConfig{
		Speed:         c.MoveSpeed,
		ArriveEpsilon: s.Move.ArriveEpsilon,
		TurnSpeed:     c.TurnSpeed,
	}
	s.DiscoveryRadius = c.DiscoveryRadius
	return s
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
