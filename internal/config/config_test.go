package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.GridWidth != 15 || cfg.GridHeight != 15 {
		t.Fatalf("expected 15x15 grid, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.VisionRadius != 2.0 || cfg.RevealRate != 0.2 || cfg.CoverRate != 0.02 {
		t.Fatalf("unexpected fog defaults: %+v", cfg.Fog())
	}
	if cfg.MoveSpeed != 5.0 || cfg.DiscoveryRadius != 3.0 || cfg.PathMaxIterations != 1000 {
		t.Fatalf("unexpected unit defaults: %+v", cfg)
	}
	if cfg.TickRate != 60 || cfg.APIPort != 8080 {
		t.Fatalf("unexpected host defaults: tick %d port %d", cfg.TickRate, cfg.APIPort)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", lvl)
	}
	if len(cfg.CORSOrigins) != 3 || cfg.CORSOrigins[0] != "http://localhost:5173" || cfg.TrustProxy {
		t.Fatalf("unexpected API defaults: origins %v trust %v", cfg.CORSOrigins, cfg.TrustProxy)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"HEXSIM_GRID_WIDTH":       "20",
		"HEXSIM_SEED":             "99",
		"HEXSIM_FOREST_NOISE":     "true",
		"HEXSIM_MOVE_SPEED":       "7.5",
		"HEXSIM_ADMIN_KEY":        "secret",
		"HEXSIM_LOG_LEVEL":        "debug",
		"HEXSIM_ROSTER":           "roster.yaml",
		"GRID_WIDTH":              "3",
		"HEXSIM_WATER_FRINGE":     "0.5",
		"HEXSIM_DISCOVERY_RADIUS": "4",
		"HEXSIM_CORS_ORIGINS":     "https://a.example,https://b.example",
		"HEXSIM_TRUST_PROXY":      "true",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	gen := cfg.Generation()
	if gen.Width != 20 || gen.Seed != 99 || !gen.ForestNoise || gen.FringeWidth != 0.5 {
		t.Fatalf("generation overrides not applied: %+v", gen)
	}
	sim := cfg.Simulation()
	if sim.Move.Speed != 7.5 || sim.DiscoveryRadius != 4 || sim.Move.ArriveEpsilon != 0.1 {
		t.Fatalf("simulation overrides not applied: %+v", sim)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" || !cfg.TrustProxy {
		t.Fatalf("API overrides not applied: origins %v trust %v", cfg.CORSOrigins, cfg.TrustProxy)
	}
	if cfg.AdminKey != "secret" || cfg.RosterPath != "roster.yaml" {
		t.Fatalf("string overrides not applied: %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", lvl)
	}
}

func TestLoadFromErrors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{name: "unparseable", vars: map[string]string{"HEXSIM_GRID_WIDTH": "wide"}, want: "parse env:"},
		{name: "zero width", vars: map[string]string{"HEXSIM_GRID_WIDTH": "0"}, want: "invalid config:"},
		{name: "cover faster than reveal", vars: map[string]string{"HEXSIM_COVER_RATE": "0.5"}, want: "cover"},
		{name: "bad tick rate", vars: map[string]string{"HEXSIM_TICK_RATE": "0"}, want: "tick rate"},
		{name: "bad log level", vars: map[string]string{"HEXSIM_LOG_LEVEL": "loud"}, want: "log level"},
		{name: "negative speed", vars: map[string]string{"HEXSIM_MOVE_SPEED": "-1"}, want: "speed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsEverything(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.TickRate = 0
	cfg.APIPort = -1
	cfg.PathMaxIterations = 0
	msg := cfg.Validate().Error()
	for _, want := range []string{"tick rate", "api port", "path max iterations"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("HEXSIM_GRID_HEIGHT", "11")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GridHeight != 11 {
		t.Fatalf("expected height 11, got %d", cfg.GridHeight)
	}
}
