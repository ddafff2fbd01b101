// Command hexsim runs the hex battlefield simulation and serves it over HTTP.
// With -ticks it runs headless for a fixed number of ticks and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfront/internal/api"
	"github.com/talgya/hexfront/internal/config"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/entropy"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

func main() {
	ticks := flag.Int("ticks", 0, "run headless for this many ticks, then exit")
	printMap := flag.Bool("map", false, "print the generated map")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexsim: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, *ticks, *printMap); err != nil {
		slog.Error("hexsim failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, ticks int, printMap bool) error {
	// ── World ─────────────────────────────────────────────────────────
	gen := cfg.Generation()
	seed, err := entropy.Resolve(gen.Seed)
	if err != nil {
		return err
	}
	gen.Seed = seed

	grid, err := world.Generate(gen)
	if err != nil {
		return err
	}
	for t, c := range grid.TerrainCounts() {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}
	slog.Info("world generated", "seed", seed, "size", fmt.Sprintf("%dx%d", grid.Width, grid.Height))
	if printMap {
		fmt.Println(grid)
	}

	// ── Units ─────────────────────────────────────────────────────────
	defs := units.DefaultRoster()
	if cfg.RosterPath != "" {
		if defs, err = units.LoadRosterFile(cfg.RosterPath); err != nil {
			return err
		}
		slog.Info("roster loaded", "path", cfg.RosterPath, "units", len(defs))
	}

	ref := units.ReferenceTile(grid)
	placed, unplaced := units.NewSpawner(seed).Spawn(defs, grid, ref, cfg.LockedSpawnDist)
	for _, d := range unplaced {
		slog.Warn("unit not placed", "id", d.ID, "name", d.Name)
	}
	for _, u := range placed {
		slog.Debug("unit placed", "id", u.ID, "locked", u.Locked, "tile", grid.NearestTile(u.Pos).Coord)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(grid, placed, cfg.Fog(), cfg.Simulation())
	sim.Paths.MaxIterations = cfg.PathMaxIterations
	eng := engine.NewEngine(sim, cfg.TickRate)

	if ticks > 0 {
		return runHeadless(eng, ticks)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("HEXSIM_ADMIN_KEY not set, command endpoints are open")
	}
	srv := api.NewServer(eng, cfg.APIPort, cfg.AdminKey)
	srv.Origins = cfg.CORSOrigins
	srv.Limiter.TrustForwarded = cfg.TrustProxy
	srv.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nhexfront is live: %d units on %s tiles (seed %d).\n",
		len(placed), humanize.Comma(int64(grid.Len())), seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	started := time.Now()
	if err := eng.Run(ctx); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	summarize(eng, started)
	return nil
}

// runHeadless advances a fixed number of ticks with no server attached.
func runHeadless(eng *engine.Engine, ticks int) error {
	started := time.Now()
	found := eng.RunTicks(ticks)
	for _, ev := range found {
		slog.Info("discovery", "unit", ev.UnitID, "tick", ev.Tick)
	}
	summarize(eng, started)
	return nil
}

func summarize(eng *engine.Engine, started time.Time) {
	eng.View(func(sim *engine.Simulation) {
		st := sim.Stats()
		fmt.Printf("Simulation stopped after %s ticks (%s simulated, started %s).\n",
			humanize.Comma(int64(sim.CurrentTick())), engine.SimTime(sim.Elapsed), humanize.Time(started))
		fmt.Printf("Units: %d, discovered: %d, still hidden: %d, map revealed: %.1f%%.\n",
			st.Units, st.Discovered, st.Locked, st.Revealed*100)
	})
}
