// Package api provides the HTTP API for observing and commanding the
// battlefield. GET endpoints are read-only. POST endpoints issue commands and
// require a bearer token when an admin key is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

const (
	maxSSEConns    = 4
	maxBodyBytes   = 1 << 16
	commandsPerMin = 120
)

// DefaultOrigins are the local frontend dev servers allowed by CORS.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:4173",
	"http://localhost:3000",
}

// Server serves the battlefield over HTTP.
type Server struct {
	Eng      *engine.Engine
	Port     int
	AdminKey string       // Bearer token for POST endpoints. Empty = open.
	Origins  []string     // CORS origins; read when Handler is built
	Limiter  *RateLimiter // Command endpoint limits

	started  time.Time
	sseConns int32
	srv      *http.Server
}

// NewServer creates a server for eng.
func NewServer(eng *engine.Engine, port int, adminKey string) *Server {
	return &Server{
		Eng:      eng,
		Port:     port,
		AdminKey: adminKey,
		Origins:  DefaultOrigins,
		started:  time.Now(),
		Limiter:  NewRateLimiter(commandsPerMin, time.Minute),
	}
}

// Handler returns the routed API with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/map", s.handleBulkMap)
	mux.HandleFunc("GET /api/v1/map/{q}/{r}", s.handleTileDetail)
	mux.HandleFunc("GET /api/v1/units", s.handleUnits)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)

	mux.HandleFunc("POST /api/v1/select", s.command(s.handleSelect))
	mux.HandleFunc("POST /api/v1/move", s.command(s.handleMove))
	mux.HandleFunc("POST /api/v1/speed", s.command(s.handleSpeed))

	return corsMiddleware(s.Origins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware answers preflight requests and adds CORS headers for the
// given origins. Blank entries are ignored.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request carries the admin token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.AdminKey
}

// command wraps a POST handler with auth and per-client rate limiting.
func (s *Server) command(next http.HandlerFunc) http.HandlerFunc {
	limited := RateLimitMiddleware(s.Limiter, next)
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		limited(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Eng.View(func(sim *engine.Simulation) {
		st := sim.Stats()
		status = map[string]any{
			"name":      "hexfront",
			"tick":      sim.CurrentTick(),
			"sim_time":  engine.SimTime(sim.Elapsed),
			"grid":      fmt.Sprintf("%dx%d", sim.Grid.Width, sim.Grid.Height),
			"tiles":     sim.Grid.Len(),
			"selection": sim.Selection,
			"events":    len(sim.Events),
			"stats":     st,
			"revealed":  fmt.Sprintf("%.1f%%", st.Revealed*100),
			"started":   humanize.Time(s.started),
		}
	})
	speed := s.Eng.Speed()
	status["speed"] = speed
	status["paused"] = speed == 0
	status["dropped_sse"] = s.Eng.Dropped()
	writeJSON(w, status)
}

type tileEntry struct {
	Q          int         `json:"q"`
	R          int         `json:"r"`
	Index      int         `json:"index"`
	Center     world.Point `json:"center"`
	Terrain    string      `json:"terrain"`
	Walkable   bool        `json:"walkable"`
	Visibility float64     `json:"visibility"`
}

func newTileEntry(t *world.Tile, visibility float64) tileEntry {
	return tileEntry{
		Q:          t.Coord.Q,
		R:          t.Coord.R,
		Index:      t.Index,
		Center:     t.Center,
		Terrain:    world.TerrainName(t.Terrain),
		Walkable:   t.Walkable(),
		Visibility: visibility,
	}
}

// handleBulkMap returns every tile for the hex map renderer.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.Eng.View(func(sim *engine.Simulation) {
		vis := sim.Fog.Visibility()
		tiles := make([]tileEntry, 0, sim.Grid.Len())
		for _, t := range sim.Tiles() {
			tiles = append(tiles, newTileEntry(t, vis[t.Index]))
		}
		resp = map[string]any{
			"width":     sim.Grid.Width,
			"height":    sim.Grid.Height,
			"tile_size": sim.Grid.TileSize,
			"tiles":     tiles,
		}
	})
	writeJSON(w, resp)
}

// handleTileDetail returns one tile, its neighbours and the units on it.
func (s *Server) handleTileDetail(w http.ResponseWriter, r *http.Request) {
	q, err1 := strconv.Atoi(r.PathValue("q"))
	rr, err2 := strconv.Atoi(r.PathValue("r"))
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	var (
		resp  map[string]any
		found bool
	)
	s.Eng.View(func(sim *engine.Simulation) {
		tile, ok := sim.Grid.TileAt(q, rr)
		if !ok {
			return
		}
		found = true

		neighbors := make([]world.Coord, 0, 6)
		for _, n := range sim.Grid.Neighbors(tile) {
			neighbors = append(neighbors, n.Coord)
		}
		var here []units.Snapshot
		for _, u := range sim.Units {
			if sim.Grid.NearestTile(u.Pos) == tile {
				here = append(here, u.Snapshot())
			}
		}
		resp = map[string]any{
			"tile":      newTileEntry(tile, sim.Fog.VisibilityOf(tile)),
			"neighbors": neighbors,
			"units":     here,
		}
	})
	if !found {
		http.Error(w, "tile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, resp)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	var snaps []units.Snapshot
	s.Eng.View(func(sim *engine.Simulation) {
		snaps = sim.Snapshot()
	})
	writeJSON(w, snaps)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= engine.MaxEvents {
			limit = n
		}
	}
	category := r.URL.Query().Get("category")

	var events []engine.Event
	s.Eng.View(func(sim *engine.Simulation) {
		events = sim.RecentEvents(0)
	})

	if category != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		if err := s.Eng.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []units.ID `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var accepted []units.ID
	s.Eng.Exec(func(sim *engine.Simulation) {
		accepted = sim.SelectUnits(req.IDs)
	})
	writeJSON(w, map[string]any{"selected": accepted})
}

// moveRequest targets either a tile (q, r) or a ground point (x, z). With no
// ids the current selection moves.
type moveRequest struct {
	IDs []units.ID `json:"ids"`
	Q   *int       `json:"q"`
	R   *int       `json:"r"`
	X   *float64   `json:"x"`
	Z   *float64   `json:"z"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	byTile := req.Q != nil && req.R != nil
	byPoint := req.X != nil && req.Z != nil
	if byTile == byPoint {
		http.Error(w, "give exactly one of q/r or x/z", http.StatusBadRequest)
		return
	}

	var (
		assignments []engine.Assignment
		missing     bool
	)
	s.Eng.Exec(func(sim *engine.Simulation) {
		ids := req.IDs
		if ids == nil {
			ids = sim.Selection
		}
		if byPoint {
			assignments = sim.MoveGroupToPoint(ids, world.Point{X: *req.X, Z: *req.Z})
			return
		}
		tile, ok := sim.Grid.TileAt(*req.Q, *req.R)
		if !ok {
			missing = true
			return
		}
		assignments = sim.IssueGroupMove(ids, tile)
	})
	if missing {
		http.Error(w, "tile not found", http.StatusNotFound)
		return
	}
	if assignments == nil {
		assignments = []engine.Assignment{}
	}
	writeJSON(w, map[string]any{"assignments": assignments})
}

// handleStream pushes discovery events over server-sent events, after a
// catch-up of recent discoveries.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	recent, ch, unsubscribe := s.Eng.SubscribeWithHistory(16)
	defer unsubscribe()

	for _, e := range recent {
		if e.Discovery != nil {
			writeSSEEvent(w, *e.Discovery)
		}
	}
	flusher.Flush()

	slog.Info("SSE client connected", "remote", r.RemoteAddr)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, ev)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "remote", r.RemoteAddr)
			return
		}
	}
}

// writeSSEEvent writes a single discovery in SSE format.
func writeSSEEvent(w http.ResponseWriter, ev units.DiscoveryEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: discovery\ndata: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
